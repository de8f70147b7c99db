package advisor

import (
	"errors"
	"strconv"
	"strings"
)

var errNotANumber = errors.New("not a number")

var accentFold = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

func normalizeText(s string) string {
	return accentFold.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// hasWord reports whether text contains w as a standalone token, so "si"
// matches "si, dale" but not "siempre".
func hasWord(text, w string) bool {
	for _, f := range strings.Fields(text) {
		if strings.Trim(f, ".,;:!?¡¿()") == w {
			return true
		}
	}
	return false
}

func containsAny(text string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

type intent int

const (
	intentNone intent = iota
	intentRestart
	intentHelp
	intentBack
)

// detectIntent picks up the navigation commands that work in every state.
// Yes/no answers are state-specific and parsed separately.
func detectIntent(text string) intent {
	t := normalizeText(text)
	switch {
	case containsAny(t, "reiniciar", "empezar de nuevo", "comenzar de nuevo", "desde cero", "otra vez"):
		return intentRestart
	case containsAny(t, "ayuda", "no entiendo", "como funciona") || hasWord(t, "help"):
		return intentHelp
	case containsAny(t, "anterior", "volver", "corregir el anterior") || hasWord(t, "atras"):
		return intentBack
	}
	return intentNone
}

// parseYesNo recognizes confirmation answers. The second return is false
// when the text is neither.
func parseYesNo(text string) (bool, bool) {
	t := normalizeText(text)
	for _, w := range []string{"si", "listo", "dale", "ok", "confirmo", "correcto", "calcular", "claro", "yes"} {
		if hasWord(t, w) {
			return true, true
		}
	}
	if containsAny(t, "de acuerdo", "esta bien", "adelante") {
		return true, true
	}
	for _, w := range []string{"no", "cambiar", "corregir", "editar", "esperar"} {
		if hasWord(t, w) {
			return false, true
		}
	}
	return false, false
}

// skipAnswer covers the ways users decline an optional field.
func skipAnswer(text string) bool {
	t := normalizeText(text)
	if containsAny(t, "no aplica", "no se", "ninguno", "ninguna", "nada", "saltar", "omitir", "skip") {
		return true
	}
	return hasWord(t, "no")
}

// parseAmount reads a money or percentage answer the way people actually
// type them in Colombia: "1.200.000", "$ 450.000", "1,5", "2k", "1.5m",
// "300 mil", "2 millones", "15%". Returns errNotANumber when no numeric
// reading exists.
func parseAmount(text string) (float64, error) {
	t := normalizeText(text)
	t = strings.NewReplacer("$", "", "%", "", "cop", "", "pesos", "", "peso", "").Replace(t)
	t = strings.ReplaceAll(t, " ", "")
	if t == "" {
		return 0, errNotANumber
	}

	mult := 1.0
	for _, suf := range []struct {
		s string
		m float64
	}{
		{"millones", 1e6}, {"millon", 1e6}, {"mill", 1e6}, {"mil", 1e3}, {"mm", 1e6}, {"k", 1e3}, {"m", 1e6},
	} {
		if strings.HasSuffix(t, suf.s) {
			t = strings.TrimSuffix(t, suf.s)
			mult = suf.m
			break
		}
	}
	if t == "" {
		return 0, errNotANumber
	}

	v, err := parseLocalizedNumber(t)
	if err != nil {
		return 0, err
	}
	return v * mult, nil
}

// parseLocalizedNumber resolves the separator ambiguity between the es-CO
// convention (dot thousands, comma decimal) and the en-US one. Dots or
// commas in groups of exactly three digits are thousands separators; a
// single trailing group of another length is the decimal part.
func parseLocalizedNumber(s string) (float64, error) {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		// The rightmost separator kind is the decimal mark.
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case commas > 0:
		if groupedThousands(s, ',') {
			s = strings.ReplaceAll(s, ",", "")
		} else if commas == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			return 0, errNotANumber
		}
	case dots > 0:
		if groupedThousands(s, '.') {
			s = strings.ReplaceAll(s, ".", "")
		} else if dots > 1 {
			return 0, errNotANumber
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errNotANumber
	}
	return v, nil
}

func groupedThousands(s string, sep byte) bool {
	parts := strings.Split(s, string(sep))
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}
