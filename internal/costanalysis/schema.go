package costanalysis

import (
	"fmt"
	"strconv"
	"strings"
)

const errUnknownArchetype = "Tipo de negocio no válido"

// SchemaFor returns the input field schema for an archetype. The boolean is
// false for unknown archetypes.
func SchemaFor(archetype Archetype) ([]FieldSpec, bool) {
	cfg, ok := registry[archetype]
	if !ok {
		return nil, false
	}
	fields := make([]FieldSpec, len(cfg.Fields))
	copy(fields, cfg.Fields)
	return fields, true
}

// ParseArchetype resolves the identifiers the selection UI produces,
// including the Spanish names and menu positions, into an archetype tag.
func ParseArchetype(s string) (Archetype, bool) {
	switch normalizeToken(s) {
	case "manufacturing", "manufactura", "fabricacion", "produccion", "1":
		return ArchetypeManufacturing, true
	case "resale", "reventa", "comercio", "2":
		return ArchetypeResale, true
	case "service", "servicio", "servicios", "3":
		return ArchetypeService, true
	case "hybrid", "hibrido", "mixto", "4":
		return ArchetypeHybrid, true
	}
	return "", false
}

// ParseExperience resolves an experience-level answer, accepting the enum
// values and their Spanish equivalents.
func ParseExperience(s string) (ExperienceLevel, bool) {
	switch normalizeToken(s) {
	case "junior", "principiante", "basico":
		return ExperienceJunior, true
	case "mid", "medio", "intermedio":
		return ExperienceMid, true
	case "senior", "avanzado":
		return ExperienceSenior, true
	case "expert", "experto", "especialista":
		return ExperienceExpert, true
	}
	return "", false
}

// normalizeToken lowercases, trims and strips the accents that show up in
// Spanish archetype and level names.
func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n")
	return r.Replace(s)
}

// Validate checks raw input against the archetype schema. It is total: it
// never panics and always returns a result; a non-empty Errors list means
// the caller must not proceed to pricing. Parsed values are kept even when
// invalid so the conversational UI can echo them back.
func Validate(archetype Archetype, raw map[string]any) ValidationResult {
	res := ValidationResult{
		Costs:  CostInput{Archetype: archetype, Values: map[string]float64{}},
		Errors: []string{},
	}
	cfg, ok := registry[archetype]
	if !ok {
		res.Errors = append(res.Errors, errUnknownArchetype)
		return res
	}

	for _, f := range cfg.Fields {
		if f.Enum != nil {
			validateEnumField(f, raw, &res)
			continue
		}
		validateNumericField(f, raw, &res)
	}
	return res
}

func validateNumericField(f FieldSpec, raw map[string]any, res *ValidationResult) {
	rv, present := raw[f.Name]
	if !present {
		res.Costs.Values[f.Name] = f.DefaultValue
		if f.Required {
			res.Errors = append(res.Errors, fmt.Sprintf("%s debe ser mayor a 0", f.Label))
		}
		return
	}

	v, numeric := toNumber(rv)
	if !numeric {
		res.Costs.Values[f.Name] = f.DefaultValue
		res.Errors = append(res.Errors, fmt.Sprintf("%s debe ser un número", f.Label))
		return
	}
	res.Costs.Values[f.Name] = v

	switch {
	case f.Required && v <= 0:
		res.Errors = append(res.Errors, fmt.Sprintf("%s debe ser mayor a 0", f.Label))
	case v < 0:
		res.Errors = append(res.Errors, fmt.Sprintf("%s no puede ser negativo", f.Label))
	case f.Percent && v > f.Max:
		res.Errors = append(res.Errors, fmt.Sprintf("%s debe estar entre 0%% y %.0f%%", f.Label, f.Max))
	}
}

func validateEnumField(f FieldSpec, raw map[string]any, res *ValidationResult) {
	rv, present := raw[f.Name]
	if !present {
		return
	}
	s, isString := rv.(string)
	if !isString {
		res.Errors = append(res.Errors, "Nivel de experiencia no válido")
		return
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for _, allowed := range f.Enum {
		if s == allowed {
			res.Costs.Experience = s
			return
		}
	}
	res.Errors = append(res.Errors, "Nivel de experiencia no válido")
}

// toNumber coerces the value shapes JSON decoding and direct Go callers
// produce. Numeric strings are accepted; anything else is rejected.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case nil:
		return 0, false
	default:
		return 0, false
	}
}
