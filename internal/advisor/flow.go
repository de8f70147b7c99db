// Package advisor drives the guided cost consultation: a deterministic
// state machine that asks for one cost field per turn, confirms the
// collected values, runs the analysis engine, and closes with a coach
// note. All free-text interpretation lives here; the engine only ever
// sees parsed values.
package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joelkehle/costcoach/internal/costanalysis"
	"github.com/joelkehle/costcoach/internal/session"
)

// Flow advances sessions through the consultation. It holds no per-session
// state; callers own the session and persist it after every turn.
type Flow struct {
	coach Coach
	clock func() time.Time
}

// NewFlow builds a flow. coach may be nil; the deterministic template note
// is used instead. clock defaults to time.Now.
func NewFlow(coach Coach, clock func() time.Time) *Flow {
	if clock == nil {
		clock = time.Now
	}
	return &Flow{coach: coach, clock: clock}
}

// Reply is one advisor turn. Result is set only on the turn that runs the
// analysis; Done marks the consultation finished.
type Reply struct {
	Text   string
	Done   bool
	Result *costanalysis.Result
}

// Advance consumes one user utterance, mutates the session in place and
// returns the advisor's reply. The caller persists the session. It never
// depends on the network: a failing coach falls back to the template note.
func (f *Flow) Advance(ctx context.Context, sess *session.Session, userText string) (Reply, error) {
	if sess == nil {
		return Reply{}, fmt.Errorf("advance: nil session")
	}
	now := f.clock()
	text := strings.TrimSpace(userText)
	if text != "" {
		sess.AddTurn(session.RoleUser, text, now)
	}

	reply := f.step(ctx, sess, text)
	sess.AddTurn(session.RoleCoach, reply.Text, now)
	return reply, nil
}

func (f *Flow) step(ctx context.Context, sess *session.Session, text string) Reply {
	switch detectIntent(text) {
	case intentRestart:
		return restart(sess)
	case intentHelp:
		return Reply{Text: helpText(sess)}
	case intentBack:
		if sess.State == session.StateCollect && sess.FieldIndex > 0 {
			sess.FieldIndex--
			return Reply{Text: "Volvamos un paso. " + currentPrompt(sess)}
		}
	}

	switch sess.State {
	case session.StateWelcome, "":
		return f.stepWelcome(sess, text)
	case session.StateChooseArchetype:
		return f.stepChooseArchetype(sess, text)
	case session.StateCollect:
		return f.stepCollect(sess, text)
	case session.StateConfirm:
		return f.stepConfirm(ctx, sess, text)
	case session.StateDone:
		return Reply{Text: "Tu análisis ya está listo. Puedes pedir el reporte, o escribir \"reiniciar\" para analizar otro negocio."}
	}
	return restart(sess)
}

func (f *Flow) stepWelcome(sess *session.Session, text string) Reply {
	// A user who opens with the archetype skips the menu.
	if arch, ok := costanalysis.ParseArchetype(text); ok {
		return selectArchetype(sess, arch)
	}
	sess.State = session.StateChooseArchetype
	return Reply{Text: "¡Hola! Soy tu asesor de costos y precios. En pocas preguntas calculamos cuánto te cuesta tu producto o servicio y a qué precio venderlo.\n\n" + archetypeMenu()}
}

func (f *Flow) stepChooseArchetype(sess *session.Session, text string) Reply {
	arch, ok := costanalysis.ParseArchetype(text)
	if !ok {
		return Reply{Text: "No reconocí ese tipo de negocio. Responde con el número o el nombre:\n\n" + archetypeMenu()}
	}
	return selectArchetype(sess, arch)
}

func (f *Flow) stepCollect(sess *session.Session, text string) Reply {
	fields, ok := costanalysis.SchemaFor(sess.Archetype)
	if !ok || sess.FieldIndex >= len(fields) {
		return restart(sess)
	}
	field := fields[sess.FieldIndex]

	if field.Enum != nil {
		return f.collectExperience(sess, fields, field, text)
	}

	if !field.Required && skipAnswer(text) {
		sess.Inputs[field.Name] = 0.0
		return f.advanceField(sess, fields)
	}
	v, err := parseAmount(text)
	if err != nil {
		return Reply{Text: fmt.Sprintf("No entendí el valor. %s Escribe solo la cifra, por ejemplo 450000 o 1.200.000.", field.Prompt)}
	}
	switch {
	case v < 0:
		return Reply{Text: fmt.Sprintf("%s no puede ser negativo. %s", field.Label, field.Prompt)}
	case field.Required && v == 0:
		return Reply{Text: fmt.Sprintf("%s debe ser mayor a 0. %s", field.Label, field.Prompt)}
	case field.Percent && v > field.Max:
		return Reply{Text: fmt.Sprintf("%s debe estar entre 0%% y %.0f%%. %s", field.Label, field.Max, field.Prompt)}
	}
	sess.Inputs[field.Name] = v
	return f.advanceField(sess, fields)
}

func (f *Flow) collectExperience(sess *session.Session, fields []costanalysis.FieldSpec, field costanalysis.FieldSpec, text string) Reply {
	if skipAnswer(text) {
		delete(sess.Inputs, field.Name)
		return f.advanceField(sess, fields)
	}
	level, ok := costanalysis.ParseExperience(text)
	if !ok {
		return Reply{Text: "No reconocí el nivel. Responde junior, medio, senior o experto."}
	}
	sess.Inputs[field.Name] = string(level)
	return f.advanceField(sess, fields)
}

func (f *Flow) advanceField(sess *session.Session, fields []costanalysis.FieldSpec) Reply {
	sess.FieldIndex++
	if sess.FieldIndex < len(fields) {
		return Reply{Text: fields[sess.FieldIndex].Prompt}
	}
	sess.State = session.StateConfirm
	return Reply{Text: collectedSummary(sess) + "\n¿Calculamos tu análisis con estos datos? (sí/no)"}
}

func (f *Flow) stepConfirm(ctx context.Context, sess *session.Session, text string) Reply {
	yes, recognized := parseYesNo(text)
	if !recognized {
		return Reply{Text: "¿Calculamos tu análisis con estos datos? Responde sí para calcular, o no para corregirlos."}
	}
	if !yes {
		sess.State = session.StateCollect
		sess.FieldIndex = 0
		return Reply{Text: "De acuerdo, repasemos los datos desde el principio. " + currentPrompt(sess)}
	}
	return f.runAnalysis(ctx, sess)
}

func (f *Flow) runAnalysis(ctx context.Context, sess *session.Session) Reply {
	res := costanalysis.Analyze(string(sess.Archetype), sess.Inputs)
	sess.LastResult = &res

	if !res.OK() {
		sess.State = session.StateCollect
		sess.FieldIndex = 0
		var b strings.Builder
		b.WriteString("Algunos valores no pasaron la validación:\n")
		for _, e := range res.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		b.WriteString("\nCorrijámoslos. " + currentPrompt(sess))
		return Reply{Text: b.String()}
	}

	sess.State = session.StateDone
	text := resultSummary(res) + "\n\n" + f.note(ctx, res)
	return Reply{Text: text, Done: true, Result: &res}
}

func (f *Flow) note(ctx context.Context, res costanalysis.Result) string {
	if f.coach != nil {
		if note, err := f.coach.Note(ctx, res); err == nil && strings.TrimSpace(note) != "" {
			return strings.TrimSpace(note)
		}
	}
	return templateNote(res)
}

func restart(sess *session.Session) Reply {
	sess.State = session.StateChooseArchetype
	sess.Archetype = ""
	sess.FieldIndex = 0
	sess.Inputs = map[string]any{}
	return Reply{Text: "Empecemos de nuevo. " + archetypeMenu()}
}

func selectArchetype(sess *session.Session, arch costanalysis.Archetype) Reply {
	sess.Archetype = arch
	sess.State = session.StateCollect
	sess.FieldIndex = 0
	sess.Inputs = map[string]any{}
	fields, _ := costanalysis.SchemaFor(arch)
	return Reply{Text: fmt.Sprintf("Perfecto: %s. %s", costanalysis.ArchetypeLabel(arch), fields[0].Prompt)}
}

func archetypeMenu() string {
	return "¿Cuál describe mejor tu negocio?\n" +
		"1. Manufactura — fabricas productos\n" +
		"2. Reventa — compras y revendes\n" +
		"3. Servicios — cobras por tu trabajo\n" +
		"4. Híbrido — combinas servicio y productos"
}

func currentPrompt(sess *session.Session) string {
	fields, ok := costanalysis.SchemaFor(sess.Archetype)
	if !ok || sess.FieldIndex >= len(fields) {
		return archetypeMenu()
	}
	return fields[sess.FieldIndex].Prompt
}

func helpText(sess *session.Session) string {
	switch sess.State {
	case session.StateChooseArchetype:
		return "Elige el tipo de negocio con el número o el nombre.\n\n" + archetypeMenu()
	case session.StateCollect:
		return currentPrompt(sess) + "\n\nEscribe solo la cifra (acepto formatos como 450000, 1.200.000 o 1,5 millones). Escribe \"atrás\" para corregir el dato anterior o \"reiniciar\" para empezar de nuevo."
	case session.StateConfirm:
		return "Responde sí para calcular el análisis con los datos recolectados, o no para corregirlos."
	case session.StateDone:
		return "Tu análisis está listo. Puedes pedir el reporte o escribir \"reiniciar\" para analizar otro negocio."
	}
	return "Cuéntame sobre tu negocio y te ayudo a calcular costos y precios. Escribe \"reiniciar\" en cualquier momento para empezar de nuevo."
}

func collectedSummary(sess *session.Session) string {
	var b strings.Builder
	b.WriteString("Esto fue lo que registré:\n")
	fields, _ := costanalysis.SchemaFor(sess.Archetype)
	for _, f := range fields {
		raw, ok := sess.Inputs[f.Name]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			if f.Percent {
				fmt.Fprintf(&b, "- %s: %.0f%%\n", f.Label, v)
			} else {
				fmt.Fprintf(&b, "- %s: $%s\n", f.Label, costanalysis.FormatCOP(v))
			}
		case string:
			fmt.Fprintf(&b, "- %s: %s\n", f.Label, v)
		}
	}
	return b.String()
}

// resultSummary is the deterministic closing message: totals, the canonical
// price for the archetype, and the overall data score.
func resultSummary(res costanalysis.Result) string {
	a := res.Analysis
	var b strings.Builder
	switch res.Archetype {
	case costanalysis.ArchetypeManufacturing:
		fmt.Fprintf(&b, "Tu costo total por unidad es $%s. Te sugiero vender a $%s (mínimo $%s, premium $%s); así ganas $%s por unidad.",
			costanalysis.FormatCOP(a.TotalCost), costanalysis.FormatCOP(a.OptimalPrice),
			costanalysis.FormatCOP(a.MinPrice), costanalysis.FormatCOP(a.PremiumPrice),
			costanalysis.FormatCOP(a.Profit))
	case costanalysis.ArchetypeResale:
		fmt.Fprintf(&b, "Cada unidad te cuesta $%s. Véndela a $%s para ganar $%s (ROI del %.0f%%).",
			costanalysis.FormatCOP(a.TotalCost), costanalysis.FormatCOP(a.SellingPrice),
			costanalysis.FormatCOP(a.Profit), a.ROIValue())
	case costanalysis.ArchetypeService:
		fmt.Fprintf(&b, "Cobra $%s por proyecto (base $%s por %.1fx de experiencia). Con cuatro proyectos al mes tu ingreso estimado es $%s.",
			costanalysis.FormatCOP(a.FinalPrice), costanalysis.FormatCOP(a.BasePrice),
			a.ExperienceMultiplier, costanalysis.FormatCOP(a.MonthlyIncome))
	case costanalysis.ArchetypeHybrid:
		fmt.Fprintf(&b, "Cada cliente te cuesta $%s. Cobra $%s para ganar $%s por cliente.",
			costanalysis.FormatCOP(a.TotalPerClient), costanalysis.FormatCOP(a.SuggestedPrice),
			costanalysis.FormatCOP(a.Profit))
	default:
		fmt.Fprintf(&b, "Costo total: $%s.", costanalysis.FormatCOP(a.TotalCost))
	}
	if res.Metrics != nil {
		fmt.Fprintf(&b, " Calidad de tus datos: %.0f%%.", res.Metrics.OverallScore*100)
	}
	return b.String()
}
