package costanalysis

// Field names shared across components. These are the wire names downstream
// renderers and exporters key on; do not rename.
const (
	fieldMaterials        = "materials"
	fieldLabor            = "labor"
	fieldPackaging        = "packaging"
	fieldOverhead         = "overhead"
	fieldPurchaseCost     = "purchaseCost"
	fieldLogisticsPct     = "logisticsPct"
	fieldStorage          = "storage"
	fieldDesiredMarginPct = "desiredMarginPct"
	fieldHourlyRate       = "hourlyRate"
	fieldProjectHours     = "projectHours"
	fieldOperationalCost  = "operationalCost"
	fieldExperience       = "experienceLevel"
	fieldProfessionalRate = "professionalRate"
	fieldClientHours      = "clientHours"
	fieldProductsCost     = "productsCost"
	fieldAdditionalCost   = "additionalCost"
)

// Monthly fixed costs enter per-unit totals at a daily share.
const daysPerMonth = 30

// Percentage-style fields accept at most this value.
const maxPercent = 200

// FieldSpec describes one input field of an archetype schema, including the
// display metadata the conversational UI needs to ask for it.
type FieldSpec struct {
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	Prompt       string   `json:"prompt"`
	Required     bool     `json:"required"`
	Min          float64  `json:"min"`
	Max          float64  `json:"max,omitempty"`
	DefaultValue float64  `json:"default"`
	Percent      bool     `json:"percent,omitempty"`
	Enum         []string `json:"enum,omitempty"`
}

type archetypeConfig struct {
	Label        string
	Fields       []FieldSpec
	Completeness map[string]float64
}

// registry holds the immutable per-archetype configuration: field schemas
// and completeness weights. Coherence bands, alert thresholds, benchmark
// ranges and recommendation templates live next to the component that
// applies them. The threshold values across all of these are tuned business
// parameters, not derived facts; change them only in coordination with the
// downstream renderers.
var registry = map[Archetype]archetypeConfig{
	ArchetypeManufacturing: {
		Label: "Manufactura",
		Fields: []FieldSpec{
			{Name: fieldMaterials, Label: "Materias primas", Prompt: "¿Cuánto gastas en materias primas por unidad?", Required: true},
			{Name: fieldLabor, Label: "Mano de obra", Prompt: "¿Cuánto cuesta la mano de obra por unidad?", Required: true},
			{Name: fieldPackaging, Label: "Empaque y embalaje", Prompt: "¿Cuánto cuesta el empaque por unidad? (0 si no aplica)"},
			{Name: fieldOverhead, Label: "Gastos fijos mensuales", Prompt: "¿Cuánto pagas al mes en gastos fijos como arriendo y servicios? (0 si no aplica)"},
		},
		Completeness: map[string]float64{
			fieldMaterials: 0.30,
			fieldLabor:     0.30,
			fieldPackaging: 0.20,
			fieldOverhead:  0.20,
		},
	},
	ArchetypeResale: {
		Label: "Reventa",
		Fields: []FieldSpec{
			{Name: fieldPurchaseCost, Label: "Costo de compra", Prompt: "¿A cuánto compras cada producto?", Required: true},
			{Name: fieldLogisticsPct, Label: "Logística", Prompt: "¿Qué porcentaje del costo de compra se va en logística y envíos? (0 si no aplica)", Percent: true, Max: maxPercent},
			{Name: fieldStorage, Label: "Almacenamiento mensual", Prompt: "¿Cuánto pagas al mes por almacenamiento? (0 si no aplica)"},
			{Name: fieldDesiredMarginPct, Label: "Margen deseado", Prompt: "¿Qué margen de ganancia quieres? (en porcentaje)", Required: true, Percent: true, Max: maxPercent},
		},
		Completeness: map[string]float64{
			fieldPurchaseCost:     0.35,
			fieldDesiredMarginPct: 0.35,
			fieldLogisticsPct:     0.15,
			fieldStorage:          0.15,
		},
	},
	ArchetypeService: {
		Label: "Servicios",
		Fields: []FieldSpec{
			{Name: fieldHourlyRate, Label: "Tarifa por hora", Prompt: "¿Cuánto cobras por hora de trabajo?", Required: true},
			{Name: fieldProjectHours, Label: "Horas por proyecto", Prompt: "¿Cuántas horas te toma un proyecto típico?", Required: true},
			{Name: fieldOperationalCost, Label: "Costos operativos mensuales", Prompt: "¿Cuánto gastas al mes en herramientas, internet, transporte y similares? (0 si no aplica)"},
			{Name: fieldExperience, Label: "Nivel de experiencia", Prompt: "¿Cuál es tu nivel de experiencia? (junior, medio, senior o experto)",
				Enum: []string{string(ExperienceJunior), string(ExperienceMid), string(ExperienceSenior), string(ExperienceExpert)}},
		},
		Completeness: map[string]float64{
			fieldHourlyRate:      0.30,
			fieldProjectHours:    0.30,
			fieldOperationalCost: 0.20,
			fieldExperience:      0.20,
		},
	},
	ArchetypeHybrid: {
		Label: "Híbrido",
		Fields: []FieldSpec{
			{Name: fieldProfessionalRate, Label: "Tarifa profesional por hora", Prompt: "¿Cuánto vale tu hora de trabajo profesional?", Required: true},
			{Name: fieldClientHours, Label: "Horas por cliente", Prompt: "¿Cuántas horas dedicas a cada cliente?", Required: true},
			{Name: fieldProductsCost, Label: "Costo de productos por cliente", Prompt: "¿Cuánto cuestan los productos que usas por cliente?", Required: true},
			{Name: fieldAdditionalCost, Label: "Costos adicionales", Prompt: "¿Tienes otros costos por cliente, como transporte o insumos menores? (0 si no aplica)"},
		},
		Completeness: map[string]float64{
			fieldProfessionalRate: 0.30,
			fieldClientHours:      0.30,
			fieldProductsCost:     0.25,
			fieldAdditionalCost:   0.15,
		},
	},
}

// ArchetypeLabel returns the Spanish display name for an archetype, or the
// raw tag when it is not a known model.
func ArchetypeLabel(a Archetype) string {
	if cfg, ok := registry[a]; ok {
		return cfg.Label
	}
	return string(a)
}

// Experience multipliers applied to the service base price. Missing or
// unknown levels price as mid.
var experienceMultipliers = map[ExperienceLevel]float64{
	ExperienceJunior: 1.0,
	ExperienceMid:    1.3,
	ExperienceSenior: 1.7,
	ExperienceExpert: 2.2,
}

func experienceMultiplier(level string) float64 {
	if m, ok := experienceMultipliers[ExperienceLevel(level)]; ok {
		return m
	}
	return experienceMultipliers[ExperienceMid]
}

// Hourly-rate tiers for the Colombian services market, in COP. Tier index
// matches the experience ladder: junior, mid, senior, expert.
const (
	rateTierMidFloor    = 25000
	rateTierSeniorFloor = 60000
	rateTierExpertFloor = 120000
)

var rateTierLabels = []string{"Junior", "Medio", "Senior", "Experto"}

func rateTier(rate float64) int {
	switch {
	case rate < rateTierMidFloor:
		return 0
	case rate < rateTierSeniorFloor:
		return 1
	case rate < rateTierExpertFloor:
		return 2
	default:
		return 3
	}
}

func experienceTier(level string) int {
	switch ExperienceLevel(level) {
	case ExperienceJunior:
		return 0
	case ExperienceSenior:
		return 2
	case ExperienceExpert:
		return 3
	default:
		return 1
	}
}
