package costanalysis

import "encoding/json"

const Disclaimer = "Este análisis es una guía de costeo y precios construida a partir de la información que suministraste. " +
	"No constituye asesoría contable, tributaria ni financiera."

// Archetype identifies one of the supported business models. It determines
// which cost fields are legal and which formulas and thresholds apply.
type Archetype string

const (
	ArchetypeManufacturing Archetype = "manufacturing"
	ArchetypeResale        Archetype = "resale"
	ArchetypeService       Archetype = "service"
	ArchetypeHybrid        Archetype = "hybrid"
)

// Archetypes lists the supported business models in presentation order.
func Archetypes() []Archetype {
	return []Archetype{ArchetypeManufacturing, ArchetypeResale, ArchetypeService, ArchetypeHybrid}
}

type ExperienceLevel string

const (
	ExperienceJunior ExperienceLevel = "junior"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
	ExperienceExpert ExperienceLevel = "expert"
)

type AlertType string

const (
	AlertInfo    AlertType = "info"
	AlertWarning AlertType = "warning"
	AlertDanger  AlertType = "danger"
)

type BenchmarkStatus string

const (
	StatusGood    BenchmarkStatus = "good"
	StatusAverage BenchmarkStatus = "average"
	StatusPoor    BenchmarkStatus = "poor"
)

// Blend weights for the overall data-quality score.
const (
	coherenceWeight    = 0.6
	completenessWeight = 0.4
)

// CostInput is a validated set of cost figures for one archetype. Values
// holds the numeric fields keyed by schema name. Experience keeps the
// raw-supplied service experience level; empty means the caller did not
// provide one, and pricing falls back to the mid multiplier.
type CostInput struct {
	Archetype  Archetype
	Values     map[string]float64
	Experience string
}

func (c CostInput) Value(name string) float64 { return c.Values[name] }

// MarshalJSON flattens the input to the shape downstream renderers expect:
// one object keyed by field name, plus experienceLevel when supplied.
func (c CostInput) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(c.Values)+1)
	for k, v := range c.Values {
		flat[k] = v
	}
	if c.Experience != "" {
		flat["experienceLevel"] = c.Experience
	}
	return json.Marshal(flat)
}

// UnmarshalJSON reverses the flattened form so persisted results restore
// losslessly. Numeric entries become Values; experienceLevel is the only
// string field.
func (c *CostInput) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	c.Values = make(map[string]float64, len(flat))
	for k, v := range flat {
		switch t := v.(type) {
		case float64:
			c.Values[k] = t
		case string:
			if k == "experienceLevel" {
				c.Experience = t
			}
		}
	}
	return nil
}

// ValidationResult is the total outcome of validating raw input against an
// archetype schema. Errors is always non-nil; empty means the input may
// proceed to pricing.
type ValidationResult struct {
	Costs  CostInput `json:"costs"`
	Errors []string  `json:"errors"`
}

func (v ValidationResult) OK() bool { return len(v.Errors) == 0 }

// CostAnalysis holds the derived totals and price tiers for one analysis.
// Tier fields are archetype-specific; TotalCost and Profit are always set.
// Profit is per-unit for manufacturing/resale/hybrid and monthly for service.
type CostAnalysis struct {
	TotalCost float64 `json:"totalCost"`

	// Manufacturing tiers.
	MinPrice     float64 `json:"minPrice,omitempty"`
	OptimalPrice float64 `json:"optimalPrice,omitempty"`
	PremiumPrice float64 `json:"premiumPrice,omitempty"`

	// Resale.
	LogisticsCost float64 `json:"logisticsCost,omitempty"`
	SellingPrice  float64 `json:"sellingPrice,omitempty"`
	// Pointer: a resale ROI of exactly 0% is still part of the contract.
	ROI *float64 `json:"roi,omitempty"`

	// Service.
	BasePrice            float64 `json:"basePrice,omitempty"`
	ExperienceMultiplier float64 `json:"experienceMultiplier,omitempty"`
	FinalPrice           float64 `json:"finalPrice,omitempty"`
	MonthlyIncome        float64 `json:"monthlyIncome,omitempty"`

	// Hybrid.
	ServiceComponent float64 `json:"serviceComponent,omitempty"`
	TotalPerClient   float64 `json:"totalPerClient,omitempty"`
	SuggestedPrice   float64 `json:"suggestedPrice,omitempty"`

	Profit float64 `json:"profit"`
}

// ROIValue returns the resale ROI percentage, zero when the analysis
// carries none.
func (a CostAnalysis) ROIValue() float64 {
	if a.ROI == nil {
		return 0
	}
	return *a.ROI
}

// Metrics scores the quality of the reported cost structure. Proportions map
// cost components to their fraction of the archetype total; fractions sum to
// 1 except when the total is zero (then all are 0).
type Metrics struct {
	Proportions    map[string]float64 `json:"proportions"`
	CoherenceScore float64            `json:"coherenceScore"`
	Completeness   float64            `json:"completeness"`
	OverallScore   float64            `json:"overallScore"`
}

// Alert is an ephemeral threshold warning. It is rendered and discarded,
// never persisted.
type Alert struct {
	Type       AlertType `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// Benchmark compares one computed value against a fixed industry reference.
type Benchmark struct {
	Metric         string          `json:"metric"`
	YourValue      string          `json:"yourValue"`
	IndustryRange  string          `json:"industryRange"`
	Status         BenchmarkStatus `json:"status"`
	Recommendation string          `json:"recommendation"`
}

type PriorityRecommendation struct {
	Title        string   `json:"title"`
	Impact       string   `json:"impact"`
	ROI          string   `json:"roi"`
	CurrentValue string   `json:"currentValue"`
	TargetValue  string   `json:"targetValue"`
	Steps        []string `json:"steps"`
}

type OptimizationRecommendation struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	EstimatedSavings float64 `json:"estimatedSavings"`
	Effort           string  `json:"effort"`
}

type StrategicRecommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Investment  string `json:"investment"`
	Timeline    string `json:"timeline"`
}

// RecommendationSet groups the four recommendation tiers produced for one
// analysis. It is computed once per analysis and threaded to every consumer.
type RecommendationSet struct {
	Priority     []PriorityRecommendation     `json:"priority"`
	Optimization []OptimizationRecommendation `json:"optimization"`
	Benchmarks   []Benchmark                  `json:"benchmarks"`
	Strategic    []StrategicRecommendation    `json:"strategic"`
}

// Result is the complete envelope for one analysis request. The analytical
// sections are present only when validation passed. It is always
// JSON-marshalable and never carries NaN or Inf.
type Result struct {
	Archetype       Archetype          `json:"archetype"`
	Costs           CostInput          `json:"costs"`
	Errors          []string           `json:"errors"`
	Analysis        *CostAnalysis      `json:"analysis,omitempty"`
	Metrics         *Metrics           `json:"metrics,omitempty"`
	Alerts          []Alert            `json:"alerts,omitempty"`
	Benchmarks      []Benchmark        `json:"benchmarks,omitempty"`
	Recommendations *RecommendationSet `json:"recommendations,omitempty"`
}

func (r Result) OK() bool { return len(r.Errors) == 0 }
