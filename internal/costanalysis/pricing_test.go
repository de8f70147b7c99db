package costanalysis

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func manufacturingInput() map[string]any {
	return map[string]any{"materials": 3000.0, "labor": 2000.0, "packaging": 300.0, "overhead": 9000.0}
}

func resaleInput() map[string]any {
	return map[string]any{"purchaseCost": 10000.0, "logisticsPct": 5.0, "storage": 3000.0, "desiredMarginPct": 30.0}
}

func serviceInput() map[string]any {
	return map[string]any{"hourlyRate": 50000.0, "projectHours": 20.0, "operationalCost": 200000.0, "experienceLevel": "senior"}
}

func hybridInput() map[string]any {
	return map[string]any{"professionalRate": 40000.0, "clientHours": 2.0, "productsCost": 30000.0, "additionalCost": 10000.0}
}

func mustValidate(t *testing.T, archetype Archetype, raw map[string]any) CostInput {
	t.Helper()
	res := Validate(archetype, raw)
	if !res.OK() {
		t.Fatalf("unexpected validation errors: %v", res.Errors)
	}
	return res.Costs
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestManufacturingAnalysisKnownScenario(t *testing.T) {
	costs := mustValidate(t, ArchetypeManufacturing, manufacturingInput())
	a := ComputeAnalysis(ArchetypeManufacturing, costs)

	// 3000 + 2000 + 300 + 9000/30 = 5600
	if diff(a.TotalCost, 5600) > 1e-9 {
		t.Fatalf("unexpected total cost: got=%f want=5600", a.TotalCost)
	}
	if a.MinPrice != 6720 {
		t.Fatalf("unexpected min price: got=%f want=6720", a.MinPrice)
	}
	if a.OptimalPrice != 8400 {
		t.Fatalf("unexpected optimal price: got=%f want=8400", a.OptimalPrice)
	}
	if a.PremiumPrice != 11200 {
		t.Fatalf("unexpected premium price: got=%f want=11200", a.PremiumPrice)
	}
	if diff(a.Profit, 2800) > 1e-9 {
		t.Fatalf("unexpected profit: got=%f want=2800", a.Profit)
	}
}

func TestResaleAnalysisKnownScenario(t *testing.T) {
	costs := mustValidate(t, ArchetypeResale, resaleInput())
	a := ComputeAnalysis(ArchetypeResale, costs)

	if diff(a.LogisticsCost, 500) > 1e-9 {
		t.Fatalf("unexpected logistics cost: got=%f want=500", a.LogisticsCost)
	}
	// 10000 + 500 + 3000/30 = 10600
	if diff(a.TotalCost, 10600) > 1e-9 {
		t.Fatalf("unexpected total cost: got=%f want=10600", a.TotalCost)
	}
	if a.SellingPrice != 13780 {
		t.Fatalf("unexpected selling price: got=%f want=13780", a.SellingPrice)
	}
	if diff(a.Profit, 3180) > 1e-9 {
		t.Fatalf("unexpected profit: got=%f want=3180", a.Profit)
	}
	if a.ROIValue() != 30 {
		t.Fatalf("unexpected roi: got=%f want=30", a.ROIValue())
	}
}

// A margin small enough to round the ROI down to 0% must still serialize
// the field: for resale, roi is part of the contract even at zero.
func TestResaleZeroROIStaysInJSON(t *testing.T) {
	raw := resaleInput()
	raw["desiredMarginPct"] = 0.4
	costs := mustValidate(t, ArchetypeResale, raw)
	a := ComputeAnalysis(ArchetypeResale, costs)
	if a.ROI == nil || *a.ROI != 0 {
		t.Fatalf("expected a present zero roi, got %v", a.ROI)
	}
	blob, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal analysis: %v", err)
	}
	if !strings.Contains(string(blob), `"roi":0`) {
		t.Fatalf("zero roi dropped from JSON: %s", blob)
	}
}

func TestServiceAnalysisKnownScenario(t *testing.T) {
	costs := mustValidate(t, ArchetypeService, serviceInput())
	a := ComputeAnalysis(ArchetypeService, costs)

	if a.BasePrice != 1000000 {
		t.Fatalf("unexpected base price: got=%f want=1000000", a.BasePrice)
	}
	if a.ExperienceMultiplier != 1.7 {
		t.Fatalf("unexpected multiplier: got=%f want=1.7", a.ExperienceMultiplier)
	}
	if a.FinalPrice != 1700000 {
		t.Fatalf("unexpected final price: got=%f want=1700000", a.FinalPrice)
	}
	// 1700000*4 - 200000 = 6600000
	if a.MonthlyIncome != 6600000 {
		t.Fatalf("unexpected monthly income: got=%f want=6600000", a.MonthlyIncome)
	}
	if a.TotalCost != 200000 {
		t.Fatalf("service total cost should be the monthly operational cost: got=%f", a.TotalCost)
	}
}

func TestServiceExperienceDefaultsToMid(t *testing.T) {
	raw := serviceInput()
	delete(raw, "experienceLevel")
	costs := mustValidate(t, ArchetypeService, raw)
	a := ComputeAnalysis(ArchetypeService, costs)
	if a.ExperienceMultiplier != 1.3 {
		t.Fatalf("missing experience should price as mid: got=%f", a.ExperienceMultiplier)
	}
	if a.FinalPrice != 1300000 {
		t.Fatalf("unexpected final price: got=%f want=1300000", a.FinalPrice)
	}
}

func TestHybridAnalysisKnownScenario(t *testing.T) {
	costs := mustValidate(t, ArchetypeHybrid, hybridInput())
	a := ComputeAnalysis(ArchetypeHybrid, costs)

	if a.ServiceComponent != 80000 {
		t.Fatalf("unexpected service component: got=%f want=80000", a.ServiceComponent)
	}
	if a.TotalPerClient != 120000 {
		t.Fatalf("unexpected total per client: got=%f want=120000", a.TotalPerClient)
	}
	// 80000*1.6 + 30000*1.25 + 10000 = 175500
	if a.SuggestedPrice != 175500 {
		t.Fatalf("unexpected suggested price: got=%f want=175500", a.SuggestedPrice)
	}
	if diff(a.Profit, 55500) > 1e-9 {
		t.Fatalf("unexpected profit: got=%f want=55500", a.Profit)
	}
	if a.TotalCost != a.TotalPerClient {
		t.Fatalf("hybrid total cost should equal total per client")
	}
}

func TestComputeAnalysisIdempotent(t *testing.T) {
	for _, arch := range Archetypes() {
		raw := map[Archetype]map[string]any{
			ArchetypeManufacturing: manufacturingInput(),
			ArchetypeResale:        resaleInput(),
			ArchetypeService:       serviceInput(),
			ArchetypeHybrid:        hybridInput(),
		}[arch]
		costs := mustValidate(t, arch, raw)
		first := ComputeAnalysis(arch, costs)
		second := ComputeAnalysis(arch, costs)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%s: repeated analysis differs: %+v vs %+v", arch, first, second)
		}
	}
}

func TestResaleMonotonicityInMargin(t *testing.T) {
	prev := CostAnalysis{}
	for i, margin := range []float64{10, 20, 30, 50, 80} {
		raw := resaleInput()
		raw["desiredMarginPct"] = margin
		costs := mustValidate(t, ArchetypeResale, raw)
		a := ComputeAnalysis(ArchetypeResale, costs)
		if i > 0 {
			if a.SellingPrice <= prev.SellingPrice {
				t.Fatalf("selling price must grow with margin: %f then %f", prev.SellingPrice, a.SellingPrice)
			}
			if a.Profit <= prev.Profit {
				t.Fatalf("profit must grow with margin: %f then %f", prev.Profit, a.Profit)
			}
		}
		prev = a
	}
}

func TestUnknownArchetypeAnalysisIsZero(t *testing.T) {
	a := ComputeAnalysis(Archetype("panaderia"), CostInput{Values: map[string]float64{"materials": 100}})
	if a.TotalCost != 0 || a.Profit != 0 {
		t.Fatalf("unknown archetype should produce a zero analysis: %+v", a)
	}
}
