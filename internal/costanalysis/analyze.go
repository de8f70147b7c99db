package costanalysis

import "strings"

// Analyze runs the full engine for one request: validation, then pricing,
// metrics, alerts, benchmarks and recommendations in that order, each
// exactly once. It never fails: invalid input comes back as a well-formed
// envelope whose Errors list is non-empty and whose analytical sections are
// absent. Safe for concurrent use; every call is independent.
func Analyze(archetype string, raw map[string]any) Result {
	arch, ok := ParseArchetype(archetype)
	if !ok {
		arch = Archetype(strings.ToLower(strings.TrimSpace(archetype)))
	}

	validation := Validate(arch, raw)
	res := Result{
		Archetype: arch,
		Costs:     validation.Costs,
		Errors:    validation.Errors,
	}
	if !validation.OK() {
		return res
	}

	analysis := ComputeAnalysis(arch, validation.Costs)
	metrics := ComputeMetrics(arch, validation.Costs, analysis)
	alerts := GenerateAlerts(arch, validation.Costs, metrics)
	benchmarks := CompareBenchmarks(arch, validation.Costs, metrics)
	recommendations := GenerateRecommendations(arch, validation.Costs, analysis.TotalCost)

	res.Analysis = &analysis
	res.Metrics = &metrics
	res.Alerts = alerts
	res.Benchmarks = benchmarks
	res.Recommendations = &recommendations
	return res
}
