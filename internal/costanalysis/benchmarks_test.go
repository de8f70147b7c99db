package costanalysis

import "testing"

func benchmarksFor(t *testing.T, arch Archetype, raw map[string]any) []Benchmark {
	t.Helper()
	costs := Validate(arch, raw).Costs
	analysis := ComputeAnalysis(arch, costs)
	metrics := ComputeMetrics(arch, costs, analysis)
	return CompareBenchmarks(arch, costs, metrics)
}

func statusOf(t *testing.T, benchmarks []Benchmark, metric string) BenchmarkStatus {
	t.Helper()
	for _, b := range benchmarks {
		if b.Metric == metric {
			return b.Status
		}
	}
	t.Fatalf("benchmark %q not found in %+v", metric, benchmarks)
	return ""
}

func TestManufacturingBenchmarkStatuses(t *testing.T) {
	b := benchmarksFor(t, ArchetypeManufacturing, manufacturingInput())
	if len(b) != 3 {
		t.Fatalf("expected 3 manufacturing benchmarks, got %d", len(b))
	}
	// materials 3000/5600 ≈ 54% → good; labor ≈ 36% → average; packaging ≈ 5% → good
	if s := statusOf(t, b, "Materias primas sobre costo total"); s != StatusGood {
		t.Fatalf("materials status: got %s want good", s)
	}
	if s := statusOf(t, b, "Mano de obra sobre costo total"); s != StatusAverage {
		t.Fatalf("labor status: got %s want average", s)
	}
	if s := statusOf(t, b, "Empaque sobre costo total"); s != StatusGood {
		t.Fatalf("packaging status: got %s want good", s)
	}
}

func TestManufacturingBenchmarkPoorBand(t *testing.T) {
	b := benchmarksFor(t, ArchetypeManufacturing, map[string]any{
		"materials": 9000.0, "labor": 500.0, "packaging": 100.0, "overhead": 3000.0,
	})
	// materials ≈ 93% of total → far outside 40-60
	if s := statusOf(t, b, "Materias primas sobre costo total"); s != StatusPoor {
		t.Fatalf("materials status: got %s want poor", s)
	}
}

func TestResaleBenchmarkStatuses(t *testing.T) {
	b := benchmarksFor(t, ArchetypeResale, resaleInput())
	if s := statusOf(t, b, "Margen de ganancia"); s != StatusGood {
		t.Fatalf("margin status: got %s want good", s)
	}
	if s := statusOf(t, b, "Costo logístico"); s != StatusGood {
		t.Fatalf("logistics status: got %s want good", s)
	}
	if s := statusOf(t, b, "ROI por producto"); s != StatusGood {
		t.Fatalf("roi status: got %s want good", s)
	}
}

func TestServiceRateTierMatchesExperience(t *testing.T) {
	// 50.000/h declared senior sits one tier below the senior band.
	b := benchmarksFor(t, ArchetypeService, serviceInput())
	if s := statusOf(t, b, "Tarifa por hora"); s != StatusAverage {
		t.Fatalf("rate status: got %s want average", s)
	}

	// 80.000/h senior lands inside its own band.
	raw := serviceInput()
	raw["hourlyRate"] = 80000.0
	b = benchmarksFor(t, ArchetypeService, raw)
	if s := statusOf(t, b, "Tarifa por hora"); s != StatusGood {
		t.Fatalf("rate status: got %s want good", s)
	}

	// 10.000/h declared expert is two tiers off.
	raw["hourlyRate"] = 10000.0
	raw["experienceLevel"] = "expert"
	b = benchmarksFor(t, ArchetypeService, raw)
	if s := statusOf(t, b, "Tarifa por hora"); s != StatusPoor {
		t.Fatalf("rate status: got %s want poor", s)
	}
}

func TestHybridBenchmarkStatuses(t *testing.T) {
	b := benchmarksFor(t, ArchetypeHybrid, hybridInput())
	// service 80000/120000 ≈ 67% → good; margin 55500/120000 ≈ 46% → good
	if s := statusOf(t, b, "Componente de servicio"); s != StatusGood {
		t.Fatalf("service mix status: got %s want good", s)
	}
	if s := statusOf(t, b, "Margen combinado"); s != StatusGood {
		t.Fatalf("combined margin status: got %s want good", s)
	}
}

func TestUnknownArchetypeBenchmarksEmpty(t *testing.T) {
	b := CompareBenchmarks(Archetype("panaderia"), CostInput{Values: map[string]float64{}}, Metrics{Proportions: map[string]float64{}})
	if len(b) != 0 {
		t.Fatalf("unknown archetype should have no benchmarks, got %+v", b)
	}
}
