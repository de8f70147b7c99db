package costanalysis

import "fmt"

// CompareBenchmarks maps computed ratios onto fixed industry reference
// ranges. The ranges are editorial: they reflect typical Colombian
// small-business structures, not measured market data.
func CompareBenchmarks(archetype Archetype, costs CostInput, metrics Metrics) []Benchmark {
	analysis := ComputeAnalysis(archetype, costs)
	p := metrics.Proportions

	switch archetype {
	case ArchetypeManufacturing:
		return manufacturingBenchmarks(p)
	case ArchetypeResale:
		return resaleBenchmarks(costs, analysis)
	case ArchetypeService:
		return serviceBenchmarks(costs, p)
	case ArchetypeHybrid:
		return hybridBenchmarks(analysis, p)
	default:
		return []Benchmark{}
	}
}

func manufacturingBenchmarks(p map[string]float64) []Benchmark {
	materials := p[fieldMaterials] * 100
	labor := p[fieldLabor] * 100
	packaging := p[fieldPackaging] * 100

	materialsStatus := StatusAverage
	switch {
	case materials >= 40 && materials <= 60:
		materialsStatus = StatusGood
	case materials < 25 || materials > 75:
		materialsStatus = StatusPoor
	}

	laborStatus := StatusAverage
	switch {
	case labor >= 15 && labor <= 35:
		laborStatus = StatusGood
	case labor < 5 || labor > 50:
		laborStatus = StatusPoor
	}

	packagingStatus := StatusAverage
	switch {
	case packaging <= 15:
		packagingStatus = StatusGood
	case packaging > 25:
		packagingStatus = StatusPoor
	}

	return []Benchmark{
		{
			Metric:         "Materias primas sobre costo total",
			YourValue:      fmt.Sprintf("%.0f%%", materials),
			IndustryRange:  "40% - 60%",
			Status:         materialsStatus,
			Recommendation: benchmarkNote(materialsStatus, "Tu proporción de materiales está en el rango saludable.", "Acércate al rango 40-60% negociando compras o revisando el resto de tus costos.", "Tu estructura de materiales está muy lejos del rango típico; revisa los datos o el proceso."),
		},
		{
			Metric:         "Mano de obra sobre costo total",
			YourValue:      fmt.Sprintf("%.0f%%", labor),
			IndustryRange:  "15% - 35%",
			Status:         laborStatus,
			Recommendation: benchmarkNote(laborStatus, "Tu proporción de mano de obra es típica del sector.", "Ajusta procesos para acercar la mano de obra al rango 15-35%.", "La mano de obra está fuera de todo rango típico; revisa tiempos y tarifas."),
		},
		{
			Metric:         "Empaque sobre costo total",
			YourValue:      fmt.Sprintf("%.0f%%", packaging),
			IndustryRange:  "5% - 15%",
			Status:         packagingStatus,
			Recommendation: benchmarkNote(packagingStatus, "El empaque pesa lo normal en tu costo.", "Explora presentaciones más económicas para volver al rango 5-15%.", "El empaque consume demasiado costo; cámbialo antes de subir precios."),
		},
	}
}

func resaleBenchmarks(costs CostInput, analysis CostAnalysis) []Benchmark {
	margin := costs.Value(fieldDesiredMarginPct)
	logistics := costs.Value(fieldLogisticsPct)
	roi := analysis.ROIValue()

	marginStatus := StatusAverage
	switch {
	case margin >= 25 && margin <= 50:
		marginStatus = StatusGood
	case margin < 10 || margin > 100:
		marginStatus = StatusPoor
	}

	logisticsStatus := StatusAverage
	switch {
	case logistics <= 10:
		logisticsStatus = StatusGood
	case logistics > 20:
		logisticsStatus = StatusPoor
	}

	roiStatus := StatusAverage
	switch {
	case roi >= 20 && roi <= 45:
		roiStatus = StatusGood
	case roi < 10:
		roiStatus = StatusPoor
	}

	return []Benchmark{
		{
			Metric:         "Margen de ganancia",
			YourValue:      fmt.Sprintf("%.0f%%", margin),
			IndustryRange:  "25% - 50%",
			Status:         marginStatus,
			Recommendation: benchmarkNote(marginStatus, "Tu margen está en el rango típico de la reventa.", "Empuja tu margen hacia el rango 25-50% según tu categoría.", "Ese margen no es sostenible ni comparable con el mercado; replantéalo."),
		},
		{
			Metric:         "Costo logístico",
			YourValue:      fmt.Sprintf("%.0f%%", logistics),
			IndustryRange:  "0% - 10%",
			Status:         logisticsStatus,
			Recommendation: benchmarkNote(logisticsStatus, "Tu logística pesa lo esperado.", "Busca tarifas de envío por volumen para bajar del 10%.", "La logística se está comiendo el margen; renegocia o cambia de operador."),
		},
		{
			Metric:         "ROI por producto",
			YourValue:      fmt.Sprintf("%.0f%%", roi),
			IndustryRange:  "20% - 45%",
			Status:         roiStatus,
			Recommendation: benchmarkNote(roiStatus, "El retorno por producto es competitivo.", "Sube margen o baja costos para llevar el ROI al rango 20-45%.", "El retorno por producto es muy bajo para el esfuerzo de reventa."),
		},
	}
}

func serviceBenchmarks(costs CostInput, p map[string]float64) []Benchmark {
	rate := costs.Value(fieldHourlyRate)
	operational := p["operational"] * 100

	tier := rateTier(rate)
	expected := experienceTier(costs.Experience)
	dist := tier - expected
	if dist < 0 {
		dist = -dist
	}
	rateStatus := StatusGood
	switch {
	case dist >= 2:
		rateStatus = StatusPoor
	case dist == 1:
		rateStatus = StatusAverage
	}

	operationalStatus := StatusAverage
	switch {
	case operational <= 40:
		operationalStatus = StatusGood
	case operational > 60:
		operationalStatus = StatusPoor
	}

	return []Benchmark{
		{
			Metric:         "Tarifa por hora",
			YourValue:      "$" + FormatCOP(rate),
			IndustryRange:  "Junior <$25.000 · Medio $25.000-$60.000 · Senior $60.000-$120.000 · Experto >$120.000",
			Status:         rateStatus,
			Recommendation: fmt.Sprintf("Tu tarifa corresponde al nivel %s del mercado.", rateTierLabels[tier]),
		},
		{
			Metric:         "Costos operativos sobre ingresos",
			YourValue:      fmt.Sprintf("%.0f%%", operational),
			IndustryRange:  "0% - 40%",
			Status:         operationalStatus,
			Recommendation: benchmarkNote(operationalStatus, "Tus costos operativos dejan un margen sano.", "Revisa gastos mensuales para quedar por debajo del 40% del ingreso.", "Los costos operativos se llevan la mayor parte de tu ingreso; recórtalos ya."),
		},
	}
}

func hybridBenchmarks(analysis CostAnalysis, p map[string]float64) []Benchmark {
	service := p["service"] * 100
	combinedMargin := 0.0
	if analysis.TotalPerClient > 0 {
		combinedMargin = analysis.Profit / analysis.TotalPerClient * 100
	}

	serviceStatus := StatusAverage
	switch {
	case service >= 50 && service <= 75:
		serviceStatus = StatusGood
	case service < 30 || service > 90:
		serviceStatus = StatusPoor
	}

	marginStatus := StatusAverage
	switch {
	case combinedMargin >= 30 && combinedMargin <= 55:
		marginStatus = StatusGood
	case combinedMargin < 15:
		marginStatus = StatusPoor
	}

	return []Benchmark{
		{
			Metric:         "Componente de servicio",
			YourValue:      fmt.Sprintf("%.0f%%", service),
			IndustryRange:  "50% - 75%",
			Status:         serviceStatus,
			Recommendation: benchmarkNote(serviceStatus, "Tu mezcla servicio/productos es la típica de un híbrido sano.", "Acerca el componente de servicio al rango 50-75% del costo.", "La mezcla está muy desbalanceada para un modelo híbrido; revisa qué estás vendiendo realmente."),
		},
		{
			Metric:         "Margen combinado",
			YourValue:      fmt.Sprintf("%.0f%%", combinedMargin),
			IndustryRange:  "30% - 55%",
			Status:         marginStatus,
			Recommendation: benchmarkNote(marginStatus, "El margen combinado es competitivo.", "Ajusta precios o costos para llevar el margen al rango 30-55%.", "El margen combinado es demasiado bajo para sostener el negocio."),
		},
	}
}

func benchmarkNote(status BenchmarkStatus, good, average, poor string) string {
	switch status {
	case StatusGood:
		return good
	case StatusPoor:
		return poor
	default:
		return average
	}
}
