package costanalysis

// ComputeMetrics scores the reported cost structure: component proportions,
// a coherence score penalized when proportions fall outside the healthy band
// for the archetype, and a completeness score over the supplied fields.
// All scores land in [0,1].
func ComputeMetrics(archetype Archetype, costs CostInput, analysis CostAnalysis) Metrics {
	m := Metrics{Proportions: map[string]float64{}}

	coherence := 0.5
	switch archetype {
	case ArchetypeManufacturing:
		coherence = manufacturingMetrics(&m, costs, analysis)
	case ArchetypeResale:
		coherence = resaleMetrics(&m, costs, analysis)
	case ArchetypeService:
		coherence = serviceMetrics(&m, costs, analysis)
	case ArchetypeHybrid:
		coherence = hybridMetrics(&m, costs, analysis)
	}

	m.CoherenceScore = clamp01(coherence)
	m.Completeness = clamp01(completenessFor(archetype, costs))
	m.OverallScore = clamp01(coherenceWeight*m.CoherenceScore + completenessWeight*m.Completeness)
	return m
}

func manufacturingMetrics(m *Metrics, costs CostInput, analysis CostAnalysis) float64 {
	total := analysis.TotalCost
	m.Proportions[fieldMaterials] = share(costs.Value(fieldMaterials), total)
	m.Proportions[fieldLabor] = share(costs.Value(fieldLabor), total)
	m.Proportions[fieldPackaging] = share(costs.Value(fieldPackaging), total)
	m.Proportions[fieldOverhead] = share(costs.Value(fieldOverhead)/daysPerMonth, total)

	score := 1.0
	if total > 0 {
		if m.Proportions[fieldMaterials] > 0.70 || m.Proportions[fieldMaterials] < 0.30 {
			score -= 0.20
		}
		if m.Proportions[fieldLabor] < 0.10 || m.Proportions[fieldLabor] > 0.50 {
			score -= 0.15
		}
		if m.Proportions[fieldPackaging] > 0.20 {
			score -= 0.10
		}
	}
	if costs.Value(fieldOverhead) == 0 {
		score -= 0.20
	}
	return score
}

func resaleMetrics(m *Metrics, costs CostInput, analysis CostAnalysis) float64 {
	total := analysis.TotalCost
	m.Proportions["purchase"] = share(costs.Value(fieldPurchaseCost), total)
	m.Proportions["logistics"] = share(analysis.LogisticsCost, total)
	m.Proportions["storage"] = share(costs.Value(fieldStorage)/daysPerMonth, total)

	score := 1.0
	if total > 0 {
		if m.Proportions["logistics"] > 0.15 {
			score -= 0.20
		}
		if m.Proportions["storage"] > 0.20 {
			score -= 0.15
		}
		if m.Proportions["purchase"] < 0.60 {
			score -= 0.10
		}
	}
	margin := costs.Value(fieldDesiredMarginPct)
	if margin < 10 {
		score -= 0.20
	}
	if margin > 100 {
		score -= 0.15
	}
	return score
}

func serviceMetrics(m *Metrics, costs CostInput, analysis CostAnalysis) float64 {
	// Service proportions are shares of gross monthly revenue. The
	// operational share is capped at 1 so the pair still sums to 1 when
	// costs exceed income.
	gross := analysis.FinalPrice * serviceProjectsPerMonth
	operational := share(costs.Value(fieldOperationalCost), gross)
	if operational > 1 {
		operational = 1
	}
	m.Proportions["operational"] = operational
	if gross > 0 {
		m.Proportions["net"] = 1 - operational
	} else {
		m.Proportions["net"] = 0
	}

	score := 1.0
	if gross > 0 && operational > 0.60 {
		score -= 0.25
	}
	if costs.Value(fieldOperationalCost) == 0 {
		score -= 0.20
	}
	if rate := costs.Value(fieldHourlyRate); rate > 0 && rate < 5000 {
		score -= 0.15
	}
	if costs.Value(fieldProjectHours) > 300 {
		score -= 0.10
	}
	return score
}

func hybridMetrics(m *Metrics, costs CostInput, analysis CostAnalysis) float64 {
	total := analysis.TotalPerClient
	m.Proportions["service"] = share(analysis.ServiceComponent, total)
	m.Proportions["products"] = share(costs.Value(fieldProductsCost), total)
	m.Proportions["additional"] = share(costs.Value(fieldAdditionalCost), total)

	score := 1.0
	if total > 0 {
		if m.Proportions["service"] < 0.40 {
			score -= 0.20
		}
		if m.Proportions["service"] > 0.90 {
			score -= 0.10
		}
		if m.Proportions["additional"] > 0.25 {
			score -= 0.15
		}
	}
	if costs.Value(fieldProductsCost) == 0 {
		score -= 0.20
	}
	return score
}

// completenessFor sums the archetype's field weights for every field the
// caller actually supplied. Weights per archetype sum to 1.
func completenessFor(archetype Archetype, costs CostInput) float64 {
	cfg, ok := registry[archetype]
	if !ok {
		return 0
	}
	total := 0.0
	for name, w := range cfg.Completeness {
		if name == fieldExperience {
			if costs.Experience != "" {
				total += w
			}
			continue
		}
		if costs.Value(name) > 0 {
			total += w
		}
	}
	return total
}

// share guards the zero-denominator case: a zero or negative total yields a
// 0 proportion instead of NaN or Inf.
func share(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
