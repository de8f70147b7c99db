package costanalysis

import "math"

// Pricing constants. These multipliers are part of the product contract:
// saved analyses and downstream renderers assume them, so changing one is a
// breaking change, not a tuning knob.
const (
	manufacturingMinMarkup     = 1.2
	manufacturingOptimalMarkup = 1.5
	manufacturingPremiumMarkup = 2.0

	// Billable projects assumed per month for service income.
	serviceProjectsPerMonth = 4

	// Hybrid pricing margins: 60% on the service component, 25% on the
	// product component, pass-through on additional costs.
	hybridServiceMarkup = 1.6
	hybridProductMarkup = 1.25
)

// ComputeAnalysis derives cost totals and price tiers from validated input.
// It is deterministic and has no side effects; an unknown archetype yields a
// zero analysis.
func ComputeAnalysis(archetype Archetype, costs CostInput) CostAnalysis {
	switch archetype {
	case ArchetypeManufacturing:
		return manufacturingAnalysis(costs)
	case ArchetypeResale:
		return resaleAnalysis(costs)
	case ArchetypeService:
		return serviceAnalysis(costs)
	case ArchetypeHybrid:
		return hybridAnalysis(costs)
	default:
		return CostAnalysis{}
	}
}

func manufacturingAnalysis(costs CostInput) CostAnalysis {
	total := costs.Value(fieldMaterials) + costs.Value(fieldLabor) +
		costs.Value(fieldPackaging) + costs.Value(fieldOverhead)/daysPerMonth
	optimal := math.Round(total * manufacturingOptimalMarkup)
	return CostAnalysis{
		TotalCost:    total,
		MinPrice:     math.Round(total * manufacturingMinMarkup),
		OptimalPrice: optimal,
		PremiumPrice: math.Round(total * manufacturingPremiumMarkup),
		Profit:       optimal - total,
	}
}

func resaleAnalysis(costs CostInput) CostAnalysis {
	purchase := costs.Value(fieldPurchaseCost)
	logistics := purchase * costs.Value(fieldLogisticsPct) / 100
	total := purchase + logistics + costs.Value(fieldStorage)/daysPerMonth
	selling := math.Round(total * (1 + costs.Value(fieldDesiredMarginPct)/100))
	profit := selling - total
	roi := 0.0
	if total > 0 {
		roi = math.Round(profit / total * 100)
	}
	return CostAnalysis{
		TotalCost:     total,
		LogisticsCost: logistics,
		SellingPrice:  selling,
		Profit:        profit,
		ROI:           &roi,
	}
}

func serviceAnalysis(costs CostInput) CostAnalysis {
	base := costs.Value(fieldHourlyRate) * costs.Value(fieldProjectHours)
	mult := experienceMultiplier(costs.Experience)
	final := math.Round(base * mult)
	operational := costs.Value(fieldOperationalCost)
	monthly := math.Round(final*serviceProjectsPerMonth - operational)
	return CostAnalysis{
		// Service costs are monthly, so the total and the profit are too.
		TotalCost:            operational,
		BasePrice:            base,
		ExperienceMultiplier: mult,
		FinalPrice:           final,
		MonthlyIncome:        monthly,
		Profit:               monthly,
	}
}

func hybridAnalysis(costs CostInput) CostAnalysis {
	service := costs.Value(fieldProfessionalRate) * costs.Value(fieldClientHours)
	products := costs.Value(fieldProductsCost)
	additional := costs.Value(fieldAdditionalCost)
	totalPerClient := service + products + additional
	suggested := math.Round(service*hybridServiceMarkup + products*hybridProductMarkup + additional)
	return CostAnalysis{
		TotalCost:        totalPerClient,
		ServiceComponent: service,
		TotalPerClient:   totalPerClient,
		SuggestedPrice:   suggested,
		Profit:           suggested - totalPerClient,
	}
}
