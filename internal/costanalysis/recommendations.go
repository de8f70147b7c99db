package costanalysis

import (
	"fmt"
	"math"
)

// GenerateRecommendations builds the four-tier recommendation plan for an
// archetype. It recomputes the analysis and metrics it needs internally so
// it stays a pure function of its arguments; the benchmark section reuses
// CompareBenchmarks so banding logic lives in exactly one place. Unknown
// archetypes get the generic plan.
func GenerateRecommendations(archetype Archetype, costs CostInput, totalCost float64) RecommendationSet {
	if _, ok := registry[archetype]; !ok {
		return genericRecommendations(totalCost)
	}

	analysis := ComputeAnalysis(archetype, costs)
	metrics := ComputeMetrics(archetype, costs, analysis)
	benchmarks := CompareBenchmarks(archetype, costs, metrics)
	p := metrics.Proportions

	var set RecommendationSet
	switch archetype {
	case ArchetypeManufacturing:
		set = manufacturingRecommendations(p, totalCost)
	case ArchetypeResale:
		set = resaleRecommendations(costs, analysis, p, totalCost)
	case ArchetypeService:
		set = serviceRecommendations(costs, analysis, p)
	case ArchetypeHybrid:
		set = hybridRecommendations(analysis, p)
	}
	set.Benchmarks = benchmarks
	return set
}

func manufacturingRecommendations(p map[string]float64, totalCost float64) RecommendationSet {
	priority := []PriorityRecommendation{}
	if p[fieldMaterials] > 0.60 {
		priority = append(priority, sharePriority(
			"Reducir costo de materias primas",
			p[fieldMaterials], 0.50, totalCost,
			[]string{
				"Solicita cotizaciones a al menos tres proveedores",
				"Negocia descuentos por volumen o pronto pago",
				"Evalúa materiales alternativos sin bajar calidad",
			}))
	}
	if len(priority) < 2 && p[fieldLabor] > 0.40 {
		priority = append(priority, sharePriority(
			"Optimizar mano de obra",
			p[fieldLabor], 0.30, totalCost,
			[]string{
				"Mide cuánto tiempo toma cada etapa de producción",
				"Estandariza el proceso con plantillas o moldes",
				"Automatiza o terceriza las tareas repetitivas",
			}))
	}
	if len(priority) == 0 {
		priority = append(priority, PriorityRecommendation{
			Title:        "Mantén tu estructura de costos",
			Impact:       "Margen protegido a futuro",
			ROI:          "5%",
			CurrentValue: fmt.Sprintf("%.0f%%", p[fieldMaterials]*100),
			TargetValue:  "40% - 60%",
			Steps: []string{
				"Revisa tus costos una vez al mes",
				"Registra cada cambio de precio de tus proveedores",
				"Compara tu margen contra el plan cada trimestre",
			},
		})
	}

	optimization := []OptimizationRecommendation{
		optimizationItem("Negociación con proveedores",
			"Concentra tus compras de materiales en menos proveedores y negocia precio por volumen.",
			totalCost, 0.08, p[fieldMaterials], 0.50, "media"),
		optimizationItem("Eficiencia en procesos",
			"Reduce tiempos muertos y reprocesos en las etapas que más mano de obra consumen.",
			totalCost, 0.05, p[fieldLabor], 0.30, "media"),
		optimizationItem("Empaque optimizado",
			"Rediseña el empaque con materiales más simples manteniendo la presentación.",
			totalCost, 0.03, p[fieldPackaging], 0.12, "baja"),
	}

	strategic := []StrategicRecommendation{
		{Title: "Automatización parcial de producción", Description: "Identifica la etapa más repetitiva de tu proceso y automatízala con maquinaria sencilla.", Impact: "Alto", Investment: "Media", Timeline: "6-12 meses"},
		{Title: "Certificación de calidad", Description: "Una certificación básica te abre la puerta a clientes corporativos que pagan mejor.", Impact: "Medio", Investment: "Baja", Timeline: "3-6 meses"},
		{Title: "Línea premium", Description: "Usa tu capacidad instalada para una versión de mayor margen dirigida a otro segmento.", Impact: "Alto", Investment: "Media", Timeline: "6-12 meses"},
	}

	return RecommendationSet{Priority: priority, Optimization: optimization, Strategic: strategic}
}

func resaleRecommendations(costs CostInput, analysis CostAnalysis, p map[string]float64, totalCost float64) RecommendationSet {
	margin := costs.Value(fieldDesiredMarginPct)

	priority := []PriorityRecommendation{}
	if margin > 0 && margin < 25 {
		target := math.Round(totalCost * 1.25)
		priority = append(priority, PriorityRecommendation{
			Title:        "Aumentar margen de ganancia",
			Impact:       "Ganancia adicional de $" + FormatCOP(target-analysis.SellingPrice) + " por unidad",
			ROI:          fmt.Sprintf("%.0f%%", math.Round(25-margin)),
			CurrentValue: fmt.Sprintf("%.0f%%", margin),
			TargetValue:  "25% - 50%",
			Steps: []string{
				"Reagrupa productos en combos con mayor valor percibido",
				"Sube precios gradualmente en los productos de alta rotación",
				"Negocia mejores precios de compra para ampliar el margen",
			},
		})
	}
	if len(priority) < 2 && p["logistics"] > 0.10 {
		priority = append(priority, sharePriority(
			"Reducir costo logístico",
			p["logistics"], 0.08, totalCost,
			[]string{
				"Consolida envíos semanales en un solo despacho",
				"Compara operadores logísticos cada trimestre",
				"Negocia tarifa por volumen con tu transportador",
			}))
	}
	if len(priority) == 0 {
		priority = append(priority, PriorityRecommendation{
			Title:        "Protege tu margen",
			Impact:       "Margen estable frente a la competencia",
			ROI:          "5%",
			CurrentValue: fmt.Sprintf("%.0f%%", margin),
			TargetValue:  "25% - 50%",
			Steps: []string{
				"Monitorea el precio de tus competidores cada mes",
				"Revisa tus costos de compra con cada pedido",
				"Mantén tu margen dentro del rango objetivo",
			},
		})
	}

	optimization := []OptimizationRecommendation{
		optimizationItem("Compras por volumen",
			"Agrupa pedidos para alcanzar descuentos de mayorista con tus proveedores.",
			totalCost, 0.05, p["purchase"], 0.70, "media"),
		optimizationItem("Logística compartida",
			"Comparte despachos con otros comerciantes de tu zona para diluir el flete.",
			totalCost, 0.04, p["logistics"], 0.08, "baja"),
		optimizationItem("Rotación de inventario",
			"Libera capital y espacio sacando rápido los productos de baja rotación.",
			totalCost, 0.03, p["storage"], 0.10, "media"),
	}

	strategic := []StrategicRecommendation{
		{Title: "Marca propia", Description: "Empaca los productos de mejor rotación bajo tu propia marca para capturar más margen.", Impact: "Alto", Investment: "Media", Timeline: "6-12 meses"},
		{Title: "Canal de venta directo", Description: "Vende por catálogo o tienda virtual propia y reduce la dependencia de intermediarios.", Impact: "Medio", Investment: "Baja", Timeline: "3-6 meses"},
		{Title: "Acuerdos de exclusividad", Description: "Negocia la distribución exclusiva en tu zona de los productos que mejor rotan.", Impact: "Medio", Investment: "Media", Timeline: "6-12 meses"},
	}

	return RecommendationSet{Priority: priority, Optimization: optimization, Strategic: strategic}
}

func serviceRecommendations(costs CostInput, analysis CostAnalysis, p map[string]float64) RecommendationSet {
	rate := costs.Value(fieldHourlyRate)
	gross := analysis.FinalPrice * serviceProjectsPerMonth
	operational := p["operational"]

	priority := []PriorityRecommendation{}
	if operational > 0.40 {
		savings := math.Round(gross * (operational - 0.30))
		priority = append(priority, PriorityRecommendation{
			Title:        "Reducir costos operativos",
			Impact:       "Ahorro mensual estimado de $" + FormatCOP(savings),
			ROI:          fmt.Sprintf("%.0f%%", roundFloor((operational-0.30)*100, 5)),
			CurrentValue: fmt.Sprintf("%.0f%%", operational*100),
			TargetValue:  "30%",
			Steps: []string{
				"Lista todas tus suscripciones y cancela las que no usas",
				"Comparte espacio de trabajo o trabaja remoto",
				"Agrupa compras de insumos para conseguir descuentos",
			},
		})
	}
	if len(priority) < 2 && rate > 0 && rateTier(rate) < experienceTier(costs.Experience) {
		floor := tierFloor(experienceTier(costs.Experience))
		extra := math.Round((floor - rate) * costs.Value(fieldProjectHours))
		priority = append(priority, PriorityRecommendation{
			Title:        "Ajustar tarifa a tu experiencia",
			Impact:       "Ingreso adicional de $" + FormatCOP(extra) + " por proyecto",
			ROI:          fmt.Sprintf("%.0f%%", math.Round((floor/rate-1)*100)),
			CurrentValue: "$" + FormatCOP(rate),
			TargetValue:  tierRangeLabel(experienceTier(costs.Experience)),
			Steps: []string{
				"Documenta casos de éxito y resultados medibles",
				"Comunica el aumento a clientes actuales con antelación",
				"Aplica la tarifa nueva a cada cliente nuevo desde ya",
			},
		})
	}
	if len(priority) == 0 {
		priority = append(priority, PriorityRecommendation{
			Title:        "Consolida tu tarifa",
			Impact:       "Ingreso mensual estable",
			ROI:          "5%",
			CurrentValue: "$" + FormatCOP(rate),
			TargetValue:  tierRangeLabel(experienceTier(costs.Experience)),
			Steps: []string{
				"Revisa tu tarifa cada seis meses",
				"Ajusta por inflación y nuevas habilidades",
				"Mide tus horas reales por proyecto",
			},
		})
	}

	operationalCost := costs.Value(fieldOperationalCost)
	optimization := []OptimizationRecommendation{
		optimizationItem("Audita suscripciones y herramientas",
			"Cancela o baja de plan las herramientas que no usas todas las semanas.",
			operationalCost, 0.06, operational, 0.30, "baja"),
		optimizationItem("Espacio de trabajo flexible",
			"Cambia oficina fija por coworking o trabajo remoto parcial.",
			operationalCost, 0.08, operational, 0.30, "media"),
		optimizationItem("Automatiza tareas administrativas",
			"Usa plantillas y facturación automática para liberar horas facturables.",
			operationalCost, 0.05, operational, 0.30, "baja"),
	}

	strategic := []StrategicRecommendation{
		{Title: "Productiza tus servicios", Description: "Convierte tu servicio en paquetes de alcance fijo y precio cerrado.", Impact: "Alto", Investment: "Baja", Timeline: "3-6 meses"},
		{Title: "Contratos recurrentes", Description: "Ofrece planes mensuales de acompañamiento en lugar de proyectos sueltos.", Impact: "Alto", Investment: "Media", Timeline: "3-6 meses"},
		{Title: "Especialización", Description: "Certifícate en un nicho que pague tarifas premium.", Impact: "Medio", Investment: "Alta", Timeline: "12+ meses"},
	}

	return RecommendationSet{Priority: priority, Optimization: optimization, Strategic: strategic}
}

func hybridRecommendations(analysis CostAnalysis, p map[string]float64) RecommendationSet {
	totalPerClient := analysis.TotalPerClient
	service := p["service"]

	priority := []PriorityRecommendation{}
	if totalPerClient > 0 && service < 0.50 {
		extra := math.Round((0.60 - service) * totalPerClient)
		priority = append(priority, PriorityRecommendation{
			Title:        "Fortalecer componente de servicio",
			Impact:       "Margen adicional de $" + FormatCOP(extra) + " por cliente",
			ROI:          fmt.Sprintf("%.0f%%", roundFloor((0.60-service)*100, 5)),
			CurrentValue: fmt.Sprintf("%.0f%%", service*100),
			TargetValue:  "60%",
			Steps: []string{
				"Incluye asesoría o seguimiento en cada paquete",
				"Cobra el diagnóstico inicial como servicio aparte",
				"Presenta el servicio como el valor principal de tu oferta",
			},
		})
	}
	if len(priority) < 2 && p["additional"] > 0.20 {
		priority = append(priority, sharePriority(
			"Controlar costos adicionales",
			p["additional"], 0.15, totalPerClient,
			[]string{
				"Detalla cada costo adicional por cliente",
				"Elimina los que el cliente no percibe como valor",
				"Negocia insumos menores por volumen",
			}))
	}
	if len(priority) == 0 {
		priority = append(priority, PriorityRecommendation{
			Title:        "Equilibra servicio y productos",
			Impact:       "Mezcla de ingresos sostenible",
			ROI:          "5%",
			CurrentValue: fmt.Sprintf("%.0f%%", service*100),
			TargetValue:  "50% - 75%",
			Steps: []string{
				"Revisa la mezcla de cada paquete trimestralmente",
				"Mide qué parte de tu oferta valoran más los clientes",
				"Ajusta precios cuando cambien los costos de productos",
			},
		})
	}

	optimization := []OptimizationRecommendation{
		optimizationItem("Estandariza tus paquetes",
			"Define dos o tres paquetes cerrados en lugar de cotizar cada cliente desde cero.",
			totalPerClient, 0.05, service, 0.60, "baja"),
		optimizationItem("Compra productos al por mayor",
			"Agrupa la compra de productos de varios clientes en un solo pedido.",
			totalPerClient, 0.06, p["products"], 0.30, "media"),
		optimizationItem("Reduce costos adicionales",
			"Revisa transporte e insumos menores; suelen crecer sin que nadie los mire.",
			totalPerClient, 0.04, p["additional"], 0.15, "baja"),
	}

	strategic := []StrategicRecommendation{
		{Title: "Paquetes integrados", Description: "Diseña ofertas cerradas de servicio más producto con un precio único.", Impact: "Alto", Investment: "Baja", Timeline: "3-6 meses"},
		{Title: "Venta recurrente de productos", Description: "Convierte los productos que usas en ventas de reposición periódicas.", Impact: "Medio", Investment: "Media", Timeline: "6-12 meses"},
	}

	return RecommendationSet{Priority: priority, Optimization: optimization, Strategic: strategic}
}

func genericRecommendations(totalCost float64) RecommendationSet {
	return RecommendationSet{
		Priority: []PriorityRecommendation{{
			Title:        "Registra todos tus costos",
			Impact:       "Base confiable para fijar precios",
			ROI:          "N/A",
			CurrentValue: "Información parcial",
			TargetValue:  "Costeo completo",
			Steps: []string{
				"Anota cada gasto del negocio durante un mes",
				"Separa costos fijos de costos variables",
				"Repite el análisis con la información completa",
			},
		}},
		Optimization: []OptimizationRecommendation{{
			Title:            "Revisa tus tres gastos más grandes",
			Description:      "En la mayoría de negocios pequeños, tres rubros concentran casi todo el costo.",
			EstimatedSavings: math.Round(totalCost * 0.05),
			Effort:           "baja",
		}},
		Benchmarks: []Benchmark{},
		Strategic: []StrategicRecommendation{
			{Title: "Define tu modelo de negocio", Description: "Clasifica tu operación como manufactura, reventa, servicios o híbrido para recibir un análisis específico.", Impact: "Alto", Investment: "Baja", Timeline: "1-3 meses"},
			{Title: "Crea un fondo de imprevistos", Description: "Reserva un porcentaje de cada venta para cubrir los meses flojos.", Impact: "Medio", Investment: "Baja", Timeline: "3-6 meses"},
		},
	}
}

// sharePriority builds a priority item for a cost share that exceeds its
// target: the impact is the cost freed by returning to target, the roi the
// percentage-point excess.
func sharePriority(title string, current, target, totalCost float64, steps []string) PriorityRecommendation {
	savings := totalCost * (current - target)
	if savings <= 0 {
		savings = totalCost * 0.05
	}
	return PriorityRecommendation{
		Title:        title,
		Impact:       "Ahorro estimado de $" + FormatCOP(math.Round(savings)),
		ROI:          fmt.Sprintf("%.0f%%", roundFloor((current-target)*100, 5)),
		CurrentValue: fmt.Sprintf("%.0f%%", current*100),
		TargetValue:  fmt.Sprintf("%.0f%%", target*100),
		Steps:        steps,
	}
}

// optimizationItem scales a base savings fraction by how far the proportion
// exceeds its target; at or below target the base fraction stands.
func optimizationItem(title, description string, totalCost, base, current, target float64, effort string) OptimizationRecommendation {
	scale := 1.0
	if target > 0 && current > target {
		scale = current / target
	}
	return OptimizationRecommendation{
		Title:            title,
		Description:      description,
		EstimatedSavings: math.Round(totalCost * base * scale),
		Effort:           effort,
	}
}

func roundFloor(v, floor float64) float64 {
	r := math.Round(v)
	if r < floor {
		return floor
	}
	return r
}

func tierFloor(tier int) float64 {
	switch tier {
	case 0:
		return 0
	case 1:
		return rateTierMidFloor
	case 2:
		return rateTierSeniorFloor
	default:
		return rateTierExpertFloor
	}
}

func tierRangeLabel(tier int) string {
	switch tier {
	case 0:
		return "<$" + FormatCOP(rateTierMidFloor)
	case 1:
		return "$" + FormatCOP(rateTierMidFloor) + " - $" + FormatCOP(rateTierSeniorFloor)
	case 2:
		return "$" + FormatCOP(rateTierSeniorFloor) + " - $" + FormatCOP(rateTierExpertFloor)
	default:
		return ">$" + FormatCOP(rateTierExpertFloor)
	}
}
