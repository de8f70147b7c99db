package costanalysis

import "fmt"

// GenerateAlerts converts metric proportions into user-facing alerts. Rules
// are independent and non-overlapping per field; a request that satisfies
// every threshold produces no alerts at all.
func GenerateAlerts(archetype Archetype, costs CostInput, metrics Metrics) []Alert {
	alerts := []Alert{}
	p := metrics.Proportions

	switch archetype {
	case ArchetypeManufacturing:
		if p[fieldMaterials] > 0.70 {
			alerts = append(alerts, Alert{
				Type:       AlertWarning,
				Title:      "Materias Primas Muy Altas",
				Message:    fmt.Sprintf("Las materias primas representan el %.0f%% del costo total.", p[fieldMaterials]*100),
				Suggestion: "Negocia con proveedores o busca materiales alternativos.",
			})
		}
		if s := p[fieldMaterials]; s > 0 && s < 0.30 {
			alerts = append(alerts, Alert{
				Type:       AlertInfo,
				Title:      "Materias Primas Bajas",
				Message:    fmt.Sprintf("Las materias primas representan solo el %.0f%% del costo total.", s*100),
				Suggestion: "Verifica que estés incluyendo todos los materiales.",
			})
		}
		if p[fieldLabor] > 0.50 {
			alerts = append(alerts, Alert{
				Type:       AlertDanger,
				Title:      "Mano de Obra Excesiva",
				Message:    fmt.Sprintf("La mano de obra representa el %.0f%% del costo total.", p[fieldLabor]*100),
				Suggestion: "Optimiza procesos o evalúa automatizar tareas repetitivas.",
			})
		}
		if p[fieldPackaging] > 0.20 {
			alerts = append(alerts, Alert{
				Type:       AlertWarning,
				Title:      "Empaque Costoso",
				Message:    fmt.Sprintf("El empaque representa el %.0f%% del costo total.", p[fieldPackaging]*100),
				Suggestion: "Busca opciones de empaque más económicas sin sacrificar presentación.",
			})
		}
		if costs.Value(fieldOverhead) == 0 {
			alerts = append(alerts, Alert{
				Type:       AlertInfo,
				Title:      "Sin Gastos Fijos",
				Message:    "No registraste gastos fijos mensuales.",
				Suggestion: "Incluye arriendo, servicios y otros gastos fijos para un costeo realista.",
			})
		}

	case ArchetypeResale:
		margin := costs.Value(fieldDesiredMarginPct)
		if margin > 0 && margin < 15 {
			alerts = append(alerts, Alert{
				Type:       AlertDanger,
				Title:      "Margen Muy Bajo",
				Message:    fmt.Sprintf("Tu margen deseado es %.0f%%.", margin),
				Suggestion: "Un margen menor al 15% deja poco espacio para imprevistos.",
			})
		}
		if margin > 80 {
			alerts = append(alerts, Alert{
				Type:       AlertWarning,
				Title:      "Margen Muy Alto",
				Message:    fmt.Sprintf("Tu margen deseado es %.0f%%.", margin),
				Suggestion: "Verifica que tu precio siga siendo competitivo.",
			})
		}
		if p["logistics"] > 0.15 {
			alerts = append(alerts, Alert{
				Type:       AlertWarning,
				Title:      "Logística Costosa",
				Message:    fmt.Sprintf("La logística representa el %.0f%% del costo total.", p["logistics"]*100),
				Suggestion: "Busca tarifas de envío por volumen o un operador más económico.",
			})
		}
		if p["storage"] > 0.20 {
			alerts = append(alerts, Alert{
				Type:       AlertWarning,
				Title:      "Almacenamiento Costoso",
				Message:    fmt.Sprintf("El almacenamiento representa el %.0f%% del costo total.", p["storage"]*100),
				Suggestion: "Mejora la rotación de inventario o reduce el espacio contratado.",
			})
		}

	case ArchetypeService:
		if p["operational"] > 0.60 {
			alerts = append(alerts, Alert{
				Type:       AlertDanger,
				Title:      "Costos Operativos Muy Altos",
				Message:    fmt.Sprintf("Tus costos operativos consumen el %.0f%% de tu ingreso mensual estimado.", p["operational"]*100),
				Suggestion: "Revisa suscripciones, arriendo y herramientas que puedas reducir.",
			})
		}
		if costs.Value(fieldOperationalCost) == 0 {
			alerts = append(alerts, Alert{
				Type:       AlertInfo,
				Title:      "Sin Costos Operativos",
				Message:    "No registraste costos operativos mensuales.",
				Suggestion: "Incluye internet, software y transporte para un cálculo realista.",
			})
		}
		if rate := costs.Value(fieldHourlyRate); rate > 0 && rate < 10000 {
			alerts = append(alerts, Alert{
				Type:       AlertWarning,
				Title:      "Tarifa Baja",
				Message:    "Tu tarifa por hora está por debajo del mercado.",
				Suggestion: "Revisa tarifas de mercado para tu nivel de experiencia.",
			})
		}

	case ArchetypeHybrid:
		if s := p["service"]; s > 0 && s < 0.40 {
			alerts = append(alerts, Alert{
				Type:       AlertWarning,
				Title:      "Componente de Servicio Bajo",
				Message:    fmt.Sprintf("El servicio representa solo el %.0f%% de tu costo por cliente.", s*100),
				Suggestion: "Refuerza el valor del servicio: es tu mayor margen.",
			})
		}
		if p["additional"] > 0.25 {
			alerts = append(alerts, Alert{
				Type:       AlertWarning,
				Title:      "Costos Adicionales Altos",
				Message:    fmt.Sprintf("Los costos adicionales representan el %.0f%% del costo por cliente.", p["additional"]*100),
				Suggestion: "Detalla y recorta los costos que no aportan valor al cliente.",
			})
		}
		if p["service"] > 0.90 {
			alerts = append(alerts, Alert{
				Type:       AlertInfo,
				Title:      "Casi Todo Servicio",
				Message:    "El componente de productos es marginal.",
				Suggestion: "Considera si el modelo híbrido es el adecuado o si operas como negocio de servicios.",
			})
		}
	}

	return alerts
}
