package costanalysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Display order and labels for proportion keys, per archetype. Maps iterate
// randomly; reports must not.
var proportionOrder = map[Archetype][]string{
	ArchetypeManufacturing: {fieldMaterials, fieldLabor, fieldPackaging, fieldOverhead},
	ArchetypeResale:        {"purchase", "logistics", "storage"},
	ArchetypeService:       {"operational", "net"},
	ArchetypeHybrid:        {"service", "products", "additional"},
}

var proportionLabels = map[string]string{
	fieldMaterials: "Materias primas",
	fieldLabor:     "Mano de obra",
	fieldPackaging: "Empaque",
	fieldOverhead:  "Gastos fijos (porción diaria)",
	"purchase":     "Costo de compra",
	"logistics":    "Logística",
	"storage":      "Almacenamiento (porción diaria)",
	"operational":  "Costos operativos",
	"net":          "Margen neto",
	"service":      "Servicio",
	"products":     "Productos",
	"additional":   "Adicionales",
}

var alertTypeLabels = map[AlertType]string{
	AlertInfo:    "Información",
	AlertWarning: "Advertencia",
	AlertDanger:  "Crítico",
}

var statusLabels = map[BenchmarkStatus]string{
	StatusGood:    "Bien",
	StatusAverage: "Regular",
	StatusPoor:    "Atención",
}

// BuildReport renders a complete analysis as Spanish markdown. It is
// deterministic for a fixed result and timestamp. When the result carries
// validation errors, only the error section is rendered.
func BuildReport(result Result, generatedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Análisis de Costos y Precios\n\n")
	fmt.Fprintf(&b, "- Tipo de negocio: %s\n", sanitize(ArchetypeLabel(result.Archetype)))
	fmt.Fprintf(&b, "- Fecha: %s\n\n", generatedAt.Format("2006-01-02 15:04"))

	if !result.OK() {
		fmt.Fprintf(&b, "## Datos incompletos\n\n")
		fmt.Fprintf(&b, "No fue posible calcular el análisis con la información recibida:\n\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "- %s\n", sanitize(e))
		}
		fmt.Fprintf(&b, "\nCorrige los valores indicados y vuelve a ejecutar el análisis.\n\n")
		fmt.Fprintf(&b, "---\n\n%s\n", Disclaimer)
		return b.String()
	}

	writeCostSummary(&b, result)
	writePriceTiers(&b, result)
	writeIndicators(&b, result)
	writeAlerts(&b, result.Alerts)
	writeBenchmarks(&b, result.Benchmarks)
	writeRecommendations(&b, result.Recommendations)

	fmt.Fprintf(&b, "---\n\n%s\n", Disclaimer)
	return b.String()
}

func writeCostSummary(b *strings.Builder, result Result) {
	fmt.Fprintf(b, "## Resumen de costos\n\n")
	fmt.Fprintf(b, "| Concepto | Valor |\n|---|---|\n")
	if fields, ok := SchemaFor(result.Archetype); ok {
		for _, f := range fields {
			if f.Enum != nil {
				if result.Costs.Experience != "" {
					fmt.Fprintf(b, "| %s | %s |\n", sanitizeCell(f.Label), sanitizeCell(result.Costs.Experience))
				}
				continue
			}
			v := result.Costs.Value(f.Name)
			if f.Percent {
				fmt.Fprintf(b, "| %s | %.0f%% |\n", sanitizeCell(f.Label), v)
			} else {
				fmt.Fprintf(b, "| %s | $%s |\n", sanitizeCell(f.Label), FormatCOP(v))
			}
		}
	}
	fmt.Fprintf(b, "| **Costo total** | **$%s** |\n\n", FormatCOP(result.Analysis.TotalCost))
}

func writePriceTiers(b *strings.Builder, result Result) {
	a := result.Analysis
	fmt.Fprintf(b, "## Precios sugeridos\n\n")
	switch result.Archetype {
	case ArchetypeManufacturing:
		fmt.Fprintf(b, "| Nivel | Precio |\n|---|---|\n")
		fmt.Fprintf(b, "| Mínimo | $%s |\n", FormatCOP(a.MinPrice))
		fmt.Fprintf(b, "| Óptimo | $%s |\n", FormatCOP(a.OptimalPrice))
		fmt.Fprintf(b, "| Premium | $%s |\n\n", FormatCOP(a.PremiumPrice))
		fmt.Fprintf(b, "Ganancia al precio óptimo: $%s por unidad.\n\n", FormatCOP(a.Profit))
	case ArchetypeResale:
		fmt.Fprintf(b, "- Precio de venta sugerido: $%s\n", FormatCOP(a.SellingPrice))
		fmt.Fprintf(b, "- Ganancia por unidad: $%s\n", FormatCOP(a.Profit))
		fmt.Fprintf(b, "- ROI por producto: %.0f%%\n\n", a.ROIValue())
	case ArchetypeService:
		fmt.Fprintf(b, "- Precio base: $%s\n", FormatCOP(a.BasePrice))
		fmt.Fprintf(b, "- Multiplicador por experiencia: %.1fx\n", a.ExperienceMultiplier)
		fmt.Fprintf(b, "- Precio final por proyecto: $%s\n", FormatCOP(a.FinalPrice))
		fmt.Fprintf(b, "- Ingreso mensual estimado: $%s\n\n", FormatCOP(a.MonthlyIncome))
	case ArchetypeHybrid:
		fmt.Fprintf(b, "- Componente de servicio: $%s\n", FormatCOP(a.ServiceComponent))
		fmt.Fprintf(b, "- Costo por cliente: $%s\n", FormatCOP(a.TotalPerClient))
		fmt.Fprintf(b, "- Precio sugerido: $%s\n", FormatCOP(a.SuggestedPrice))
		fmt.Fprintf(b, "- Ganancia por cliente: $%s\n\n", FormatCOP(a.Profit))
	}
}

func writeIndicators(b *strings.Builder, result Result) {
	m := result.Metrics
	fmt.Fprintf(b, "## Indicadores\n\n")
	fmt.Fprintf(b, "- Coherencia de datos: %.0f%%\n", m.CoherenceScore*100)
	fmt.Fprintf(b, "- Información completa: %.0f%%\n", m.Completeness*100)
	fmt.Fprintf(b, "- Puntaje general: %.0f%%\n\n", m.OverallScore*100)

	order := proportionOrder[result.Archetype]
	if len(order) > 0 {
		fmt.Fprintf(b, "Distribución de costos:\n\n")
		for _, key := range order {
			fmt.Fprintf(b, "- %s: %.0f%%\n", proportionLabels[key], m.Proportions[key]*100)
		}
		fmt.Fprintf(b, "\n")
	}
}

func writeAlerts(b *strings.Builder, alerts []Alert) {
	fmt.Fprintf(b, "## Alertas\n\n")
	if len(alerts) == 0 {
		fmt.Fprintf(b, "Sin alertas: tu estructura de costos pasa todos los umbrales.\n\n")
		return
	}
	for _, a := range alerts {
		fmt.Fprintf(b, "- **[%s] %s** — %s", alertTypeLabels[a.Type], sanitize(a.Title), sanitize(a.Message))
		if a.Suggestion != "" {
			fmt.Fprintf(b, " Sugerencia: %s", sanitize(a.Suggestion))
		}
		fmt.Fprintf(b, "\n")
	}
	fmt.Fprintf(b, "\n")
}

func writeBenchmarks(b *strings.Builder, benchmarks []Benchmark) {
	if len(benchmarks) == 0 {
		return
	}
	fmt.Fprintf(b, "## Comparación con la industria\n\n")
	fmt.Fprintf(b, "| Indicador | Tu valor | Rango típico | Estado |\n|---|---|---|---|\n")
	for _, bm := range benchmarks {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			sanitizeCell(bm.Metric), sanitizeCell(bm.YourValue), sanitizeCell(bm.IndustryRange), statusLabels[bm.Status])
	}
	fmt.Fprintf(b, "\n")
	for _, bm := range benchmarks {
		fmt.Fprintf(b, "- %s: %s\n", sanitize(bm.Metric), sanitize(bm.Recommendation))
	}
	fmt.Fprintf(b, "\n")
}

func writeRecommendations(b *strings.Builder, set *RecommendationSet) {
	if set == nil {
		return
	}
	fmt.Fprintf(b, "## Plan de recomendaciones\n\n")

	fmt.Fprintf(b, "### Prioritarias\n\n")
	for i, p := range set.Priority {
		fmt.Fprintf(b, "%d. **%s** — %s (ROI %s)\n", i+1, sanitize(p.Title), sanitize(p.Impact), sanitize(p.ROI))
		fmt.Fprintf(b, "   - Actual: %s · Meta: %s\n", sanitize(p.CurrentValue), sanitize(p.TargetValue))
		for _, step := range p.Steps {
			fmt.Fprintf(b, "   - %s\n", sanitize(step))
		}
	}
	fmt.Fprintf(b, "\n### Optimización\n\n")
	for _, o := range set.Optimization {
		fmt.Fprintf(b, "- **%s** — %s Ahorro estimado: $%s (esfuerzo %s).\n",
			sanitize(o.Title), sanitize(o.Description), FormatCOP(o.EstimatedSavings), sanitize(o.Effort))
	}
	fmt.Fprintf(b, "\n### Estratégicas\n\n")
	for _, s := range set.Strategic {
		fmt.Fprintf(b, "- **%s** — %s Impacto %s, inversión %s, horizonte %s.\n",
			sanitize(s.Title), sanitize(s.Description), sanitize(s.Impact), sanitize(s.Investment), sanitize(s.Timeline))
	}
	fmt.Fprintf(b, "\n")
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

// sanitizeCell prepares text for a markdown table cell: strips newlines and
// escapes pipes that would break the column structure.
func sanitizeCell(s string) string {
	s = sanitize(s)
	return strings.ReplaceAll(s, "|", "\\|")
}

// FormatCOP formats a peso amount with dot thousands separators and no
// decimals (e.g. 1234567 → "1.234.567"), the way amounts are written in
// Colombia.
func FormatCOP(n float64) string {
	v := int64(math.Round(n))
	if v < 0 {
		return "-" + FormatCOP(float64(-v))
	}
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	rem := len(s) % 3
	if rem > 0 {
		b.WriteString(s[:rem])
	}
	for i := rem; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
