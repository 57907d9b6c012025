package formatter

import (
	"fmt"
	"strings"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/stats"
)

// FormatSummary renders the business-year reporting aggregate.
func FormatSummary(s stats.Summary) string {
	var b strings.Builder

	b.WriteString(Header("R&D Allocation Summary"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %d (%s R&D, %s non-R&D)\n",
		Bold("Activities:"), s.TotalActivities,
		StyleGreen.Render(fmt.Sprintf("%d", s.RDActivities)),
		Dim(fmt.Sprintf("%d", s.NonRDActivities))))
	b.WriteString(fmt.Sprintf("%s  %d\n", Bold("Subcomponents:"), s.TotalSubcomponents))
	b.WriteString(fmt.Sprintf("%s  %s total, %s average\n",
		Bold("Applied:"), Percent(s.TotalAppliedPercent), Percent(s.AverageAppliedPercent)))

	if len(s.TopActivities) > 0 {
		b.WriteString("\n")
		headers := []string{"#", "ACTIVITY", "APPLIED"}
		rows := make([][]string, 0, len(s.TopActivities))
		for i, entry := range s.TopActivities {
			name := entry.ActivityName
			if name == "" {
				name = entry.ActivityID
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				name,
				Percent(entry.AppliedPercent),
			})
		}
		b.WriteString(RenderTable(headers, rows))
	}

	return b.String()
}
