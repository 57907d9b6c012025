package formatter

import (
	"fmt"
	"strings"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/validation"
)

// FormatReports renders the validation reports for a business year.
// Findings are advisory; the output says so rather than presenting them
// as failures.
func FormatReports(reports []validation.Report) string {
	if len(reports) == 0 {
		return Dim("Nothing to validate: no activities configured.")
	}

	var b strings.Builder
	clean := true
	for _, report := range reports {
		b.WriteString(fmt.Sprintf("%s  %s\n", Bold(report.ActivityID), CompletenessIndicator(report.QRACompleted)))
		for _, issue := range report.Issues {
			clean = false
			b.WriteString("  " + formatIssue(issue) + "\n")
		}
	}
	if clean {
		b.WriteString(StyleGreen.Render("All allocations balance."))
	} else {
		b.WriteString(Dim("Findings are advisory and never block saving."))
	}
	return b.String()
}

func formatIssue(issue validation.Issue) string {
	switch issue.Kind {
	case validation.StepTimeImbalance:
		return StyleYellow.Render(fmt.Sprintf("step time sums to %s (want 100%%)", Percent(issue.Total)))
	case validation.FrequencyImbalance:
		return StyleYellow.Render(fmt.Sprintf("frequencies in %s/%s sum to %s (want 100%%)",
			issue.Phase, issue.Step, Percent(issue.Total)))
	case validation.OrphanAllocation:
		return StyleRed.Render(fmt.Sprintf("%s references unknown step %s/%s",
			issue.Key.SubcomponentID, issue.Key.Phase, issue.Key.Step))
	default:
		return string(issue.Kind)
	}
}
