package artifacts

import (
	"fmt"
	"strings"
	"time"
)

const missingDate = "N/A"

// GenerateReport renders the plain-text analytics report served under the
// pdf label.
func GenerateReport(req Request) []byte {
	keys := make([]string, len(req.Metrics))
	for i, m := range req.Metrics {
		keys[i] = string(m)
	}

	var b strings.Builder
	b.WriteString("Analytics Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", LongDate(req.GeneratedAt))
	fmt.Fprintf(&b, "Date Range: %s - %s\n", formatOptionalDate(req.DateRange.From), formatOptionalDate(req.DateRange.To))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Selected Metrics: %s\n", strings.Join(keys, ", "))
	b.WriteString("\n")
	b.WriteString("Summary:\n")
	for _, figure := range summaryFigures {
		fmt.Fprintf(&b, "- %s: %s\n", figure.Label, figure.Value)
	}
	b.WriteString("\n")
	b.WriteString("This is a sample PDF export. In a real implementation, this would contain charts and detailed analytics data.")

	return []byte(b.String())
}

// LongDate formats t like "January 1st, 2024".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s %d%s, %d", t.Month(), t.Day(), ordinalSuffix(t.Day()), t.Year())
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return missingDate
	}
	return LongDate(*t)
}
