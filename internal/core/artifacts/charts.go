package artifacts

import (
	"strings"

	"analytics-exporter/internal/core/domain"
)

const chartListHeader = "Chart Images:"

// ChartFilename is the synthetic image name for a metric's chart.
func ChartFilename(m domain.MetricKey) string {
	return string(m) + "-chart.png"
}

// GenerateChartList lists one chart image per metric under a header line.
func GenerateChartList(metrics []domain.MetricKey) []byte {
	lines := make([]string, 0, len(metrics))
	for _, m := range metrics {
		lines = append(lines, ChartFilename(m))
	}
	return []byte(chartListHeader + "\n" + strings.Join(lines, "\n"))
}
