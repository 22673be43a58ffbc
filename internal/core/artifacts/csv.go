package artifacts

import (
	"bytes"
	"encoding/csv"

	"analytics-exporter/internal/core/domain"
)

// GenerateCSV renders the sample table as comma separated rows joined by
// newlines, without a trailing newline.
func GenerateCSV(metrics []domain.MetricKey) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// Writes to a bytes.Buffer cannot fail.
	_ = w.WriteAll(tableRows(metrics))

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
