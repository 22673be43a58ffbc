// Package artifacts turns an export configuration into file content. Every
// generator is pure: the same request always yields the same bytes.
package artifacts

import (
	"fmt"
	"time"

	"analytics-exporter/internal/core/domain"
)

// Request is the input shared by all format generators.
type Request struct {
	Metrics     []domain.MetricKey
	DateRange   domain.DateRange
	GeneratedAt time.Time
}

// Content is a generated file body and its media type.
type Content struct {
	Data []byte
	Mime string
}

// Generator dispatches a request to the generator of the selected format.
type Generator struct {
	nativeExcel bool
}

type Option func(*Generator)

// WithNativeExcel makes the excel format produce a real xlsx workbook instead
// of the delimited text it is compatible with by default.
func WithNativeExcel(enabled bool) Option {
	return func(g *Generator) {
		g.nativeExcel = enabled
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces the artifact content for format. It panics when format is
// not one of the supported formats.
func (g *Generator) Generate(format domain.Format, req Request) (Content, error) {
	mime := format.Spec().Mime

	switch format {
	case domain.FormatCSV:
		return Content{Data: GenerateCSV(req.Metrics), Mime: mime}, nil
	case domain.FormatExcel:
		if g.nativeExcel {
			data, err := GenerateWorkbook(req.Metrics)
			if err != nil {
				return Content{}, fmt.Errorf("failed to generate workbook: %w", err)
			}
			return Content{Data: data, Mime: mime}, nil
		}
		return Content{Data: GenerateCSV(req.Metrics), Mime: mime}, nil
	case domain.FormatPDF:
		return Content{Data: GenerateReport(req), Mime: mime}, nil
	case domain.FormatPNG:
		return Content{Data: GenerateChartList(req.Metrics), Mime: mime}, nil
	}
	panic(fmt.Sprintf("artifacts: unhandled export format %q", string(format)))
}
