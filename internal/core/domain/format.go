package domain

import (
	"fmt"
	"strings"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
	FormatPNG   Format = "png"
)

// Formats lists every supported export format in display order.
func Formats() []Format {
	return []Format{FormatCSV, FormatExcel, FormatPDF, FormatPNG}
}

// FileSpec describes how an artifact of a given format is labelled and named.
type FileSpec struct {
	Mime      string
	BaseName  string
	Extension string
}

const (
	MimeCSV         = "text/csv"
	MimeSpreadsheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePDF         = "application/pdf"
	MimeText        = "text/plain"
)

// Spec returns the media type and filename parts for the format.
// It panics on a value outside the enumeration.
func (f Format) Spec() FileSpec {
	switch f {
	case FormatCSV:
		return FileSpec{Mime: MimeCSV, BaseName: "analytics-export", Extension: "csv"}
	case FormatExcel:
		return FileSpec{Mime: MimeSpreadsheet, BaseName: "analytics-data", Extension: "xlsx"}
	case FormatPDF:
		return FileSpec{Mime: MimePDF, BaseName: "analytics-report", Extension: "pdf"}
	case FormatPNG:
		// The chart bundle is a text listing, hence the .txt extension.
		return FileSpec{Mime: MimeText, BaseName: "chart-images", Extension: "txt"}
	}
	panic(fmt.Sprintf("domain: unknown export format %q", string(f)))
}

func (f Format) Label() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatExcel:
		return "Excel"
	case FormatPDF:
		return "PDF"
	case FormatPNG:
		return "PNG"
	}
	panic(fmt.Sprintf("domain: unknown export format %q", string(f)))
}

func IsValidFormat(s string) bool {
	switch Format(s) {
	case FormatCSV, FormatExcel, FormatPDF, FormatPNG:
		return true
	default:
		return false
	}
}

// ParseFormat converts caller input into a Format. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if !IsValidFormat(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return Format(normalized), nil
}
