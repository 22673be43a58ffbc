package artifacts

import "analytics-exporter/internal/core/domain"

// sampleRow is one day of the embedded dataset, keyed by metric.
type sampleRow struct {
	Date   string
	Values map[domain.MetricKey]string
}

var sampleRows = []sampleRow{
	{Date: "2024-01-01", Values: row("125000", "1250", "3.2", "8500", "450")},
	{Date: "2024-01-02", Values: row("132000", "1320", "3.4", "9200", "480")},
	{Date: "2024-01-03", Values: row("128000", "1280", "3.1", "8800", "465")},
	{Date: "2024-01-04", Values: row("145000", "1450", "3.6", "9800", "520")},
	{Date: "2024-01-05", Values: row("138000", "1380", "3.3", "9100", "495")},
}

func row(revenue, users, conversion, traffic, products string) map[domain.MetricKey]string {
	return map[domain.MetricKey]string{
		domain.MetricRevenue:    revenue,
		domain.MetricUsers:      users,
		domain.MetricConversion: conversion,
		domain.MetricTraffic:    traffic,
		domain.MetricProducts:   products,
	}
}

// summaryFigures are the headline numbers printed in the report.
var summaryFigures = []struct {
	Label string
	Value string
}{
	{Label: "Total Revenue", Value: "$2,847,392"},
	{Label: "Active Users", Value: "45,231"},
	{Label: "Conversion Rate", Value: "3.24%"},
	{Label: "Total Orders", Value: "12,847"},
}

// tableRows returns the header and data rows for the selected metrics.
func tableRows(metrics []domain.MetricKey) [][]string {
	header := make([]string, 0, len(metrics)+1)
	header = append(header, "Date")
	for _, m := range metrics {
		header = append(header, m.Title())
	}

	rows := [][]string{header}
	for _, sample := range sampleRows {
		record := make([]string, 0, len(metrics)+1)
		record = append(record, sample.Date)
		for _, m := range metrics {
			record = append(record, sample.Values[m])
		}
		rows = append(rows, record)
	}
	return rows
}
