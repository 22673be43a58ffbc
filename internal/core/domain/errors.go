package domain

import "errors"

var (
	ErrInvalidFormat      = errors.New("invalid export format")
	ErrInvalidMetric      = errors.New("invalid metric key")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrNoMetricsSelected  = errors.New("no metrics selected")
	ErrExportInProgress   = errors.New("an export is already in progress")
	ErrExportRunNotFound  = errors.New("export run not found")
	ErrDownloadNotFound   = errors.New("download not found")
	ErrInvalidRunStatus   = errors.New("invalid export run status")
	ErrInvalidSchedule    = errors.New("invalid schedule format")
	ErrReferenceNotActive = errors.New("download reference is not active")
)
