package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"analytics-exporter/internal/core/domain"
)

// ErrorObject represents a simplified JSON:API error object
type ErrorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// ErrorResponse is the top-level JSON:API error response
type ErrorResponse struct {
	Errors []ErrorObject `json:"errors"`
}

// respondWithError sends a single JSON:API error response
func respondWithError(w http.ResponseWriter, statusCode int, title, detail string) {
	respondWithErrors(w, statusCode, []ErrorObject{
		{
			Status: http.StatusText(statusCode),
			Title:  title,
			Detail: detail,
		},
	})
}

// respondWithErrors sends multiple JSON:API errors
func respondWithErrors(w http.ResponseWriter, statusCode int, errs []ErrorObject) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	for i := range errs {
		if errs[i].Status == "" {
			errs[i].Status = http.StatusText(statusCode)
		}
	}

	json.NewEncoder(w).Encode(ErrorResponse{Errors: errs})
}

// respondWithDomainError maps configuration errors to 400 and conflicts to 409
func respondWithDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidFormat):
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidField("format", err.Error())})
	case errors.Is(err, domain.ErrInvalidMetric):
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidField("metrics", err.Error())})
	case errors.Is(err, domain.ErrInvalidDateRange):
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidField("date_range", err.Error())})
	case errors.Is(err, domain.ErrExportInProgress):
		respondWithErrors(w, http.StatusConflict, []ErrorObject{errorExportInProgress()})
	default:
		respondWithErrors(w, http.StatusInternalServerError, []ErrorObject{errorInternalServer()})
	}
}

func errorNotFound(resourceType, id string) ErrorObject {
	return ErrorObject{
		Status: "404",
		Title:  resourceType + " Not Found",
		Detail: "The " + resourceType + " with ID '" + id + "' could not be found",
	}
}

func errorInvalidIdentity() ErrorObject {
	return ErrorObject{
		Status: "400",
		Title:  "Invalid Identity",
		Detail: "The X-Rh-Identity header is missing or contains invalid data",
	}
}

func errorInvalidJSON(err error) ErrorObject {
	detail := "The request body contains invalid JSON"
	if err != nil {
		detail = "Invalid JSON: " + err.Error()
	}
	return ErrorObject{
		Status: "400",
		Title:  "Invalid JSON",
		Detail: detail,
	}
}

func errorInvalidField(field, reason string) ErrorObject {
	return ErrorObject{
		Status: "400",
		Title:  "Invalid Field",
		Detail: "The field '" + field + "' is invalid: " + reason,
	}
}

func errorExportInProgress() ErrorObject {
	return ErrorObject{
		Status: "409",
		Title:  "Export In Progress",
		Detail: "An export is already running or showing its result",
	}
}

func errorNoMetricsSelected() ErrorObject {
	return ErrorObject{
		Status: "409",
		Title:  "No Metrics Selected",
		Detail: "Select at least one metric before starting an export",
	}
}

func errorInternalServer() ErrorObject {
	return ErrorObject{
		Status: "500",
		Title:  "Internal Server Error",
		Detail: "An unexpected error occurred while processing your request",
	}
}
