package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/mkondo/ludo/internal/model"
)

// ResponseEnvelope is the uniform JSON response format of the API.
// Success responses carry Data; failures carry Errors. Message is a
// human-readable summary either way.
type ResponseEnvelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Errors  []ErrorDetail `json:"errors,omitempty"`
	Data    any           `json:"data,omitempty"`
}

// ErrorDetail is one error inside a failure envelope. Field is set for
// validation errors only.
type ErrorDetail struct {
	Code     string `json:"code,omitempty"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
}

// WriteEnvelope writes an arbitrary envelope with the given status.
func WriteEnvelope(w http.ResponseWriter, statusCode int, body ResponseEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// WriteErrorResponse writes a single domain error in the uniform format.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	WriteEnvelope(w, statusCode, ResponseEnvelope{
		Success: false,
		Message: apiErr.Message,
		Errors: []ErrorDetail{{
			Code:     apiErr.Code,
			Message:  apiErr.Message,
			Category: apiErr.Category,
		}},
	})
}

// WriteValidationErrors writes the full field-error list with status 400.
func WriteValidationErrors(w http.ResponseWriter, verrs model.ValidationErrors) {
	details := make([]ErrorDetail, len(verrs))
	for i, fe := range verrs {
		details[i] = ErrorDetail{
			Field:    fe.Field,
			Message:  fe.Message,
			Category: model.CategoryValidation,
		}
	}
	WriteEnvelope(w, http.StatusBadRequest, ResponseEnvelope{
		Success: false,
		Message: "validation failed",
		Errors:  details,
	})
}

// WriteInternalServerError writes the generic 500 response.
// Detail goes to server-side logs only; callers get a fixed message.
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "an internal error occurred, please try again later",
		Category: model.CategorySystem,
	})
}

// writeUnauthorized writes the generic 401 response.
func writeUnauthorized(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}
