package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

// ErrorResponse writes a JSON {error, details} body and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, message, details string) error {
	return WriteJSON(w, statusCode, models.ErrorBody{Error: message, Details: details})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}
