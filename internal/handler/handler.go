package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wabisaby/toolrank/internal/model"
)

// SendJSON sends a JSON response with the given status code
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// SendRawJSON sends an already encoded JSON body
func SendRawJSON(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}

// SendError sends an error response
func SendError(w http.ResponseWriter, message string, statusCode int) {
	SendJSON(w, statusCode, model.ErrorResponse{Error: message})
}
