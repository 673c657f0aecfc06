package model

// ErrorResponse is the body returned when a request cannot be served.
type ErrorResponse struct {
	Error string `json:"error"`
}
