// Package api defines shared transport response DTOs.
package api

// ErrorResponse is the uniform error body. Internal detail stays in the
// server logs; this only carries a caller-safe message.
type ErrorResponse struct {
	Error string `json:"error"`
}
