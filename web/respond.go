package web

import (
	"encoding/json"
	"net/http"
	"time"
)

// Error codes returned in the error envelope.
const (
	CodeMissingKey    = "MISSING_API_KEY"
	CodeInvalidKey    = "INVALID_API_KEY"
	CodeQuotaExceeded = "QUOTA_EXCEEDED"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeInternal      = "INTERNAL"
)

// envelope is the uniform success response body.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// docsAuthURL points new integrators at the authentication guide when
// a request arrives with no key at all.
const docsAuthURL = "https://docs.starfeed.io/authentication"

// errorBody is the uniform error response body.
type errorBody struct {
	Success bool       `json:"success"`
	Error   string     `json:"error"`
	Message string     `json:"message,omitempty"`
	Docs    string     `json:"docs,omitempty"`
	Quota   *quotaBody `json:"quota,omitempty"`
}

// quotaBody reports quota standing alongside a rejection.
type quotaBody struct {
	Used     int64  `json:"used"`
	Total    int64  `json:"total"`
	ResetsOn string `json:"resetsOn"`
}

func newQuotaBody(used, total int64, resetsOn time.Time) *quotaBody {
	return &quotaBody{
		Used:     used,
		Total:    total,
		ResetsOn: resetsOn.UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

func writeQuotaError(w http.ResponseWriter, code, message string, quota *quotaBody) {
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: code, Message: message, Quota: quota})
}
