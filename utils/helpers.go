package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

func GetAuth0ID(r *http.Request) (string, bool) {
	claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok {
		return "", false
	}
	return claims.RegisteredClaims.Subject, true
}

// WithAuth0Subject stores validated claims for subject in ctx, as the JWT
// middleware does after a successful check.
func WithAuth0Subject(ctx context.Context, subject string) context.Context {
	claims := &validator.ValidatedClaims{RegisteredClaims: validator.RegisteredClaims{Subject: subject}}
	return context.WithValue(ctx, jwtmiddleware.ContextKey{}, claims)
}

type ErrorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, errText, message string) {
	WriteJSON(w, status, ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     errText,
		Message:   message,
	})
}
