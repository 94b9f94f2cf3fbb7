package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/otti-labs/otti-workspace/internal/app"
	"github.com/otti-labs/otti-workspace/pkg/metrics"
)

// LoginService is the minimal interface needed for the login endpoint.
type LoginService interface {
	Login(ctx context.Context, email, password string) (app.Session, error)
}

// HandleLogin returns an HTTP handler for panel logins.
func HandleLogin(svc LoginService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		session, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			writeDomainError(w, err)
			return
		}
		metrics.LoginsTotal.WithLabelValues("success").Inc()

		writeJSON(w, http.StatusOK, loginResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
			User: sessionUser{
				ID:       session.User.ID,
				TenantID: session.User.TenantID,
				Name:     session.User.Name,
				Email:    session.User.Email,
				Role:     session.User.Role,
			},
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      sessionUser `json:"user"`
}

type sessionUser struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
