package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/otti-labs/otti-workspace/internal/domain"
	"github.com/otti-labs/otti-workspace/pkg/metrics"
)

// InboxService is the minimal interface needed for the inbox endpoints.
type InboxService interface {
	Claim(ctx context.Context, tenantID, customerRef, attendant string) error
	Release(ctx context.Context, tenantID, customerRef, attendant string) error
	CanRespond(ctx context.Context, tenantID, customerRef, attendant string) (bool, error)
	UpsertProfile(ctx context.Context, tenantID, customerRef string, tags []string, notes string) error
	RecentConversations(ctx context.Context, tenantID string) ([]domain.Conversation, error)
	MessageHistory(ctx context.Context, conversationID string) ([]domain.Message, error)
}

// HandleClaim returns an HTTP handler that takes exclusive ownership of a
// conversation. Losing the race is a 409 carrying the current owner.
func HandleClaim(svc InboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")
		customerRef := chi.URLParam(r, "customerRef")

		var req attendantRequest
		if err := decodeBody(w, r, &req); err != nil {
			return
		}

		err := svc.Claim(r.Context(), tenantID, customerRef, req.Attendant)
		if err != nil {
			if _, ok := domain.AsAlreadyClaimed(err); ok {
				metrics.RecordClaim(tenantID, false)
			}
			writeDomainError(w, err)
			return
		}
		metrics.RecordClaim(tenantID, true)

		writeJSON(w, http.StatusOK, claimResponse{Owner: req.Attendant})
	}
}

// HandleRelease returns an HTTP handler that gives up ownership of a
// conversation. Only the current owner may release.
func HandleRelease(svc InboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")
		customerRef := chi.URLParam(r, "customerRef")

		var req attendantRequest
		if err := decodeBody(w, r, &req); err != nil {
			return
		}

		if err := svc.Release(r.Context(), tenantID, customerRef, req.Attendant); err != nil {
			writeDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleCanRespond returns an HTTP handler answering whether an attendant may
// reply in a conversation under the tenant's current team mode.
func HandleCanRespond(svc InboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")
		customerRef := chi.URLParam(r, "customerRef")
		attendant := r.URL.Query().Get("attendant")

		allowed, err := svc.CanRespond(r.Context(), tenantID, customerRef, attendant)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, canRespondResponse{Allowed: allowed})
	}
}

// HandleUpsertProfile returns an HTTP handler for saving a conversation's
// tags and notes.
func HandleUpsertProfile(svc InboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")
		customerRef := chi.URLParam(r, "customerRef")

		var req profileRequest
		if err := decodeBody(w, r, &req); err != nil {
			return
		}

		if err := svc.UpsertProfile(r.Context(), tenantID, customerRef, req.Tags, req.Notes); err != nil {
			writeDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleRecentConversations returns an HTTP handler listing the latest
// conversations for a tenant.
func HandleRecentConversations(svc InboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		conversations, err := svc.RecentConversations(r.Context(), tenantID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]conversationResponse, 0, len(conversations))
		for _, c := range conversations {
			resp = append(resp, conversationResponse{
				ID:          c.ID,
				CustomerRef: c.CustomerRef,
				Metadata:    c.Metadata,
				UpdatedAt:   c.UpdatedAt,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleMessageHistory returns an HTTP handler listing the most recent
// messages of a conversation, newest first.
func HandleMessageHistory(svc InboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := chi.URLParam(r, "conversationID")

		messages, err := svc.MessageHistory(r.Context(), conversationID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]messageResponse, 0, len(messages))
		for _, m := range messages {
			resp = append(resp, messageResponse{
				ID:        m.ID,
				Role:      m.Role,
				Body:      m.Body,
				CreatedAt: m.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return err
	}
	return nil
}

type attendantRequest struct {
	Attendant string `json:"attendant"`
}

type claimResponse struct {
	Owner string `json:"owner"`
}

type canRespondResponse struct {
	Allowed bool `json:"allowed"`
}

type profileRequest struct {
	Tags  []string `json:"tags"`
	Notes string   `json:"notes"`
}

type conversationResponse struct {
	ID          string         `json:"id"`
	CustomerRef string         `json:"customer_ref"`
	Metadata    map[string]any `json:"metadata"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
