package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/otti-labs/otti-workspace/internal/domain"
	"github.com/otti-labs/otti-workspace/pkg/metrics"
)

// CampaignService is the minimal interface needed for campaign endpoints.
type CampaignService interface {
	Preview(ctx context.Context, tenantID string, chosenTags []string) ([]domain.ConversationProfile, error)
	Send(ctx context.Context, tenantID, message string, chosenTags []string) (domain.CampaignAudit, error)
	History(ctx context.Context, tenantID string) ([]domain.CampaignAudit, error)
}

// HandleCampaignPreview returns an HTTP handler resolving the target set for
// a tag selection without recording anything.
func HandleCampaignPreview(svc CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		var req campaignPreviewRequest
		if err := decodeBody(w, r, &req); err != nil {
			return
		}

		targets, err := svc.Preview(r.Context(), tenantID, req.Tags)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		refs := make([]string, 0, len(targets))
		for _, t := range targets {
			refs = append(refs, t.CustomerRef)
		}
		writeJSON(w, http.StatusOK, campaignPreviewResponse{
			Targets:     refs,
			TargetCount: len(refs),
		})
	}
}

// HandleCampaignSend returns an HTTP handler that resolves targets and
// records the dispatch audit. An empty tag selection targets nobody and is
// rejected before anything is written.
func HandleCampaignSend(svc CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		var req campaignSendRequest
		if err := decodeBody(w, r, &req); err != nil {
			return
		}

		audit, err := svc.Send(r.Context(), tenantID, req.Message, req.Tags)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		metrics.RecordCampaignSend(tenantID, audit.TargetCount)

		writeJSON(w, http.StatusCreated, toCampaignResponse(audit))
	}
}

// HandleCampaignHistory returns an HTTP handler listing past dispatches,
// newest first.
func HandleCampaignHistory(svc CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		audits, err := svc.History(r.Context(), tenantID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]campaignResponse, 0, len(audits))
		for _, a := range audits {
			resp = append(resp, toCampaignResponse(a))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type campaignPreviewRequest struct {
	Tags []string `json:"tags"`
}

type campaignPreviewResponse struct {
	Targets     []string `json:"targets"`
	TargetCount int      `json:"target_count"`
}

type campaignSendRequest struct {
	Message string   `json:"message"`
	Tags    []string `json:"tags"`
}

type campaignResponse struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	TargetCount int       `json:"target_count"`
	TagFilter   []string  `json:"tag_filter"`
	SentAt      time.Time `json:"sent_at"`
}

func toCampaignResponse(a domain.CampaignAudit) campaignResponse {
	tags := a.TagFilter
	if tags == nil {
		tags = []string{}
	}
	return campaignResponse{
		ID:          a.ID,
		Message:     a.Message,
		TargetCount: a.TargetCount,
		TagFilter:   tags,
		SentAt:      a.SentAt,
	}
}
