package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/otti-labs/otti-workspace/internal/app"
	"github.com/otti-labs/otti-workspace/internal/domain"
)

// TenantService is the minimal interface needed for tenant settings
// endpoints.
type TenantService interface {
	Settings(ctx context.Context, tenantID string) (domain.Tenant, error)
	UpdateAssistant(ctx context.Context, tenantID string, in app.AssistantUpdate) error
	ToggleBot(ctx context.Context, tenantID string) (bool, error)
	SetTeamMode(ctx context.Context, tenantID string, enabled bool) error
}

// KPIService is the minimal interface needed for the dashboard KPI endpoint.
type KPIService interface {
	KPIs(ctx context.Context, tenantID string) (domain.KPIReport, error)
}

// HandleTenantSettings returns an HTTP handler exposing a tenant's assistant
// configuration and flags.
func HandleTenantSettings(svc TenantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		tenant, err := svc.Settings(r.Context(), tenantID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		flowConfig := tenant.FlowConfig
		if flowConfig == nil {
			flowConfig = map[string]any{}
		}
		writeJSON(w, http.StatusOK, tenantSettingsResponse{
			ID:         tenant.ID,
			Name:       tenant.Name,
			BotPaused:  tenant.BotPaused,
			TeamMode:   tenant.TeamMode,
			Prompt:     tenant.Prompt,
			FlowConfig: flowConfig,
		})
	}
}

// HandleUpdateAssistant returns an HTTP handler merging prompt, voice and
// temperature into the tenant's assistant configuration.
func HandleUpdateAssistant(svc TenantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		var req assistantUpdateRequest
		if err := decodeBody(w, r, &req); err != nil {
			return
		}

		err := svc.UpdateAssistant(r.Context(), tenantID, app.AssistantUpdate{
			Prompt:      req.Prompt,
			Voice:       req.Voice,
			Temperature: req.Temperature,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleToggleBot returns an HTTP handler flipping the tenant's bot pause
// flag, responding with the new state.
func HandleToggleBot(svc TenantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		paused, err := svc.ToggleBot(r.Context(), tenantID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, botToggleResponse{BotPaused: paused})
	}
}

// HandleSetTeamMode returns an HTTP handler switching the tenant between
// exclusive-claim and shared-inbox operation.
func HandleSetTeamMode(svc TenantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		var req teamModeRequest
		if err := decodeBody(w, r, &req); err != nil {
			return
		}

		if err := svc.SetTeamMode(r.Context(), tenantID, req.Enabled); err != nil {
			writeDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleTenantKPIs returns an HTTP handler for the dashboard card values.
func HandleTenantKPIs(svc KPIService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		report, err := svc.KPIs(r.Context(), tenantID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

type tenantSettingsResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	BotPaused  bool           `json:"bot_paused"`
	TeamMode   bool           `json:"team_mode"`
	Prompt     string         `json:"prompt"`
	FlowConfig map[string]any `json:"flow_config"`
}

type assistantUpdateRequest struct {
	Prompt      string  `json:"prompt"`
	Voice       string  `json:"voice"`
	Temperature float64 `json:"temperature"`
}

type botToggleResponse struct {
	BotPaused bool `json:"bot_paused"`
}

type teamModeRequest struct {
	Enabled bool `json:"enabled"`
}
