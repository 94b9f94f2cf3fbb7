package http

import (
	"encoding/json"
	"net/http"

	"github.com/otti-labs/otti-workspace/internal/domain"
)

const (
	codeNotFound             = "not_found"
	codeMethodNotAllowed     = "method_not_allowed"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeInvalidPeriod        = "invalid_period"
	codeInvalidCredentials   = "invalid_credentials"
	codeUnauthorized         = "unauthorized"
	codeForbidden            = "forbidden"
	codeTenantNotFound       = "tenant_not_found"
	codeConversationNotFound = "conversation_not_found"
	codeProductNotFound      = "product_not_found"
	codeAttendantRequired    = "attendant_required"
	codeCustomerRefRequired  = "customer_ref_required"
	codeAlreadyClaimed       = "already_claimed"
	codeNotOwner             = "not_owner"
	codeEmptyMessage         = "empty_message"
	codeNoTargets            = "no_targets"
	codeProductNameRequired  = "product_name_required"
	codeInvalidPrice         = "invalid_price"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Owner string `json:"owner,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps service errors onto HTTP status and machine code.
// Anything unrecognized is a 500 with no detail leaked.
func writeDomainError(w http.ResponseWriter, err error) {
	if claimed, ok := domain.AsAlreadyClaimed(err); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error: claimed.Error(),
			Code:  codeAlreadyClaimed,
			Owner: claimed.Owner,
		})
		return
	}

	switch err {
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrAttendantRequired:
		writeError(w, http.StatusBadRequest, codeAttendantRequired, err.Error())
	case domain.ErrCustomerRefRequired:
		writeError(w, http.StatusBadRequest, codeCustomerRefRequired, err.Error())
	case domain.ErrEmptyMessage:
		writeError(w, http.StatusBadRequest, codeEmptyMessage, err.Error())
	case domain.ErrNoTargets:
		writeError(w, http.StatusBadRequest, codeNoTargets, err.Error())
	case domain.ErrProductNameRequired:
		writeError(w, http.StatusBadRequest, codeProductNameRequired, err.Error())
	case domain.ErrInvalidPrice:
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case domain.ErrInvalidCredentials:
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, err.Error())
	case domain.ErrNotOwner:
		writeError(w, http.StatusForbidden, codeNotOwner, err.Error())
	case domain.ErrTenantNotFound:
		writeError(w, http.StatusNotFound, codeTenantNotFound, err.Error())
	case domain.ErrConversationNotFound:
		writeError(w, http.StatusNotFound, codeConversationNotFound, err.Error())
	case domain.ErrProductNotFound:
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
