package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/otti-labs/otti-workspace/internal/app"
	"github.com/otti-labs/otti-workspace/internal/domain"
)

// BoardService is the minimal interface needed for the funnel endpoint.
type BoardService interface {
	Board(ctx context.Context, tenantID string, q app.BoardQuery) (app.BoardResult, error)
}

// HandleFunnelBoard returns an HTTP handler for the classified booking board.
// Period endpoints arrive as date-only values; products as a comma-separated
// id list.
func HandleFunnelBoard(svc BoardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		var query app.BoardQuery
		if raw := r.URL.Query().Get("from"); raw != "" {
			from, err := time.Parse("2006-01-02", raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidPeriod, "invalid from date")
				return
			}
			query.From = from
		}
		if raw := r.URL.Query().Get("to"); raw != "" {
			to, err := time.Parse("2006-01-02", raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidPeriod, "invalid to date")
				return
			}
			query.To = to
		}
		if raw := r.URL.Query().Get("products"); raw != "" {
			for _, id := range strings.Split(raw, ",") {
				if id = strings.TrimSpace(id); id != "" {
					query.Products = append(query.Products, id)
				}
			}
		}

		result, err := svc.Board(r.Context(), tenantID, query)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, boardResponse{
			Pending:    toBookingResponses(result.Board.Pending),
			Confirmed:  toBookingResponses(result.Board.Confirmed),
			Cancelled:  toBookingResponses(result.Board.Cancelled),
			Total:      result.Total,
			OpenAmount: result.OpenAmount,
		})
	}
}

type boardResponse struct {
	Pending    []bookingResponse `json:"pending"`
	Confirmed  []bookingResponse `json:"confirmed"`
	Cancelled  []bookingResponse `json:"cancelled"`
	Total      int               `json:"total"`
	OpenAmount float64           `json:"open_amount"`
}

type bookingResponse struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	CustomerRef string  `json:"customer_ref,omitempty"`
	ProductName string  `json:"product_name,omitempty"`
	StatusText  string  `json:"status_text"`
	Amount      float64 `json:"amount"`
	OccursAt    string  `json:"occurs_at,omitempty"`
}

func toBookingResponses(records []domain.Booking) []bookingResponse {
	resp := make([]bookingResponse, 0, len(records))
	for _, b := range records {
		item := bookingResponse{
			ID:          b.ID,
			Kind:        string(b.Kind),
			CustomerRef: b.CustomerRef,
			ProductName: b.ProductName,
			StatusText:  b.StatusText,
			Amount:      b.Amount,
		}
		if b.HasOccursAt() {
			item.OccursAt = b.OccursAt.Format(time.RFC3339)
		}
		resp = append(resp, item)
	}
	return resp
}
