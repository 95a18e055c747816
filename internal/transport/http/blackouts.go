package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// BlackoutManager is the minimal interface for blackout endpoints.
type BlackoutManager interface {
	CreateBlackout(ctx context.Context, resourceID string, extent domain.Extent, reason string) (domain.Blackout, error)
	DeleteBlackout(ctx context.Context, id string) error
}

// HandleBlackouts routes POST /admin/blackouts and
// DELETE /admin/blackouts/{id}.
func HandleBlackouts(svc BlackoutManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createBlackoutRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			start, err := time.Parse(domain.DateLayout, req.StartDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeValidation, "start_date: expected YYYY-MM-DD")
				return
			}
			end, err := time.Parse(domain.DateLayout, req.EndDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeValidation, "end_date: expected YYYY-MM-DD")
				return
			}

			blackout, err := svc.CreateBlackout(r.Context(), req.ResourceID, domain.NewExtent(start, end, domain.SlotNone), req.Reason)
			if err != nil {
				writeDomainError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(blackoutResponse{
				ID:         blackout.ID,
				ResourceID: blackout.ResourceID,
				StartDate:  blackout.Start.Format(domain.DateLayout),
				EndDate:    blackout.End.Format(domain.DateLayout),
				Reason:     blackout.Reason,
			})

		case http.MethodDelete:
			id, ok := parseBlackoutPath(r.URL.Path)
			if !ok {
				writeError(w, http.StatusNotFound, codeNotFound, "not found")
				return
			}
			if err := svc.DeleteBlackout(r.Context(), id); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type createBlackoutRequest struct {
	ResourceID string `json:"resource_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
}

type blackoutResponse struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
}

func parseBlackoutPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "admin" || parts[1] != "blackouts" || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}
