package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// ResourceCatalog is the minimal interface for catalog endpoints.
type ResourceCatalog interface {
	GetResource(ctx context.Context, id string) (domain.Resource, error)
	ListResources(ctx context.Context, kind domain.ResourceKind) ([]domain.Resource, error)
}

// HandleResources serves GET /resources with an optional kind filter.
func HandleResources(svc ResourceCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var kind domain.ResourceKind
		if raw := r.URL.Query().Get("kind"); raw != "" {
			k, ok := domain.ParseResourceKind(raw)
			if !ok {
				writeError(w, http.StatusBadRequest, codeValidation, "kind: unknown resource kind")
				return
			}
			kind = k
		}

		resources, err := svc.ListResources(r.Context(), kind)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]resourceResponse, 0, len(resources))
		for _, res := range resources {
			out = append(out, toResourceResponse(res))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(listResourcesResponse{Resources: out})
	}
}

// HandleResource serves GET /resources/{id}.
func HandleResource(svc ResourceCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		id, ok := parseResourcePath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		res, err := svc.GetResource(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toResourceResponse(res))
	}
}

type listResourcesResponse struct {
	Resources []resourceResponse `json:"resources"`
}

type resourceResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	TypeCode    string `json:"type_code"`
	Name        string `json:"name"`
	UnitNo      int    `json:"unit_no,omitempty"`
	CapacityMin int    `json:"capacity_min,omitempty"`
	CapacityMax int    `json:"capacity_max,omitempty"`
	MemberRate  string `json:"member_rate"`
	GuestRate   string `json:"guest_rate"`
	Active      bool   `json:"active"`
	Reserved    bool   `json:"reserved"`
	BlackedOut  bool   `json:"blacked_out"`
}

func toResourceResponse(res domain.Resource) resourceResponse {
	return resourceResponse{
		ID:          res.ID,
		Kind:        string(res.Kind),
		TypeCode:    res.TypeCode,
		Name:        res.Name,
		UnitNo:      res.UnitNo,
		CapacityMin: res.CapacityMin,
		CapacityMax: res.CapacityMax,
		MemberRate:  res.MemberRate.String(),
		GuestRate:   res.GuestRate.String(),
		Active:      res.Active,
		Reserved:    res.Reserved,
		BlackedOut:  res.BlackedOut,
	}
}

func parseResourcePath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "resources" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
