package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/conversion-host-service/internal/models"
)

// ListResourcesOfType returns the visible inventory of one resource kind.
func (s *Server) ListResourcesOfType(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseResourceKind(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resources := s.Inventory.ListKind(kind)
	if resources == nil {
		resources = []*models.ManagedResource{}
	}
	writeJSON(w, http.StatusOK, resources)
}
