package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/conversion-host-service/internal/models"
)

func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	list := s.Tasks.List()
	snapshots := make([]models.Task, 0, len(list))
	for _, t := range list {
		snapshots = append(snapshots, t.Snapshot())
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task := s.Tasks.Get(id)
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task.Snapshot())
}
