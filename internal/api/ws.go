package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamTaskLogs streams task log lines over WebSocket until the task
// reaches a terminal state.
func (s *Server) StreamTaskLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task := s.Tasks.Get(id)
	if task == nil {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	offset := 0
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lines := task.LogsSince(offset)
			for _, line := range lines {
				if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
					return
				}
				offset++
			}
			// If the task is done and we've sent everything, close
			if task.CurrentState().Terminal() && len(lines) == 0 {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(task.CurrentState())))
				return
			}
		}
	}
}
