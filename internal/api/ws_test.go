package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rflorenc/conversion-host-service/internal/queue"
)

func dialTaskLogs(t *testing.T, ts *httptest.Server, taskID string) (*websocket.Conn, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/tasks/" + taskID + "/logs"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		defer resp.Body.Close()
	}
	return conn, err
}

func TestStreamTaskLogs_TerminalTaskStreamsAndCloses(t *testing.T) {
	s, _, h := newTestServer(queue.Sync{})
	ts := httptest.NewServer(h)
	defer ts.Close()

	task := s.Tasks.Create("enable", "hosts/7")
	task.Start()
	task.AppendLog("installing conversion host packages")
	task.AppendLog("configuring conversion host role")
	task.Succeed("conversion host enabled")

	conn, err := dialTaskLogs(t, ts, task.ID)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var lines []string
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Fatalf("read ended with %v, want normal closure", err)
			}
			break
		}
		lines = append(lines, string(msg))
	}

	if len(lines) != 2 {
		t.Fatalf("streamed %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0] != "installing conversion host packages" ||
		lines[1] != "configuring conversion host role" {
		t.Errorf("lines = %v", lines)
	}
}

func TestStreamTaskLogs_LinesAppendedAfterConnect(t *testing.T) {
	s, _, h := newTestServer(queue.Sync{})
	ts := httptest.NewServer(h)
	defer ts.Close()

	task := s.Tasks.Create("disable", "conv-1")
	task.Start()

	conn, err := dialTaskLogs(t, ts, task.ID)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	task.AppendLog("disabling conversion host role")
	task.Succeed("conversion host disabled")

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != "disabling conversion host role" {
		t.Errorf("line = %q", msg)
	}

	// The stream must end cleanly once the task is terminal.
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("read after terminal state = %v, want normal closure", err)
	}
}

func TestStreamTaskLogs_UnknownTask(t *testing.T) {
	_, _, h := newTestServer(queue.Sync{})
	ts := httptest.NewServer(h)
	defer ts.Close()

	conn, err := dialTaskLogs(t, ts, "nonexistent")
	if err == nil {
		conn.Close()
		t.Fatal("dial succeeded for unknown task, want handshake failure")
	}
}
