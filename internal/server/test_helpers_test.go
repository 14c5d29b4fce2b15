package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackbombadeur/RPGCompanion/internal/config"
	"github.com/jackbombadeur/RPGCompanion/internal/store/memory"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func newMemoryServer() *Server {
	return New(memory.New(), config.Default())
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/sessions", map[string]any{
		"name":       "The Hollow Spire",
		"gm_user_id": "gm-user",
		"gm_name":    "Morgan",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session status %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	sessionID, _ := body["session_id"].(string)
	if sessionID == "" {
		t.Fatalf("missing session_id in %v", body)
	}
	return sessionID
}

func joinPlayer(t *testing.T, ts *httptest.Server, sessionID, userID, name string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/sessions/"+sessionID+"/join", map[string]any{
		"user_id": userID,
		"name":    name,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join status %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	playerID, _ := body["player_id"].(string)
	if playerID == "" {
		t.Fatalf("missing player_id in %v", body)
	}
	return playerID
}

func setEncounter(t *testing.T, ts *httptest.Server, sessionID string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/sessions/"+sessionID+"/encounter", map[string]any{
		"user_id":   "gm-user",
		"sentence":  "a hollow tower hums in the dark",
		"noun":      "tower",
		"verb":      "hum",
		"adjective": "hollow",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set encounter status %d", resp.StatusCode)
	}
	resp.Body.Close()
}
