package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/daily-hug/internal/model/chat"
	"github.com/zhouzirui/daily-hug/internal/model/persona"
	chatservice "github.com/zhouzirui/daily-hug/internal/service/chat"
	"github.com/zhouzirui/daily-hug/internal/service/conversation"
)

type blockingEndpoint struct {
	entered chan struct{}
	release chan struct{}
}

func (e *blockingEndpoint) Greet(_ context.Context, req chat.GreetRequest) (string, error) {
	return "안녕, " + req.UserName + "!", nil
}

func (e *blockingEndpoint) Exchange(ctx context.Context, req chat.ExchangeRequest) (string, error) {
	if e.entered != nil {
		e.entered <- struct{}{}
	}
	if e.release != nil {
		select {
		case <-e.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "echo: " + req.Message, nil
}

func setupRouter(endpoint conversation.Endpoint) (*chi.Mux, *chatservice.Service) {
	sessions := chatservice.NewService(endpoint, time.Minute)
	handler := New(sessions, persona.NewMemoryStore(persona.Seed()), "")

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, sessions
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler) sessionView {
	t.Helper()
	resp := doJSON(t, r, http.MethodPost, "/sessions", map[string]any{
		"userName": "Alex",
		"traits":   []string{"친근한", "웃긴"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var view sessionView
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return view
}

func TestCreateSessionGreets(t *testing.T) {
	r, _ := setupRouter(&blockingEndpoint{})

	view := createSession(t, r)

	if view.Session.PersonaName != persona.DefaultName {
		t.Fatalf("expected default persona name, got %q", view.Session.PersonaName)
	}
	if len(view.State.Turns) != 1 || view.State.Turns[0].Text != "안녕, Alex!" {
		t.Fatalf("unexpected initial turns: %+v", view.State.Turns)
	}
}

func TestCreateSessionInvalidParams(t *testing.T) {
	r, _ := setupRouter(&blockingEndpoint{})

	cases := map[string]map[string]any{
		"missing user":   {"personaName": "Mimi"},
		"unknown trait":  {"userName": "Alex", "traits": []string{"mysterious"}},
		"too many trait": {"userName": "Alex", "traits": []string{"친근한", "웃긴", "귀여운", "진지한"}},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := doJSON(t, r, http.MethodPost, "/sessions", body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
		})
	}
}

func TestGetAndEndSession(t *testing.T) {
	r, _ := setupRouter(&blockingEndpoint{})
	view := createSession(t, r)
	path := "/sessions/" + view.Session.ID

	if resp := doJSON(t, r, http.MethodGet, path, nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp := doJSON(t, r, http.MethodDelete, path, nil); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp := doJSON(t, r, http.MethodGet, path, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}

func TestSubmitMessage(t *testing.T) {
	r, _ := setupRouter(&blockingEndpoint{})
	view := createSession(t, r)

	resp := doJSON(t, r, http.MethodPost, "/sessions/"+view.Session.ID+"/messages", map[string]string{"text": "hi"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var state conversation.State
	if err := json.Unmarshal(resp.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.InFlight || len(state.Turns) != 3 || state.Turns[2].Text != "echo: hi" {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestSubmitEmptyMessageIsNoop(t *testing.T) {
	r, _ := setupRouter(&blockingEndpoint{})
	view := createSession(t, r)

	resp := doJSON(t, r, http.MethodPost, "/sessions/"+view.Session.ID+"/messages", map[string]string{"text": "   "})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var state conversation.State
	if err := json.Unmarshal(resp.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(state.Turns) != 1 {
		t.Fatalf("empty input should not add turns, got %d", len(state.Turns))
	}
}

func TestSubmitWhileInFlightConflicts(t *testing.T) {
	endpoint := &blockingEndpoint{entered: make(chan struct{}, 1), release: make(chan struct{})}
	r, _ := setupRouter(endpoint)
	view := createSession(t, r)
	path := "/sessions/" + view.Session.ID + "/messages"

	done := make(chan int, 1)
	go func() {
		done <- doJSON(t, r, http.MethodPost, path, map[string]string{"text": "first"}).Code
	}()

	select {
	case <-endpoint.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("exchange never started")
	}

	if resp := doJSON(t, r, http.MethodPost, path, map[string]string{"text": "second"}); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}

	close(endpoint.release)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("expected first submit to finish with 200, got %d", code)
	}
}

func TestSubmitSurvivesClientDisconnect(t *testing.T) {
	endpoint := &blockingEndpoint{entered: make(chan struct{}, 1), release: make(chan struct{})}
	r, sessions := setupRouter(endpoint)
	view := createSession(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+view.Session.ID+"/messages", strings.NewReader(`{"text":"first"}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}()

	select {
	case <-endpoint.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("exchange never started")
	}
	cancel()
	close(endpoint.release)
	<-done

	assertSettledReply(t, sessions, view.Session.ID, "echo: first")
}

func TestSubmitUnknownSession(t *testing.T) {
	r, _ := setupRouter(&blockingEndpoint{})

	resp := doJSON(t, r, http.MethodPost, "/sessions/missing/messages", map[string]string{"text": "hi"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestWebSocketStreamsStates(t *testing.T) {
	r, _ := setupRouter(&blockingEndpoint{})
	view := createSession(t, r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + view.Session.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	first := readState(t, conn)
	if len(first.Turns) != 1 {
		t.Fatalf("expected greeting-only state, got %+v", first)
	}

	if err := conn.WriteJSON(inboundMessage{Type: "message", Text: "hi"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	sawPending := false
	for {
		state := readState(t, conn)
		if n := len(state.Turns); n > 0 && state.Turns[n-1].IsPending() {
			sawPending = true
		}
		if !state.InFlight && len(state.Turns) == 3 {
			if state.Turns[2].Text != "echo: hi" {
				t.Fatalf("unexpected reply turn %+v", state.Turns[2])
			}
			break
		}
	}
	if !sawPending {
		t.Fatal("expected a state with the pending placeholder")
	}
}

func TestWebSocketRejectsUnknownType(t *testing.T) {
	r, _ := setupRouter(&blockingEndpoint{})
	view := createSession(t, r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + view.Session.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	readState(t, conn)
	if err := conn.WriteJSON(inboundMessage{Type: "audio"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var msg struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "error" {
		t.Fatalf("expected error frame, got %q", msg.Type)
	}
}

func TestWebSocketCloseDoesNotAbortExchange(t *testing.T) {
	endpoint := &blockingEndpoint{entered: make(chan struct{}, 1), release: make(chan struct{})}
	r, sessions := setupRouter(endpoint)
	view := createSession(t, r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + view.Session.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	readState(t, conn)
	if err := conn.WriteJSON(inboundMessage{Type: "message", Text: "hi"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-endpoint.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("exchange never started")
	}
	conn.Close()
	close(endpoint.release)

	assertSettledReply(t, sessions, view.Session.ID, "echo: hi")
}

// assertSettledReply waits for the session to leave the in-flight state and
// checks that its last turn is the completed reply.
func assertSettledReply(t *testing.T, sessions *chatservice.Service, sessionID, want string) {
	t.Helper()
	controller, err := sessions.Controller(sessionID)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	state := controller.State()
	for state.InFlight && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
		state = controller.State()
	}
	if state.InFlight {
		t.Fatal("exchange did not settle")
	}

	n := len(state.Turns)
	if n != 3 {
		t.Fatalf("expected greeting, message and reply, got %+v", state.Turns)
	}
	if last := state.Turns[n-1]; last.Status != chat.StatusComplete || last.Text != want {
		t.Fatalf("expected completed reply %q, got %+v", want, last)
	}
}

func readState(t *testing.T, conn *websocket.Conn) conversation.State {
	t.Helper()
	var msg struct {
		Type string             `json:"type"`
		Data conversation.State `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "state" {
		t.Fatalf("expected state frame, got %q", msg.Type)
	}
	return msg.Data
}
