package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
)

type fakeBot struct {
	convID   string
	intro    string
	startErr error

	result  contractx.TurnResult
	turnErr error
	turns   []string

	tours    []string
	toursErr error
}

func (f *fakeBot) StartConversation(ctx context.Context) (string, string, error) {
	if f.startErr != nil {
		return "", "", f.startErr
	}
	return f.convID, f.intro, nil
}

func (f *fakeBot) HandleTurn(ctx context.Context, conversationID, text string) (contractx.TurnResult, error) {
	f.turns = append(f.turns, conversationID+"|"+text)
	if f.turnErr != nil {
		return contractx.TurnResult{}, f.turnErr
	}
	return f.result, nil
}

func (f *fakeBot) SuggestTours(ctx context.Context) ([]string, error) {
	if f.toursErr != nil {
		return nil, f.toursErr
	}
	return f.tours, nil
}

func newTestServer(t *testing.T, bot Bot) *Server {
	t.Helper()

	srv, err := New(bot, Config{Addr: ":0"})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func TestInitChat(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{
		convID: "c1",
		intro:  "Hola, soy SAM.",
		tours:  []string{"1. 04/03/2026 · Cupo abierto"},
	}
	srv := newTestServer(t, bot)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/init", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp InitChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ConversationID != "c1" || resp.Reply != "Hola, soy SAM." {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Stage != contractx.StageChat {
		t.Fatalf("expected chat stage, got %q", resp.Stage)
	}
	if len(resp.SuggestedTours) != 1 {
		t.Fatalf("expected 1 suggested tour, got %+v", resp.SuggestedTours)
	}
}

func TestInitChatFailure(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{startErr: errors.New("store down")}
	srv := newTestServer(t, bot)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/init", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "store down") {
		t.Fatalf("internal error leaked to client: %s", rec.Body.String())
	}
}

func postChat(t *testing.T, srv *Server, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encode request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestChatTurn(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{
		result: contractx.TurnResult{
			Reply: "Claro, con gusto.",
			Stage: contractx.StageChat,
		},
		tours: []string{"1. 04/03/2026 · Cupo abierto"},
	}
	srv := newTestServer(t, bot)

	rec := postChat(t, srv, ChatRequest{Message: "hola", ConversationID: "c1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ConversationID != "c1" || resp.Reply != "Claro, con gusto." {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.RegistrationCompleted || resp.WaitListed {
		t.Fatalf("unexpected flags: %+v", resp)
	}
	if len(resp.SuggestedTours) != 1 {
		t.Fatalf("expected suggested tours on every reply, got %+v", resp.SuggestedTours)
	}

	if len(bot.turns) != 1 || bot.turns[0] != "c1|hola" {
		t.Fatalf("unexpected bot calls: %+v", bot.turns)
	}
}

func TestChatCompletedRegistration(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{
		result: contractx.TurnResult{
			Reply:                 "¡Listo! Tu registro fue procesado.",
			Stage:                 contractx.StageCompleted,
			RegistrationCompleted: true,
			WaitListed:            true,
		},
	}
	srv := newTestServer(t, bot)

	rec := postChat(t, srv, ChatRequest{Message: "regístrame", ConversationID: "c1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.RegistrationCompleted || !resp.WaitListed {
		t.Fatalf("completion flags lost: %+v", resp)
	}
	if resp.Stage != contractx.StageCompleted {
		t.Fatalf("expected completed stage, got %q", resp.Stage)
	}
}

func TestChatMissingMessage(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeBot{})

	rec := postChat(t, srv, map[string]string{"conversation_id": "c1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatWithoutConversationIDStartsOne(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{
		convID: "fresh",
		result: contractx.TurnResult{Reply: "Hola", Stage: contractx.StageChat},
	}
	srv := newTestServer(t, bot)

	rec := postChat(t, srv, ChatRequest{Message: "hola"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ConversationID != "fresh" {
		t.Fatalf("expected newly assigned conversation id, got %q", resp.ConversationID)
	}
	if len(bot.turns) != 1 || !strings.HasPrefix(bot.turns[0], "fresh|") {
		t.Fatalf("turn should run under the new id: %+v", bot.turns)
	}
}

func TestChatTurnFailure(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{turnErr: errors.New("database is locked")}
	srv := newTestServer(t, bot)

	rec := postChat(t, srv, ChatRequest{Message: "hola", ConversationID: "c1"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "locked") {
		t.Fatalf("internal error leaked to client: %s", rec.Body.String())
	}
}

func TestHomeAndThankYouPages(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeBot{})

	for _, path := range []string{"/", "/gracias"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
			t.Fatalf("GET %s: expected html, got %q", path, rec.Header().Get("Content-Type"))
		}
	}
}

func TestStaticAssets(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeBot{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for embedded asset, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeBot{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/chat", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected permissive CORS header")
	}
}
