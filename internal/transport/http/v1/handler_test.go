package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/theIndrajeet/AskSarkar/internal/adapter/llm"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
	"github.com/theIndrajeet/AskSarkar/internal/testutil"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	svc, _ := testutil.NewTestService(t, llm.NewMockClient(), 50)
	return NewHandler(svc)
}

func newRemoteHandler(t *testing.T, dailyLimit int) *Handler {
	t.Helper()
	svc, _ := testutil.NewTestService(t, &testutil.RemoteGenerator{Text: "Please tell me your name."}, dailyLimit)
	return NewHandler(svc)
}

func startSession(t *testing.T, e *echo.Echo, h *Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.StartSession(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		SessionID string `json:"session_id"`
		Greeting  string `json:"greeting"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID == "" || resp.Greeting == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	return resp.SessionID
}

func postMessage(t *testing.T, e *echo.Echo, h *Handler, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/messages", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues(sessionID)

	if err := h.PostMessage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func get(t *testing.T, e *echo.Echo, target, sessionID string, handle echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sessionID != "" {
		c.SetParamNames("session_id")
		c.SetParamValues(sessionID)
	}

	if err := handle(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestPostMessageRunsTurn(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	sessionID := startSession(t, e, h)

	rec := postMessage(t, e, h, sessionID, `{"content":"My name is Ravi, father Suresh Kumar"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SessionID string                 `json:"session_id"`
		Reply     domain.GenerationReply `json:"reply"`
		Stage     domain.Stage           `json:"stage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != sessionID || resp.Reply.Message == "" || resp.Stage == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	ctxRec := get(t, e, "/v1/sessions/"+sessionID+"/context", sessionID, h.GetSessionContext)
	if ctxRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctxRec.Code)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(ctxRec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode context: %v", err)
	}
	if got := snapshot.Session.ExtractedInfo.String(domain.FieldApplicantName); got != "Ravi" {
		t.Fatalf("expected applicant name Ravi, got %q", got)
	}
	if got := snapshot.Session.ExtractedInfo.String(domain.FieldFatherHusbandName); got != "Suresh Kumar" {
		t.Fatalf("expected father name Suresh Kumar, got %q", got)
	}
}

func TestPostMessageUnknownSession(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	rec := postMessage(t, e, h, "sess_missing", `{"content":"hello"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPostMessageEmptyContentBlocked(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	sessionID := startSession(t, e, h)

	rec := postMessage(t, e, h, sessionID, `{"content":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPostMessageInvalidBody(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	sessionID := startSession(t, e, h)

	rec := postMessage(t, e, h, sessionID, `{"content":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPostMessageQuotaExceeded(t *testing.T) {
	e := echo.New()
	h := newRemoteHandler(t, 1)
	sessionID := startSession(t, e, h)

	if rec := postMessage(t, e, h, sessionID, `{"content":"I need information about road repairs"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec := postMessage(t, e, h, sessionID, `{"content":"In Pune city"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	var resp struct {
		Error string               `json:"error"`
		Usage *domain.UsageMessage `json:"usage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Usage == nil || resp.Usage.Type != domain.UsageMessageError || !resp.Usage.ShowFallback {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
}

func TestGetSessionMessagesAndEvents(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	sessionID := startSession(t, e, h)
	postMessage(t, e, h, sessionID, `{"content":"I want records of road repairs"}`)

	rec := get(t, e, "/v1/sessions/"+sessionID+"/messages", sessionID, h.GetSessionMessages)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var msgs struct {
		Messages []domain.Message `json:"messages"`
		HasMore  bool             `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(msgs.Messages) != 2 || msgs.HasMore {
		t.Fatalf("unexpected response: %+v", msgs)
	}
	if msgs.Messages[0].Role != domain.RoleUser || msgs.Messages[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected roles: %s, %s", msgs.Messages[0].Role, msgs.Messages[1].Role)
	}

	rec = get(t, e, "/v1/sessions/"+sessionID+"/events?types=session_started", sessionID, h.GetSessionEvents)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var events struct {
		Events []domain.Event `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(events.Events) != 1 || events.Events[0].Type != domain.EventTypeSessionStarted {
		t.Fatalf("unexpected events: %+v", events.Events)
	}
}

func TestGetSessionEventsNotFound(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	rec := get(t, e, "/v1/sessions/s1/events", "s1", h.GetSessionEvents)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetDocumentAsText(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	sessionID := startSession(t, e, h)

	rec := get(t, e, "/v1/sessions/"+sessionID+"/document?format=text", sessionID, h.GetDocument)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "APPLICATION UNDER RIGHT TO INFORMATION ACT, 2005") {
		t.Fatalf("unexpected document: %q", rec.Body.String())
	}
}

func TestCompleteThenEndSession(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	sessionID := startSession(t, e, h)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/complete", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues(sessionID)
	if err := h.CompleteSession(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var completed struct {
		Summary  domain.ConversationSummary `json:"summary"`
		Document string                     `json:"document"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &completed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !completed.Summary.WasSuccessful || completed.Summary.Stage != domain.StageCompleted || completed.Document == "" {
		t.Fatalf("unexpected response: %+v", completed)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+sessionID, nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues(sessionID)
	if err := h.EndSession(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = get(t, e, "/v1/sessions/"+sessionID+"/context", sessionID, h.GetSessionContext)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after end, got %d", rec.Code)
	}
}

func TestGetUsageAndReset(t *testing.T) {
	e := echo.New()
	h := newRemoteHandler(t, 2)
	sessionID := startSession(t, e, h)
	postMessage(t, e, h, sessionID, `{"content":"I need details of ration card delays"}`)

	rec := get(t, e, "/v1/usage", "", h.GetUsage)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var usage struct {
		Usage   domain.UsageInfo     `json:"usage"`
		Message *domain.UsageMessage `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &usage); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if usage.Usage.Used != 1 || usage.Usage.Limit != 2 || usage.Usage.Remaining != 1 {
		t.Fatalf("unexpected usage: %+v", usage.Usage)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/usage/reset", nil)
	rec = httptest.NewRecorder()
	if err := h.ResetUsage(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var reset struct {
		Usage domain.UsageInfo `json:"usage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reset); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if reset.Usage.Used != 0 || reset.Usage.Remaining != 2 {
		t.Fatalf("unexpected usage after reset: %+v", reset.Usage)
	}
}

func TestGreetingAndClearContext(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	rec := get(t, e, "/v1/greeting", "", h.GetGreeting)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/v1/context", nil)
	rec = httptest.NewRecorder()
	if err := h.ClearContext(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestSuggestionsNotFound(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	rec := get(t, e, "/v1/sessions/nope/suggestions", "nope", h.GetSuggestions)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
