package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
)

type stubHandler struct {
	reply    string
	err      error
	lastFrom string
	lastBody string
}

func (h *stubHandler) HandleMessage(_ context.Context, from, body string) (string, error) {
	h.lastFrom = from
	h.lastBody = body
	return h.reply, h.err
}

func postWebhook(t *testing.T, srv *Server, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/bot", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestBotHandlerRepliesWithTwiML(t *testing.T) {
	h := &stubHandler{reply: "Bom dia! Como posso ajudar com suas questões de RH hoje?"}
	srv := NewServer(h)

	rec := postWebhook(t, srv, url.Values{
		"From": {"whatsapp:+5511912345678"},
		"Body": {"oi"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/xml" {
		t.Errorf("content type = %q, want text/xml", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<Response>") || !strings.Contains(body, "<Message>") {
		t.Errorf("expected TwiML document, got %q", body)
	}
	if !strings.Contains(body, "Bom dia!") {
		t.Errorf("expected reply embedded in TwiML, got %q", body)
	}
	if h.lastFrom != "whatsapp:+5511912345678" || h.lastBody != "oi" {
		t.Errorf("handler received from=%q body=%q", h.lastFrom, h.lastBody)
	}
}

type stubEmitter struct {
	emitted []models.Response
}

func (e *stubEmitter) EmitResponse(r models.Response) {
	e.emitted = append(e.emitted, r)
}

func TestBotHandlerAsyncModeEmitsResponse(t *testing.T) {
	h := &stubHandler{reply: "should not be used"}
	emitter := &stubEmitter{}
	srv := NewServer(h, WithResponseEmitter(emitter))

	rec := postWebhook(t, srv, url.Values{
		"From": {"whatsapp:+5511912345678"},
		"Body": {"oi"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(emitter.emitted) != 1 {
		t.Fatalf("expected 1 emitted response, got %d", len(emitter.emitted))
	}
	if emitter.emitted[0].From != "whatsapp:+5511912345678" || emitter.emitted[0].Body != "oi" {
		t.Errorf("unexpected emitted response: %+v", emitter.emitted[0])
	}
	if strings.Contains(rec.Body.String(), "<Message>") {
		t.Errorf("async acknowledgement must not carry a message: %q", rec.Body.String())
	}
	if h.lastFrom != "" {
		t.Error("handler must not be invoked in async mode")
	}
}

func TestBotHandlerMissingSender(t *testing.T) {
	srv := NewServer(&stubHandler{reply: "ok"})

	rec := postWebhook(t, srv, url.Values{"Body": {"oi"}})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing sender") {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestBotHandlerFlowError(t *testing.T) {
	srv := NewServer(&stubHandler{err: errors.New("store unavailable")})

	rec := postWebhook(t, srv, url.Values{
		"From": {"whatsapp:+5511912345678"},
		"Body": {"oi"},
	})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestBotHandlerMethodNotAllowed(t *testing.T) {
	srv := NewServer(&stubHandler{})

	req := httptest.NewRequest(http.MethodGet, "/bot", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("Allow = %q, want POST", allow)
	}
}

func TestStaticServesReports(t *testing.T) {
	dir := t.TempDir()
	name := "relatorio_analista_de_dados_20250310090000_abcd1234.pdf"
	if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := NewServer(&stubHandler{}, WithStaticDir(dir))

	req := httptest.NewRequest(http.MethodGet, "/static/"+name, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Errorf("unexpected file content: %q", rec.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	srv := NewServer(&stubHandler{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %q", rec.Body.String())
	}
}

func TestNewServerDefaults(t *testing.T) {
	srv := NewServer(&stubHandler{})
	if srv.addr != DefaultAddr {
		t.Errorf("addr = %q, want %q", srv.addr, DefaultAddr)
	}
	if srv.staticDir != DefaultStaticDir {
		t.Errorf("staticDir = %q, want %q", srv.staticDir, DefaultStaticDir)
	}

	srv = NewServer(&stubHandler{}, WithAddr(":9000"), WithStaticDir("/tmp/reports"))
	if srv.addr != ":9000" || srv.staticDir != "/tmp/reports" {
		t.Errorf("options not applied: %+v", srv)
	}
}
