// Package api exposes the HTTP surface of the assistant: the Twilio
// WhatsApp webhook, the static directory serving generated PDF reports,
// and a health check endpoint.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/twilio/twilio-go/twiml"

	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
)

// DefaultAddr is the listen address used when no override is provided.
const DefaultAddr = ":8080"

// DefaultStaticDir is where generated report PDFs are served from.
const DefaultStaticDir = "static"

// MessageHandler resolves an inbound message into the reply text. It is
// implemented by the conversation flow.
type MessageHandler interface {
	HandleMessage(ctx context.Context, from, body string) (string, error)
}

// ResponseEmitter hands inbound webhook messages to the messaging layer
// for asynchronous handling. When configured, the webhook acknowledges
// with an empty TwiML document and the reply is sent over the REST API.
type ResponseEmitter interface {
	EmitResponse(response models.Response)
}

// Opts holds configuration options for the API server.
type Opts struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string
	// StaticDir is the directory served under /static/.
	StaticDir string
	// Emitter, when set, switches the webhook to asynchronous replies.
	Emitter ResponseEmitter
}

// Option defines a function that configures Opts.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithStaticDir sets the directory served under /static/.
func WithStaticDir(dir string) Option {
	return func(o *Opts) { o.StaticDir = dir }
}

// WithResponseEmitter routes inbound webhook messages to the messaging
// layer instead of answering inline.
func WithResponseEmitter(e ResponseEmitter) Option {
	return func(o *Opts) { o.Emitter = e }
}

// Server hosts the webhook and static endpoints.
type Server struct {
	addr      string
	staticDir string
	handler   MessageHandler
	emitter   ResponseEmitter
	httpSrv   *http.Server
}

// NewServer creates an API server around the given message handler.
func NewServer(handler MessageHandler, opts ...Option) *Server {
	var o Opts
	for _, opt := range opts {
		opt(&o)
	}
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	if o.StaticDir == "" {
		o.StaticDir = DefaultStaticDir
	}
	return &Server{addr: o.Addr, staticDir: o.StaticDir, handler: handler, emitter: o.Emitter}
}

// Handler returns the route table. Exposed so tests can drive the
// server through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bot", s.botHandler)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Server Run listening", "addr", s.addr, "static_dir", s.staticDir)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	slog.Info("Server Shutdown stopping")
	return s.httpSrv.Shutdown(ctx)
}

// botHandler receives Twilio's inbound message webhook (POST /bot) and
// answers with a TwiML document carrying the assistant's reply.
func (s *Server) botHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server botHandler method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.Warn("Server botHandler failed to parse form", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid form payload"))
		return
	}

	from := r.FormValue("From")
	body := r.FormValue("Body")
	if from == "" {
		slog.Warn("Server botHandler missing sender")
		writeJSONResponse(w, http.StatusBadRequest, models.Error("missing sender"))
		return
	}
	slog.Debug("Server botHandler inbound message", "from", from)

	if s.emitter != nil {
		s.emitter.EmitResponse(models.Response{From: from, Body: body, Time: time.Now().Unix()})
		writeTwiML(w, "")
		return
	}

	reply, err := s.handler.HandleMessage(r.Context(), from, body)
	if err != nil {
		slog.Error("Server botHandler flow failed", "from", from, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to process message"))
		return
	}
	writeTwiML(w, reply)
}

// writeTwiML renders a single-message TwiML response. An empty body
// renders a bare acknowledgement document with no outbound message.
func writeTwiML(w http.ResponseWriter, body string) {
	var verbs []twiml.Element
	if body != "" {
		verbs = append(verbs, &twiml.MessagingMessage{Body: body})
	}
	doc, err := twiml.Messages(verbs)
	if err != nil {
		slog.Error("Server writeTwiML failed to render document", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		slog.Error("Server writeTwiML failed to write response", "error", err)
	}
}

// healthHandler provides a liveness endpoint for monitoring.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}))
}
