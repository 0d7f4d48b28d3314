package messaging

import (
	"context"
	"log/slog"
)

// BotHandler resolves an inbound message into a reply.
type BotHandler interface {
	HandleMessage(ctx context.Context, from, body string) (string, error)
}

// Responder consumes inbound messages from a Service and replies through
// the same service. Whatsmeow delivers inbound traffic on the Responses
// channel directly; the Twilio transport feeds the channel from its
// webhook handler.
type Responder struct {
	service Service
	handler BotHandler
}

// NewResponder creates a Responder wiring a messaging service to the bot.
func NewResponder(service Service, handler BotHandler) *Responder {
	return &Responder{service: service, handler: handler}
}

// Run processes inbound messages until the context is cancelled or the
// responses channel is closed.
func (r *Responder) Run(ctx context.Context) {
	slog.Info("Responder started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("Responder stopping due to context cancellation")
			return
		case resp, ok := <-r.service.Responses():
			if !ok {
				slog.Info("Responder stopping: responses channel closed")
				return
			}
			r.handle(ctx, resp.From, resp.Body)
		}
	}
}

func (r *Responder) handle(ctx context.Context, from, body string) {
	reply, err := r.handler.HandleMessage(ctx, from, body)
	if err != nil {
		slog.Error("Responder failed to resolve message", "from", from, "error", err)
		return
	}
	if reply == "" {
		return
	}
	if err := r.service.SendMessage(ctx, from, reply); err != nil {
		slog.Error("Responder failed to send reply", "to", from, "error", err)
	}
}
