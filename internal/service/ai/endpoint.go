package ai

import (
	"context"
	"errors"

	"github.com/zhouzirui/daily-hug/internal/model/chat"
)

// ErrReplyUnavailable is returned when no chat model is configured.
var ErrReplyUnavailable = errors.New("reply generation is not configured")

// Replier produces a persona reply for one exchange.
type Replier interface {
	Reply(ctx context.Context, req chat.ExchangeRequest) (string, error)
}

// LocalEndpoint serves greeting and exchange calls in-process, for sessions
// hosted by the server itself.
type LocalEndpoint struct {
	greeter *Greeter
	replier Replier
}

// NewLocalEndpoint wires a greeter and an optional replier.
func NewLocalEndpoint(greeter *Greeter, replier Replier) *LocalEndpoint {
	if greeter == nil {
		greeter = NewGreeter(nil)
	}
	return &LocalEndpoint{greeter: greeter, replier: replier}
}

// Greet returns an opening line for req.UserName.
func (e *LocalEndpoint) Greet(ctx context.Context, req chat.GreetRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.greeter.Greet(req.UserName), nil
}

// Exchange generates the persona's reply.
func (e *LocalEndpoint) Exchange(ctx context.Context, req chat.ExchangeRequest) (string, error) {
	if e.replier == nil {
		return "", ErrReplyUnavailable
	}
	return e.replier.Reply(ctx, req)
}
