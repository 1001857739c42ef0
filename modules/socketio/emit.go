package socketio

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/pipesgo/internal/document"
	"github.com/vk/pipesgo/internal/pipe"
	"github.com/zishang520/engine.io/v2/types"
)

type opResult struct {
	value any
	err   error
}

// onRunEmit emits the event and, when a reply event is configured, stores
// the first payload received for it.
func onRunEmit(ctx context.Context, args *pipe.Args) error {
	client, ok := args.Sub("socketio").Resource().(*Client)
	if !ok {
		return fmt.Errorf("socket.io client was not initialized")
	}
	event := args.GetString("event")
	replyEvent := args.GetString("reply-event")
	logger := args.Logger().With("sid", client.Socket.Id(), "event", event)

	if args.DryRun() {
		logger.Info("Dry run: skipping emit", "data", document.Render(args.Get("data")))
		return nil
	}
	if !client.Socket.Connected() {
		return fmt.Errorf("socket.io client is not connected")
	}

	done := make(chan opResult, 1)
	if replyEvent != "" {
		client.Socket.Once(types.EventName(replyEvent), func(data ...any) {
			var payload any
			if len(data) > 0 {
				payload = data[0]
			}
			value, err := document.Normalize(payload)
			select {
			case done <- opResult{value: value, err: err}:
			default:
			}
		})
	}

	logger.Info("Emitting event", "data", document.Render(args.Get("data")))
	client.Socket.Emit(event, args.Get("data"))
	if replyEvent == "" {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, client.Timeout)
	defer cancel()
	select {
	case <-opCtx.Done():
		return fmt.Errorf("timed out after %v waiting for event '%s'", client.Timeout.Round(time.Millisecond), replyEvent)
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("invalid payload for event '%s': %w", replyEvent, res.err)
		}
		logger.Info("Successfully received reply event", "reply_event", replyEvent)
		return args.Set("reply", res.value)
	}
}
