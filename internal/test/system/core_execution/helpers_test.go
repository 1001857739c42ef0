package system

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/pipesgo/internal/pipe"
	"github.com/vk/pipesgo/internal/testutil"
)

// eventLog records lifecycle events in the order they happen.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// recorderModule registers `record`, whose `session` context logs its
// lifecycle and whose body appends the session label to the state list
// `seen`.
func recorderModule(log *eventLog) *testutil.SimpleModule {
	session := pipe.NewContext("session").
		Field("label", pipe.Config("label").Type(pipe.String)).
		OnEnter(func(_ context.Context, c *pipe.Context) error {
			log.add("enter %s", c.GetString("label"))
			return nil
		}).
		OnExit(func(_ context.Context, c *pipe.Context, cause error) error {
			log.add("exit %s (%v)", c.GetString("label"), cause)
			return nil
		})

	record := pipe.Define("record", func(_ context.Context, args *pipe.Args) error {
		label := args.Sub("session").GetString("label")
		log.add("run %s", label)
		return args.Handle("seen").Update(func(current any) (any, error) {
			list, _ := current.([]any)
			return append(list, label), nil
		})
	}).
		Bind("session", session).
		Bind("seen", pipe.State("seen").Mutable().Type(pipe.List))

	return &testutil.SimpleModule{Unit: "recorder", Definitions: []*pipe.Definition{record}}
}
