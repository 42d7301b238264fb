package mailer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []Message
	err   error
	block chan struct{}
}

func (r *recordingSender) Send(ctx context.Context, msg Message) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingSender) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDispatcher_DeliversQueuedMessagesOnShutdown(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(DispatcherConfig{Workers: 2, QueueSize: 10, Logger: quietLogger()}, sender)
	d.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"}))
	}
	d.Shutdown()

	assert.Len(t, sender.messages(), 5)
}

func TestDispatcher_NotRunning(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{Logger: quietLogger()}, &recordingSender{})
	assert.ErrorIs(t, d.Send(context.Background(), Message{}), ErrStopped)

	d.Start(context.Background())
	d.Shutdown()
	assert.ErrorIs(t, d.Send(context.Background(), Message{}), ErrStopped)

	// second shutdown is harmless
	d.Shutdown()
}

func TestDispatcher_QueueFull(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 1, Logger: quietLogger()}, sender)
	d.Start(context.Background())

	var full bool
	for i := 0; i < 5; i++ {
		if err := d.Send(context.Background(), Message{To: "x"}); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	assert.True(t, full)

	close(sender.block)
	d.Shutdown()
}

func TestDispatcher_SenderErrorsAreSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(DispatcherConfig{Workers: 1, Logger: quietLogger()}, sender)
	d.Start(context.Background())

	require.NoError(t, d.Send(context.Background(), Message{To: "a@example.com"}))
	d.Shutdown()
	assert.Len(t, sender.messages(), 1)
}

func TestDispatcher_CancelledStartContextStillDelivers(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(DispatcherConfig{Workers: 1, Logger: quietLogger()}, sender)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	require.NoError(t, d.Send(context.Background(), Message{To: "a@example.com"}))
	d.Shutdown()
	assert.Len(t, sender.messages(), 1)
}
