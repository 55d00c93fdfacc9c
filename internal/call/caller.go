// Package call turns fire-and-forget sends into awaitable command calls.
// Each call is matched to exactly one server ack by request id and always
// resolves: ack, bounded timeout, or disconnect. Nothing stays pending.
package call

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jdelaney/gopoly/pkg/types"
)

// Sender is the outbound half of the transport session.
type Sender interface {
	Send(ctx context.Context, msgType, reqID string, payload any) error
}

// Caller correlates commands with acks.
type Caller struct {
	sender  Sender
	timeout time.Duration
	log     *zap.SugaredLogger

	mu      sync.Mutex
	pending map[string]chan types.Result
}

// New builds a Caller with the given ack timeout.
func New(sender Sender, timeout time.Duration, log *zap.SugaredLogger) *Caller {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Caller{
		sender:  sender,
		timeout: timeout,
		log:     log,
		pending: make(map[string]chan types.Result),
	}
}

// Call sends one command and waits for its ack. The result is always
// normalized: a server ack verbatim, {ok:false, reason:"timeout"} when the
// ack never arrives, or {ok:false, reason:"disconnected"} when the
// transport drops mid-call.
func (c *Caller) Call(ctx context.Context, command string, payload any) types.Result {
	reqID := uuid.NewString()
	done := make(chan types.Result, 1)

	c.mu.Lock()
	c.pending[reqID] = done
	c.mu.Unlock()

	if err := c.sender.Send(ctx, command, reqID, payload); err != nil {
		c.drop(reqID)
		c.log.Warnw("send failed", "command", command, "err", err)
		return types.Fail(types.ReasonDisconnected)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res
	case <-timer.C:
		c.drop(reqID)
		c.log.Warnw("call timed out", "command", command, "reqId", reqID)
		return types.Fail(types.ReasonTimeout)
	case <-ctx.Done():
		c.drop(reqID)
		return types.Fail(types.ReasonDisconnected)
	}
}

// Resolve completes the pending call matching the ack, if any. Meant to be
// wired as the transport's ack handler.
func (c *Caller) Resolve(msg types.ServerMessage) {
	c.mu.Lock()
	done, ok := c.pending[msg.ReqID]
	if ok {
		delete(c.pending, msg.ReqID)
	}
	c.mu.Unlock()
	if !ok {
		// Late ack after timeout; the call already resolved.
		c.log.Debugw("unmatched ack", "type", msg.Type, "reqId", msg.ReqID)
		return
	}
	done <- types.Result{OK: msg.Ok(), Reason: msg.Reason, Data: msg.Data}
}

// FailAll force-resolves every pending call with the given reason. Wired
// to the transport's disconnect hook.
func (c *Caller) FailAll(reason string) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]chan types.Result)
	c.mu.Unlock()
	for _, done := range pending {
		done <- types.Fail(reason)
	}
}

func (c *Caller) drop(reqID string) {
	c.mu.Lock()
	delete(c.pending, reqID)
	c.mu.Unlock()
}
