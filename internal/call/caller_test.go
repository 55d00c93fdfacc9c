package call

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jdelaney/gopoly/pkg/types"
)

// fakeSender records outbound sends so tests can ack them.
type fakeSender struct {
	mu   sync.Mutex
	sent []types.ClientMessage
	fail error
}

func (f *fakeSender) Send(ctx context.Context, msgType, reqID string, payload any) error {
	if f.fail != nil {
		return f.fail
	}
	var data json.RawMessage
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	f.mu.Lock()
	f.sent = append(f.sent, types.ClientMessage{Type: msgType, ReqID: reqID, Data: data})
	f.mu.Unlock()
	return nil
}

func (f *fakeSender) last(t *testing.T) types.ClientMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func TestCall_ResolvesOnMatchingAck(t *testing.T) {
	sender := &fakeSender{}
	c := New(sender, time.Second, nil)

	done := make(chan types.Result, 1)
	go func() {
		done <- c.Call(context.Background(), types.CmdBuyProperty, types.PropertyPayload{PropertyID: "b1"})
	}()

	// Wait for the send, then ack it.
	require.Eventually(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return len(sender.sent) == 1
	}, time.Second, 5*time.Millisecond)

	msg := sender.last(t)
	require.Equal(t, types.CmdBuyProperty, msg.Type)
	require.NotEmpty(t, msg.ReqID)

	c.Resolve(types.ServerMessage{Type: msg.Type, ReqID: msg.ReqID, Data: json.RawMessage(`{"price":60}`)})

	select {
	case res := <-done:
		require.True(t, res.OK)
		require.Empty(t, res.Reason)
		require.JSONEq(t, `{"price":60}`, string(res.Data))
	case <-time.After(time.Second):
		t.Fatal("call never resolved")
	}
}

func TestCall_ServerRejectionKeepsReasonVerbatim(t *testing.T) {
	sender := &fakeSender{}
	c := New(sender, time.Second, nil)

	done := make(chan types.Result, 1)
	go func() {
		done <- c.Call(context.Background(), types.CmdRequestRoll, nil)
	}()

	require.Eventually(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return len(sender.sent) == 1
	}, time.Second, 5*time.Millisecond)

	notOK := false
	c.Resolve(types.ServerMessage{ReqID: sender.last(t).ReqID, OK: &notOK, Reason: "not your turn"})

	res := <-done
	require.False(t, res.OK)
	require.Equal(t, "not your turn", res.Reason)
}

func TestCall_TimesOutWhenAckNeverArrives(t *testing.T) {
	sender := &fakeSender{}
	c := New(sender, 30*time.Millisecond, nil)

	start := time.Now()
	res := c.Call(context.Background(), types.CmdEndTurn, nil)
	require.False(t, res.OK)
	require.Equal(t, types.ReasonTimeout, res.Reason)
	require.Less(t, time.Since(start), time.Second)
}

func TestCall_DisconnectForceResolvesAllPending(t *testing.T) {
	sender := &fakeSender{}
	c := New(sender, 5*time.Second, nil)

	results := make(chan types.Result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			results <- c.Call(context.Background(), types.CmdRequestRoll, nil)
		}()
	}
	require.Eventually(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return len(sender.sent) == 2
	}, time.Second, 5*time.Millisecond)

	c.FailAll(types.ReasonDisconnected)

	for i := 0; i < 2; i++ {
		select {
		case res := <-results:
			require.False(t, res.OK)
			require.Equal(t, types.ReasonDisconnected, res.Reason)
		case <-time.After(time.Second):
			t.Fatal("pending call survived the disconnect")
		}
	}
}

func TestCall_SendFailureResolvesImmediately(t *testing.T) {
	sender := &fakeSender{fail: context.DeadlineExceeded}
	c := New(sender, time.Second, nil)

	res := c.Call(context.Background(), types.CmdPayFine, nil)
	require.False(t, res.OK)
	require.Equal(t, types.ReasonDisconnected, res.Reason)
}

func TestResolve_LateAckIsIgnored(t *testing.T) {
	sender := &fakeSender{}
	c := New(sender, 20*time.Millisecond, nil)

	res := c.Call(context.Background(), types.CmdEndTurn, nil)
	require.Equal(t, types.ReasonTimeout, res.Reason)

	// The ack shows up after the timeout already resolved the call.
	c.Resolve(types.ServerMessage{ReqID: sender.last(t).ReqID})
}
