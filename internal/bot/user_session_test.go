package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

// mockMessageHandler captures execution order and can simulate blocking/panics
type mockMessageHandler struct {
	mu           sync.Mutex
	executionLog []string
	blockCh      chan struct{} // Close this to unblock processing
	waitCh       chan struct{} // Closed when processing starts (for synchronization)
}

func newMockMessageHandler() *mockMessageHandler {
	return &mockMessageHandler{
		executionLog: make([]string, 0),
		blockCh:      make(chan struct{}),
		waitCh:       make(chan struct{}),
	}
}

func (h *mockMessageHandler) HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage) {
	text := ""
	if msg.Message != nil {
		text = msg.Message.Text
	}

	h.mu.Lock()
	h.executionLog = append(h.executionLog, text)
	h.mu.Unlock()

	if text == "PANIC" {
		panic("simulated worker panic")
	}

	if text == "BLOCK" {
		if h.waitCh != nil {
			close(h.waitCh) // Signal we are running
		}
		<-h.blockCh // Wait until allowed to proceed
	}
}

func (h *mockMessageHandler) getLog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]string, len(h.executionLog))
	copy(result, h.executionLog)
	return result
}

func textMessage(text string) SessionMessage {
	return SessionMessage{Type: "text", Message: &tgbotapi.Message{Text: text}}
}

// createTestSession creates a session with a mock handler for testing
func createTestSession(id int64) (*UserSession, *mockMessageHandler) {
	ctx, cancel := context.WithCancel(context.Background())
	handler := newMockMessageHandler()
	// Unblock by default for simple tests
	close(handler.blockCh)

	s := &UserSession{
		userId:  id,
		inbox:   make(chan SessionMessage, 10),
		ctx:     ctx,
		cancel:  cancel,
		handler: handler,
	}
	s.StartWorker()
	return s, handler
}

func TestWorker_SequentialProcessing(t *testing.T) {
	session, handler := createTestSession(123)
	defer session.Stop()

	// Send 3 messages asynchronously
	for _, txt := range []string{"msg1", "msg2", "msg3"} {
		session.Send(textMessage(txt))
	}

	// Use SendSync as a barrier to ensure previous async messages are done
	session.SendSync(textMessage("barrier"))

	log := handler.getLog()

	// Verify exact order preserved
	assert.Equal(t, []string{"msg1", "msg2", "msg3", "barrier"}, log)
}

func TestWorker_PanicRecovery(t *testing.T) {
	session, handler := createTestSession(123)
	defer session.Stop()

	// Send message that panics
	session.SendSync(textMessage("PANIC"))

	// Send normal message immediately after - worker should still be alive
	session.SendSync(textMessage("recovery"))

	log := handler.getLog()

	// Verify worker survived and processed both messages
	assert.Contains(t, log, "PANIC")
	assert.Contains(t, log, "recovery")
	assert.Equal(t, 2, len(log), "both messages should be logged")
}

func TestWorker_ConcurrentUsers(t *testing.T) {
	// Setup Session A (will be blocked)
	ctxA, cancelA := context.WithCancel(context.Background())
	handlerA := newMockMessageHandler()

	sessionA := &UserSession{
		userId:  1,
		inbox:   make(chan SessionMessage, 10),
		ctx:     ctxA,
		cancel:  cancelA,
		handler: handlerA,
	}
	sessionA.StartWorker()
	defer sessionA.Stop()

	// Setup Session B (fast, unblocked)
	sessionB, handlerB := createTestSession(2)
	defer sessionB.Stop()

	// Start blocking message on Session A (in goroutine since SendSync will block)
	go sessionA.SendSync(textMessage("BLOCK"))

	// Wait for A to start processing and get stuck
	select {
	case <-handlerA.waitCh:
		// A is now blocked in handler
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Session A did not start processing")
	}

	// Send to Session B - should process immediately despite A being blocked
	sessionB.SendSync(textMessage("fast"))

	// Verify B finished while A is still blocked
	logB := handlerB.getLog()
	assert.Contains(t, logB, "fast", "Session B should complete while A is blocked")

	// Verify A is still blocked
	logA := handlerA.getLog()
	assert.Equal(t, []string{"BLOCK"}, logA, "Session A should only have the blocking message")

	// Unblock A to allow cleanup
	close(handlerA.blockCh)
}

func TestWorker_GracefulShutdown_DrainsQueueWithoutDeadlock(t *testing.T) {
	// Create session but with a handler that we won't unblock
	ctx, cancel := context.WithCancel(context.Background())
	handler := newMockMessageHandler()

	session := &UserSession{
		userId:  999,
		inbox:   make(chan SessionMessage, 10),
		ctx:     ctx,
		cancel:  cancel,
		handler: handler,
	}
	session.StartWorker()

	// Queue up messages with Done channels (simulating SendSync callers waiting)
	for i := 0; i < 5; i++ {
		msg := textMessage("pending")
		msg.Done = make(chan struct{})
		session.inbox <- msg
	}

	// Stop should not deadlock - it should cancel and drain
	stopDone := make(chan struct{})
	go func() {
		session.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		// Success: Stop returned without deadlock
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - potential deadlock")
	}
}
