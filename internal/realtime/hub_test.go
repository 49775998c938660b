package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := uuid.New().String()

	clientA := hub.NewSSEClient(channel)
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventSearchProgress, Data: map[string]any{"percent": 10}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventSearchDone})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventSearchProgress {
		t.Fatalf("first event: want=%s got=%s", SSEEventSearchProgress, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventSearchDone {
		t.Fatalf("second event: want=%s got=%s", SSEEventSearchDone, got.Event)
	}

	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close=%d", n)
	}

	clientB := hub.NewSSEClient(channel)
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventTurnDone})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventTurnDone {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventTurnDone, got.Event)
	}
}

func TestSSEHubCloseRacesBroadcast(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		c := hub.NewSSEClient("s")
		hub.AddChannel(c, "s")
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.Broadcast(SSEMessage{Channel: "s", Event: SSEEventSearchProgress})
			}
		}()
		go func() {
			defer wg.Done()
			hub.CloseClient(c)
			hub.CloseClient(c)
		}()
	}
	wg.Wait()
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	c := hub.NewSSEClient("s")
	hub.AddChannel(c, "s")
	for i := 0; i < outboundBuffer+5; i++ {
		hub.Broadcast(SSEMessage{Channel: "s", Event: SSEEventSearchProgress})
	}
	if len(c.Outbound) != outboundBuffer {
		t.Fatalf("buffered=%d want %d", len(c.Outbound), outboundBuffer)
	}
}

func TestSSEHubServeHTTPWritesEvents(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	c := hub.NewSSEClient("s")
	hub.AddChannel(c, "s")
	hub.Broadcast(SSEMessage{Channel: "s", Event: SSEEventTurnDone, Data: map[string]any{"degraded": false}})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, c)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "event: turn.done\ndata: ") || !strings.Contains(body, `"degraded":false`) {
		t.Fatalf("unexpected stream body: %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type=%q", ct)
	}
}

func TestRecorderEvents(t *testing.T) {
	var r Recorder
	r.Emit(context.Background(), SSEMessage{Channel: "a", Event: SSEEventSearchDone})
	r.Emit(context.Background(), SSEMessage{Channel: "b", Event: SSEEventTurnDone})
	if got := r.Events("a"); len(got) != 1 || got[0] != SSEEventSearchDone {
		t.Fatalf("events=%v", got)
	}
	if len(r.Messages()) != 2 {
		t.Fatalf("messages=%d", len(r.Messages()))
	}
}

func TestSSEHubCloseAll(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	a := hub.NewSSEClient("a")
	b := hub.NewSSEClient("b")
	hub.AddChannel(a, "a")
	hub.AddChannel(b, "b")
	hub.AddChannel(b, "shared")

	hub.CloseAll()

	for _, c := range []*SSEClient{a, b} {
		if _, ok := <-c.Outbound; ok {
			t.Fatalf("client %s still open", c.SessionID)
		}
	}
	if hub.Subscribers("shared") != 0 {
		t.Fatalf("subscriptions left after CloseAll")
	}
}

func TestFanoutSkipsNil(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Fanout{a, nil, b}.Emit(context.Background(), SSEMessage{Channel: "c", Event: SSEEventTurnDone})
	if len(a.Events("c")) != 1 || len(b.Events("c")) != 1 {
		t.Fatalf("fanout delivered %v / %v", a.Events("c"), b.Events("c"))
	}
}
