package observer

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lcnr/shitty-bot-game/internal/game"
	"github.com/lcnr/shitty-bot-game/internal/movement"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServerBroadcastsTicks(t *testing.T) {
	s := NewServer(log.New(io.Discard, "", 0))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return s.Clients() == 1 })

	rec := game.TickRecord{
		Level: "push",
		Tick:  3,
		Frames: []movement.Frame{{
			Robot: 0,
			Events: []movement.Event{
				{Entity: 1, Outcome: movement.Move, From: world.Pos(3, 1), To: world.Pos(4, 1)},
			},
		}},
	}
	if err := s.Record(rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var got game.TickRecord
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("message is not a tick record: %v", err)
	}
	if got.Tick != 3 || got.Level != "push" {
		t.Errorf("received tick %d of %q, want 3 of push", got.Tick, got.Level)
	}
	if ev := got.Frames[0].Events[0]; ev.To != world.Pos(4, 1) {
		t.Errorf("event = %+v, want a move to (4,1)", ev)
	}

	conn.Close()
	waitFor(t, func() bool { return s.Clients() == 0 })
}

func TestRecordWithoutClients(t *testing.T) {
	s := NewServer(log.New(io.Discard, "", 0))
	if err := s.Record(game.TickRecord{Tick: 1}); err != nil {
		t.Errorf("Record() error = %v", err)
	}
	if s.Dropped() != 0 {
		t.Errorf("Dropped() = %d, want 0", s.Dropped())
	}
}

func TestHealthz(t *testing.T) {
	s := NewServer(log.New(io.Discard, "", 0))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:5000", true},
		{"[::1]:5000", true},
		{"192.168.1.4:5000", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		if got := isLoopbackRemote(tt.addr); got != tt.want {
			t.Errorf("isLoopbackRemote(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
