// Package observer streams simulated ticks to websocket subscribers.
package observer

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lcnr/shitty-bot-game/internal/game"
)

const (
	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

// Server fans tick records out to every connected websocket. It implements
// game.Recorder.
type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	clients map[uint64]chan []byte
	dropped atomic.Uint64
}

// NewServer creates an observer server logging to logger.
func NewServer(logger *log.Logger) *Server {
	return &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]chan []byte),
	}
}

// Handler routes /ws to the tick stream and /healthz to a liveness probe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.WSHandler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})
	return mux
}

// WSHandler upgrades loopback clients and streams every recorded tick to
// them as a JSON text message.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id := s.nextID.Add(1)
		out := make(chan []byte, clientBuffer)
		s.mu.Lock()
		s.clients[id] = out
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.clients, id)
			s.mu.Unlock()
		}()
		s.log.Printf("observer: client %d connected from %s", id, r.RemoteAddr)

		// Subscribers never send anything; reading only notices the close.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				s.log.Printf("observer: client %d disconnected", id)
				return
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					s.log.Printf("observer: client %d write: %v", id, err)
					return
				}
			}
		}
	}
}

// Record broadcasts one tick. Clients that fall behind miss ticks rather
// than stall the simulation.
func (s *Server) Record(rec game.TickRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, out := range s.clients {
		select {
		case out <- b:
		default:
			s.dropped.Add(1)
		}
	}
	return nil
}

// Clients returns the number of connected subscribers.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped returns how many messages were skipped for slow clients.
func (s *Server) Dropped() uint64 {
	return s.dropped.Load()
}

func isLoopbackRemote(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
