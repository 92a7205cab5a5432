package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/flowphys/frsolve/FR2D"
)

var log = logrus.New()

/*
	Monitor publishes the live integration state over websockets. Clients
	connect to ws://<addr>/state and receive one JSON message per
	completed step. A slow or broken client is dropped rather than
	allowed to stall the solver.
*/
type Monitor struct {
	addr     string
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewMonitor(addr string) *Monitor {
	return &Monitor{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]bool),
	}
}

// Start serves the websocket endpoint in the background.
func (m *Monitor) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", m.handleState)
	go func() {
		log.WithField("addr", m.addr).Info("monitor listening")
		if err := http.ListenAndServe(m.addr, mux); err != nil {
			log.WithError(err).Error("monitor server stopped")
		}
	}()
}

func (m *Monitor) handleState(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	m.mu.Lock()
	m.conns[conn] = true
	m.mu.Unlock()
	log.WithField("remote", conn.RemoteAddr().String()).Info("monitor client connected")

	// drain and discard client messages; closing ends the reader
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				m.drop(conn)
				return
			}
		}
	}()
}

func (m *Monitor) drop(conn *websocket.Conn) {
	m.mu.Lock()
	if m.conns[conn] {
		delete(m.conns, conn)
		conn.Close()
	}
	m.mu.Unlock()
}

type stateMsg struct {
	Step     int       `json:"step"`
	Time     float64   `json:"time"`
	DT       float64   `json:"dt"`
	Residual []float64 `json:"residual"`
}

// Publish broadcasts one integration state to every connected client.
func (m *Monitor) Publish(st FR2D.SimState) {
	msg := stateMsg{
		Step:     st.Step,
		Time:     st.Time,
		DT:       st.DT,
		Residual: st.Residual[:],
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.WithError(err).Error("state marshal failed")
		return
	}
	m.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(m.conns))
	for c := range m.conns {
		conns = append(conns, c)
	}
	m.mu.Unlock()
	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			log.WithError(err).Warn("monitor client dropped")
			m.drop(c)
		}
	}
}
