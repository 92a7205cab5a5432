package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/flowphys/frsolve/FR2D"
)

func TestMonitorPublish(t *testing.T) {
	m := NewMonitor("")
	srv := httptest.NewServer(http.HandlerFunc(m.handleState))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/state"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer conn.Close()

	// wait for the connection to register before broadcasting
	deadline := time.Now().Add(time.Second)
	for {
		m.mu.Lock()
		n := len(m.conns)
		m.mu.Unlock()
		if n == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	st := FR2D.SimState{Step: 7, Time: 0.35, DT: 0.05}
	st.Residual[0] = 1.5e-3
	m.Publish(st)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	assert.NoError(t, err)
	var msg stateMsg
	assert.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, 7, msg.Step)
	assert.InDelta(t, 0.35, msg.Time, 1.e-14)
	assert.InDelta(t, 1.5e-3, msg.Residual[0], 1.e-14)
}
