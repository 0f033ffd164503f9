package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"liquid-ca/internal/core"
	"liquid-ca/internal/errs"
)

const maxBodyBytes = 1 << 16

type handlers struct {
	driver *Driver
	log    *slog.Logger
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.WrapWarn(err, "decode request body")
	}
	return nil
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.driver.Snapshot())
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.driver.Stats())
}

type paramsResponse struct {
	Groups   []core.ParameterGroup   `json:"groups"`
	Controls []core.ParameterControl `json:"controls"`
}

func (h *handlers) params(w http.ResponseWriter, r *http.Request) {
	snap, controls := h.driver.Parameters()
	writeJSON(w, paramsResponse{Groups: snap.Groups, Controls: controls})
}

type setParamRequest struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

func (h *handlers) setParam(w http.ResponseWriter, r *http.Request) {
	var req setParamRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.driver.SetParameter(req.Key, req.Value); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.params(w, r)
}

func (h *handlers) paint(w http.ResponseWriter, r *http.Request) {
	var req PaintRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.driver.Paint(req); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.driver.Stats())
}

type resetRequest struct {
	Seed int64 `json:"seed"`
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, h.log, err)
			return
		}
	}
	writeJSON(w, h.driver.Reset(req.Seed))
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

func (h *handlers) pause(w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.driver.SetPaused(req.Paused)
	w.WriteHeader(http.StatusNoContent)
}

type stepRequest struct {
	Ticks int `json:"ticks"`
}

const maxStepTicks = 10000

func (h *handlers) step(w http.ResponseWriter, r *http.Request) {
	req := stepRequest{Ticks: 1}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, h.log, err)
			return
		}
	}
	if req.Ticks < 1 || req.Ticks > maxStepTicks {
		writeError(w, h.log, errs.Warnf("ticks must be within [1,%d]", maxStepTicks))
		return
	}
	h.driver.Advance(req.Ticks)
	writeJSON(w, h.driver.Stats())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1 << 14,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// stream pushes snapshots to a websocket client. Clients may send
// PaintRequest messages back over the same connection.
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", slog.Any("err", err))
		return
	}
	defer conn.Close()

	updates, cancel := h.driver.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go h.readPaints(conn, closed)

	if err := writeSnapshot(conn, h.driver.Snapshot()); err != nil {
		return
	}
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case <-h.driver.stop:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			return
		case snap := <-updates:
			if err := writeSnapshot(conn, snap); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *handlers) readPaints(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(maxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var req PaintRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read", slog.Any("err", err))
			}
			return
		}
		if err := h.driver.Paint(req); err != nil {
			h.log.Debug("websocket paint rejected", slog.Any("err", err))
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(snap)
}
