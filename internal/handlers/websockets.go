package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"acsim/internal/models"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
	maxReplayBatch   = 8784   // one leap year of hours
)

// Message types sent on the replay stream.
const (
	wsTypeHours   = "hours"
	wsTypeSummary = "summary"
	wsTypeError   = "error"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsBatch is one slice of stored hours starting at Offset.
type wsBatch struct {
	Offset int              `json:"offset"`
	Hours  []models.RunHour `json:"hours"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins once the UI has a fixed host
}

// @Summary      Replay a comparison
// @Description  Streams the stored hours of a run in batches, one batch per interval, then a summary message.
// @Tags         simulations
// @Param        id           path   string  true   "run id"
// @Param        token        query  string  false  "bearer token when the header cannot be set"
// @Param        interval     query  string  false  "delay between batches, e.g. 200ms"
// @Param        interval_ms  query  int     false  "delay between batches in milliseconds"
// @Param        batch        query  int     false  "hours per message"
// @Router       /ws/simulations/{id} [get]
func (h *Handler) wsReplay(c *gin.Context) {
	run, ok := h.ownedRun(c)
	if !ok {
		return
	}
	interval := h.parseInterval(c)
	batch := h.parseBatch(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	hours, err := h.services.Runs.Hours(c.Request.Context(), run.ID)
	if err != nil {
		h.log.Errorw("ws_load_hours_failed", "run_id", run.ID, "err", err)
		_ = writeEnvelope(conn, wsEnvelope{Type: wsTypeError, Error: "failed to load hours"})
		return
	}

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	// first batch goes out immediately
	offset, err := sendBatch(conn, hours, 0, batch)
	if err != nil {
		h.log.Infow("ws_write_failed_initial", "err", err)
		return
	}

	for {
		if offset >= len(hours) {
			h.finishReplay(conn, run)
			return
		}
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "err", err)
				return
			}
		case <-ticker.C:
			if offset, err = sendBatch(conn, hours, offset, batch); err != nil {
				h.log.Infow("ws_write_failed", "err", err)
				return
			}
		}
	}
}

// sendBatch writes hours[offset:offset+size] and returns the next offset.
func sendBatch(conn *websocket.Conn, hours []models.RunHour, offset, size int) (int, error) {
	end := min(offset+size, len(hours))
	if err := writeEnvelope(conn, wsEnvelope{
		Type: wsTypeHours,
		Data: wsBatch{Offset: offset, Hours: hours[offset:end]},
	}); err != nil {
		return offset, err
	}
	return end, nil
}

func (h *Handler) finishReplay(conn *websocket.Conn, run models.Run) {
	if err := writeEnvelope(conn, wsEnvelope{Type: wsTypeSummary, Data: run.Summary()}); err != nil {
		h.log.Infow("ws_write_failed_summary", "err", err)
		return
	}
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay complete"),
		time.Now().Add(writeWait),
	)
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// parseBatch reads ?batch=N in [1, maxReplayBatch], defaulting to the configured size.
func (h *Handler) parseBatch(c *gin.Context) int {
	if s := c.Query("batch"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= maxReplayBatch {
			return v
		}
	}
	return h.cfg.ReplayBatch
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Infow("ws_read_closed", "err", err)
			return
		}
	}
}
