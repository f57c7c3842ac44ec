package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"acsim/internal/models"
	"acsim/internal/service"
)

// accepted query time layouts, tried in order
var queryTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", dateLayout}

const dateLayout = "2006-01-02"

// @Summary      List run events
// @Description  Filter run events by time (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'), type and run. A date-only 'to' covers the whole day.
// @Tags         logs
// @Produce      json
// @Param        from    query     string  false  "Start of range"  example(2025-08-01)
// @Param        to      query     string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Param        type    query     string  false  "Event type"  Enums(RUN_COMPLETED,RUN_FAILED,NARRATIVE_STORED,NARRATIVE_FAILED)
// @Param        run_id  query     string  false  "Only events of this run"
// @Success      200     {object}  map[string]interface{}  "count, events"
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	f, err := parseLogFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f.RunID = strings.TrimSpace(c.Query("run_id"))
	h.listEvents(c, f)
}

// @Summary  Events of one comparison
// @Tags     simulations
// @Produce  json
// @Param    id    path      string  true   "run id"
// @Param    type  query     string  false  "Event type"  Enums(RUN_COMPLETED,RUN_FAILED,NARRATIVE_STORED,NARRATIVE_FAILED)
// @Success  200   {object}  map[string]interface{}  "count, events"
// @Failure  404   {object}  map[string]string
// @Router   /api/v1/simulations/{id}/events [get]
// @Security BearerAuth
func (h *Handler) getSimulationEvents(c *gin.Context) {
	run, ok := h.ownedRun(c)
	if !ok {
		return
	}
	f, err := parseLogFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f.RunID = run.ID
	h.listEvents(c, f)
}

func (h *Handler) listEvents(c *gin.Context, f service.LogFilter) {
	events, err := h.services.EventLog.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, "logs_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// parseLogFilter reads from, to and type. Unknown event types are rejected
// so a typo does not read as an empty log.
func parseLogFilter(c *gin.Context) (service.LogFilter, error) {
	var (
		f   service.LogFilter
		err error
	)
	if f.From, err = queryTime(c, "from", false); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "to", true); err != nil {
		return f, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, fmt.Errorf("'from' must be <= 'to'")
	}

	if typ := strings.ToUpper(strings.TrimSpace(c.Query("type"))); typ != "" {
		if !models.IsEventType(typ) {
			return f, fmt.Errorf("unknown event type %q; use one of %s", typ, strings.Join(models.EventTypes(), ", "))
		}
		f.Type = typ
	}
	return f, nil
}

// queryTime parses an optional time parameter in UTC. With endOfDay, a
// date-only value means the last instant of that day.
func queryTime(c *gin.Context, key string, endOfDay bool) (time.Time, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range queryTimeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t = t.UTC()
		if endOfDay && layout == dateLayout {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid '%s' time %q; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD", key, s)
}
