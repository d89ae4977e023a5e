package daemon

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/runnerr0/protrackr/internal/storage"
	"github.com/runnerr0/protrackr/internal/tracking"
)

// tabEvent is one browser event driving the session state machine. The
// extension delegates all state transitions here so they stay serialized
// in one place.
type tabEvent struct {
	Type     string `json:"type" binding:"required"`
	TabID    int    `json:"tabId"`
	WindowID int    `json:"windowId"`
	URL      string `json:"url"`
	Title    string `json:"title"`
}

// postSession ingests an already-completed session.
func (s *Server) postSession(c *gin.Context) {
	var session tracking.Session
	if err := c.ShouldBindJSON(&session); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.manager.RecordCompletedSession(c.Request.Context(), session)
	if err != nil {
		if errors.Is(err, storage.ErrMalformedInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"recorded": true})
}

// postEvent feeds one tab/window/activity event into the tracker.
func (s *Server) postEvent(c *gin.Context) {
	var ev tabEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	switch ev.Type {
	case "tab_activated", "focus_gained":
		s.tracker.TabActivated(ctx, ev.TabID, ev.WindowID, ev.URL, ev.Title)
	case "tab_updated":
		s.tracker.TabUpdated(ctx, ev.TabID, ev.URL, ev.Title)
	case "focus_lost":
		s.tracker.WindowFocusLost(ctx)
	case "activity":
		s.tracker.Touch()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type " + ev.Type})
		return
	}

	c.JSON(http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) getSummaryToday(c *gin.Context) {
	s.renderSummary(c, time.Now().Format("2006-01-02"))
}

func (s *Server) getSummary(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	s.renderSummary(c, date)
}

func (s *Server) renderSummary(c *gin.Context, date string) {
	bucket, err := s.manager.ReadSummary(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "summary": bucket})
}

// getHistory returns records in [start, end] epoch-ms; end defaults to now.
func (s *Server) getHistory(c *gin.Context) {
	start, err := strconv.ParseInt(c.DefaultQuery("start", "0"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be epoch milliseconds"})
		return
	}
	end, err := strconv.ParseInt(c.DefaultQuery("end", strconv.FormatInt(time.Now().UnixMilli(), 10)), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be epoch milliseconds"})
		return
	}

	records, err := s.manager.ReadHistory(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (s *Server) getStatus(c *gin.Context) {
	stats, err := s.manager.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tracker": s.tracker.Snapshot(),
		"records": stats.TotalRecords,
	})
}

func (s *Server) postMaintenance(c *gin.Context) {
	if err := s.manager.RunMaintenance(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance": "done"})
}
