package handler

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"tradelog/internal/models"
	"tradelog/internal/progress"
	"tradelog/internal/service"
	"tradelog/internal/stats"
)

type StatsHandler struct {
	Journal      *service.JournalService
	Achievements *service.AchievementService
	Settings     progress.Settings
}

func (h *StatsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/stats")
	g.GET("/daily", h.daily)
	g.GET("/activity", h.activity)
	g.GET("/progress", h.progress)
	g.GET("/snapshot", h.snapshot)
}

type dailyRow struct {
	Date string `json:"date"`
	models.DailyStat
}

// @Summary Daily completions and violations
// @Tags stats
// @Param from query string false "first date, YYYY-MM-DD"
// @Param to query string false "last date, YYYY-MM-DD"
// @Success 200 {object} apiResponse
// @Router /api/v1/stats/daily [get]
func (h *StatsHandler) daily(c *gin.Context) {
	items, err := h.Journal.DailyStats(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	rows := make([]dailyRow, 0, len(items))
	for date, st := range items {
		if (from != "" && date < from) || (to != "" && date > to) {
			continue
		}
		rows = append(rows, dailyRow{Date: date, DailyStat: st})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	Ok(c, rows, map[string]any{"total": len(rows)})
}

// @Summary Recent activity log, newest first
// @Tags stats
// @Param limit query int false "max entries" default(100)
// @Success 200 {object} apiResponse
// @Router /api/v1/stats/activity [get]
func (h *StatsHandler) activity(c *gin.Context) {
	items, err := h.Journal.ActivityLog(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	limit := intQuery(c, "limit", 100)
	out := make([]models.ActivityLogEntry, 0, len(items))
	for i := len(items) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, items[i])
	}
	Ok(c, out, map[string]any{"total": len(items)})
}

// @Summary Completion counter against the target
// @Tags stats
// @Success 200 {object} apiResponse
// @Router /api/v1/stats/progress [get]
func (h *StatsHandler) progress(c *gin.Context) {
	view, err := h.Journal.ProgressView(c.Request.Context(), h.Settings)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, view, nil)
}

// @Summary Aggregate statistics per timeframe
// @Tags stats
// @Param timeframe query string false "daily, weekly, monthly or all_time"
// @Success 200 {object} apiResponse
// @Router /api/v1/stats/snapshot [get]
func (h *StatsHandler) snapshot(c *gin.Context) {
	snap, err := h.Achievements.Snapshot(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	if tf := stats.Timeframe(strings.TrimSpace(c.Query("timeframe"))); tf != "" {
		if !tf.Valid() {
			Error(c, http.StatusBadRequest, "invalid timeframe", nil)
			return
		}
		Ok(c, snap.For(tf), map[string]any{"timeframe": tf})
		return
	}
	Ok(c, snap, nil)
}
