package handler

import (
	"github.com/gin-gonic/gin"

	"tradelog/internal/service"
)

type AchievementHandler struct {
	Achievements *service.AchievementService
}

func (h *AchievementHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1")
	g.GET("/achievements", h.list)
	g.GET("/achievements/unlocked", h.unlocked)
	g.POST("/achievements/evaluate", h.evaluate)
	g.GET("/challenges/active", h.activeChallenges)
}

// @Summary Achievement catalog with unlock state and progress
// @Tags achievements
// @Success 200 {object} apiResponse
// @Router /api/v1/achievements [get]
func (h *AchievementHandler) list(c *gin.Context) {
	items, err := h.Achievements.List(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	unlocked := 0
	for _, it := range items {
		if it.Unlocked {
			unlocked++
		}
	}
	Ok(c, items, map[string]any{"total": len(items), "unlocked": unlocked})
}

// @Summary Unlocked achievements in unlock order
// @Tags achievements
// @Success 200 {object} apiResponse
// @Router /api/v1/achievements/unlocked [get]
func (h *AchievementHandler) unlocked(c *gin.Context) {
	items, err := h.Achievements.Unlocked(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, map[string]any{"total": len(items)})
}

// @Summary Evaluate achievements against current stats
// @Tags achievements
// @Success 200 {object} apiResponse
// @Router /api/v1/achievements/evaluate [post]
func (h *AchievementHandler) evaluate(c *gin.Context) {
	ev, err := h.Achievements.Evaluate(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, ev, nil)
}

// @Summary Challenges whose window contains now
// @Tags achievements
// @Success 200 {object} apiResponse
// @Router /api/v1/challenges/active [get]
func (h *AchievementHandler) activeChallenges(c *gin.Context) {
	items, err := h.Achievements.ActiveChallenges(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, map[string]any{"total": len(items)})
}
