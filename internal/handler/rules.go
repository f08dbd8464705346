package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradelog/internal/service"
)

type RuleHandler struct {
	Rules *service.RuleService
}

func (h *RuleHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/rules")
	g.GET("", h.list)
	g.POST("", h.create)
}

// @Summary List the rule catalog
// @Tags rules
// @Success 200 {object} apiResponse
// @Router /api/v1/rules [get]
func (h *RuleHandler) list(c *gin.Context) {
	items, err := h.Rules.ListRules(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, map[string]any{"total": len(items)})
}

// @Summary Create a rule
// @Tags rules
// @Accept json
// @Param body body service.RuleInput true "rule"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/rules [post]
func (h *RuleHandler) create(c *gin.Context) {
	var in service.RuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid json body", nil)
		return
	}
	rule, err := h.Rules.CreateRule(c.Request.Context(), in)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, rule, nil)
}
