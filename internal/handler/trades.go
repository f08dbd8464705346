package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"tradelog/internal/blob"
	"tradelog/internal/compliance"
	"tradelog/internal/models"
	"tradelog/internal/service"
)

const maxSubmitBody = 32 << 20

type TradeHandler struct {
	Journal *service.JournalService
}

func (h *TradeHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/trades")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.delete)
	g.GET("/:id/attachments/:attachment_id", h.attachment)
	g.DELETE("/:id/attachments/:attachment_id", h.removeAttachment)
}

// @Summary List trades, newest first
// @Tags trades
// @Param limit query int false "page size" default(50)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} apiResponse
// @Router /api/v1/trades [get]
func (h *TradeHandler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	items, total, err := h.Journal.ListTrades(c.Request.Context(), limit, offset)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, int64(total)))
}

// @Summary Submit a trade
// @Description Numeric fields may be sent as JSON numbers or strings. Attachments are data URLs or base64.
// @Tags trades
// @Accept json
// @Param body body submitTradeRequest true "trade draft"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/trades [post]
func (h *TradeHandler) create(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSubmitBody))
	if err != nil || !gjson.ValidBytes(body) {
		Error(c, http.StatusBadRequest, "invalid json body", nil)
		return
	}
	req, err := parseSubmit(body)
	if err != nil {
		serviceError(c, err)
		return
	}
	res, err := h.Journal.SubmitTrade(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, res, nil)
}

// submitTradeRequest documents the accepted body.
type submitTradeRequest struct {
	Date        string                        `json:"date"`
	Symbol      string                        `json:"symbol"`
	Direction   string                        `json:"direction"`
	EntryPrice  string                        `json:"entryPrice"`
	ExitPrice   string                        `json:"exitPrice"`
	Size        string                        `json:"size"`
	TargetPrice string                        `json:"targetPrice"`
	StopPrice   string                        `json:"stopPrice"`
	Emotion     string                        `json:"emotion"`
	Notes       string                        `json:"notes"`
	Tags        []string                      `json:"tags"`
	Rules       []compliance.AppliedRuleInput `json:"rules"`
	Attachments []string                      `json:"attachments"`
}

// parseSubmit reads the body field by field so numbers and numeric strings
// are both accepted; the evaluator does the actual validation.
func parseSubmit(body []byte) (service.SubmitRequest, error) {
	doc := gjson.ParseBytes(body)
	text := func(path string) string {
		v := doc.Get(path)
		if v.Type == gjson.Number {
			return v.Raw
		}
		return v.String()
	}
	draft := compliance.Draft{
		Date:        text("date"),
		Symbol:      text("symbol"),
		Direction:   text("direction"),
		EntryPrice:  text("entryPrice"),
		ExitPrice:   text("exitPrice"),
		Size:        text("size"),
		TargetPrice: text("targetPrice"),
		StopPrice:   text("stopPrice"),
		Emotion:     text("emotion"),
		Notes:       text("notes"),
	}
	for _, tag := range doc.Get("tags").Array() {
		draft.Tags = append(draft.Tags, tag.String())
	}
	var rules []compliance.AppliedRuleInput
	for _, r := range doc.Get("rules").Array() {
		rules = append(rules, compliance.AppliedRuleInput{
			RuleID:  r.Get("ruleId").String(),
			Text:    r.Get("text").String(),
			Outcome: models.Outcome(strings.TrimSpace(r.Get("outcome").String())),
		})
	}
	var attachments [][]byte
	for _, a := range doc.Get("attachments").Array() {
		data, err := blob.DecodeInline(a.String())
		if err != nil {
			return service.SubmitRequest{}, &compliance.ValidationError{Field: "attachments", Reason: err.Error()}
		}
		attachments = append(attachments, data)
	}
	return service.SubmitRequest{Draft: draft, Rules: rules, Attachments: attachments}, nil
}

// @Summary Get one trade
// @Tags trades
// @Param id path int true "trade id"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/trades/{id} [get]
func (h *TradeHandler) get(c *gin.Context) {
	id := int64Param(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	item, err := h.Journal.GetTrade(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete a trade and its attachments
// @Tags trades
// @Param id path int true "trade id"
// @Param confirm query bool true "must be true"
// @Success 200 {object} apiResponse
// @Failure 428 {object} apiResponse
// @Router /api/v1/trades/{id} [delete]
func (h *TradeHandler) delete(c *gin.Context) {
	id := int64Param(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	if err := h.Journal.DeleteTrade(c.Request.Context(), id, boolQueryDefault(c, "confirm", false)); err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, gin.H{"deleted": id}, nil)
}

// @Summary Download an attachment
// @Tags trades
// @Produce octet-stream
// @Param id path int true "trade id"
// @Param attachment_id path int true "attachment id"
// @Success 200 {file} binary
// @Router /api/v1/trades/{id}/attachments/{attachment_id} [get]
func (h *TradeHandler) attachment(c *gin.Context) {
	id, attID := int64Param(c, "id"), int64Param(c, "attachment_id")
	if id == 0 || attID == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	data, err := h.Journal.Attachment(c.Request.Context(), id, attID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// @Summary Remove an attachment from a trade
// @Tags trades
// @Param id path int true "trade id"
// @Param attachment_id path int true "attachment id"
// @Success 200 {object} apiResponse
// @Router /api/v1/trades/{id}/attachments/{attachment_id} [delete]
func (h *TradeHandler) removeAttachment(c *gin.Context) {
	id, attID := int64Param(c, "id"), int64Param(c, "attachment_id")
	if id == 0 || attID == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	if err := h.Journal.RemoveAttachment(c.Request.Context(), id, attID); err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, gin.H{"removed": attID}, nil)
}
