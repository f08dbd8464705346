package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Trade Journal Service

Logs trades against a personal rule catalog and derives compliance, progress
and achievements.

## Routes

- GET /healthz
- GET /readyz
- GET /swagger/index.html
- GET /api/v1/trades
- POST /api/v1/trades
- GET /api/v1/trades/{id}
- DELETE /api/v1/trades/{id}?confirm=true
- GET /api/v1/trades/{id}/attachments/{attachment_id}
- DELETE /api/v1/trades/{id}/attachments/{attachment_id}
- GET /api/v1/rules
- POST /api/v1/rules
- GET /api/v1/stats/daily
- GET /api/v1/stats/activity
- GET /api/v1/stats/progress
- GET /api/v1/stats/snapshot
- GET /api/v1/achievements
- GET /api/v1/achievements/unlocked
- POST /api/v1/achievements/evaluate
- GET /api/v1/challenges/active
- GET /api/v1/events (websocket)

## Responses

Every JSON route answers with {"code":0,"message":"ok","data":...,"meta":...}.
Errors carry the HTTP status in code. Rejected drafts return 400 and nothing is stored.
Deleting a trade without confirm=true returns 428.

## Events

/api/v1/events pushes {"type":"data_changed","collections":[...]} after every write.
`)
	})
}
