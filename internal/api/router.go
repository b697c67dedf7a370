package api

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"

	"stakingfetcher/internal/middleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded HTML templates.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))
}

// NewRouter creates a Gin engine with every route registered.
//
// Middlewares: RequestID, RequestLogger, RecoveryMiddleware, and a
// fetchTimeout deadline on everything but the health probe.
func NewRouter(handler *Handler, fetchTimeout time.Duration) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(Templates())

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
	)

	router.GET("/healthz", Healthz)

	bounded := router.Group("/", middleware.Timeout(fetchTimeout))
	{
		// ─── HTML ─────────────────────────────────────
		bounded.GET("/", handler.Index)
		bounded.POST("/history", handler.SubmitForm)

		// ─── API v1 ───────────────────────────────────
		v1 := bounded.Group("/api/v1")
		v1.POST("/history", handler.GetHistory)
		v1.POST("/history.csv", handler.GetHistoryCSV)
		v1.POST("/history/stream", handler.StreamHistory)
	}

	return router
}
