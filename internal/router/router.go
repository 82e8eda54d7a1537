package router

import (
	"html/template"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/stuproj/projectshelf/docs"
	"github.com/stuproj/projectshelf/internal/config"
	"github.com/stuproj/projectshelf/internal/middleware"
	"github.com/stuproj/projectshelf/internal/modules/handler"
	"github.com/stuproj/projectshelf/internal/modules/serializer"
	"github.com/stuproj/projectshelf/internal/web"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config *config.Config
	Log    *zap.Logger
	// SessionStore backs the cookie flash store. It is nil when flash
	// messages live in redis.
	SessionStore sessions.Store
	// Metrics is nil when metrics are disabled.
	Metrics      *middleware.Metrics
	PageHandler  *handler.PageHandler
	AssetHandler *handler.AssetHandler
	APIHandler   *handler.APIHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}

	r.Use(middleware.ZapLogger(d.Log))

	r.SetHTMLTemplate(template.Must(web.Templates()))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// static
	r.GET("/style.css", d.AssetHandler.Stylesheet)
	r.GET("/script.js", d.AssetHandler.Script)
	r.GET("/uploads/:filename", d.AssetHandler.Upload)

	pages := r.Group("")
	{
		if d.SessionStore != nil {
			pages.Use(sessions.Sessions(d.Config.Session.Name, d.SessionStore))
		}

		pages.GET("/", d.PageHandler.Home)
		pages.GET("/projects", d.PageHandler.ListProjects)
		pages.GET("/projects/export.xlsx", d.PageHandler.ExportXLSX)
		pages.GET("/history", d.PageHandler.History)
		pages.POST("/add_project", d.PageHandler.AddProject)
		pages.POST("/delete/:id", d.PageHandler.DeleteProject)
	}

	api := r.Group("/api")
	{
		api.GET("/projects", d.APIHandler.ListProjects)
		api.GET("/projects/:id", d.APIHandler.GetProject)
		api.GET("/history", d.APIHandler.ListHistory)
	}

	r.NoRoute(d.PageHandler.NotFound)
	return r
}
