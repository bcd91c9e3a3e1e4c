package server

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "crowdwatch/docs"
)

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())
	pprof.Register(router)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "ok",
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	apiV1 := router.Group("/api/v1")
	s.SetUpApiV1Router(apiV1)

	return router
}

func (s *Server) SetUpApiV1Router(apiV1 *gin.RouterGroup) {
	apiV1.POST("/login", s.handleLogin)

	apiV1.GET("/videos", s.handleListVideos)
	apiV1.GET("/video/:video_id/zones", s.handleListZones)

	apiV1.POST("/analysis/:video_id/start", s.handleStartAnalysis)
	apiV1.POST("/analysis/:video_id/stop", s.handleStopAnalysis)
	apiV1.GET("/analysis/:video_id/progress", s.handleGetProgress)

	apiV1.GET("/sessions", s.handleListSessions)
	apiV1.GET("/session/:video_id", s.handleGetSession)
}
