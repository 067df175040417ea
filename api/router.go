package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fyerfyer/cersai-digest/api/handler"
	"github.com/fyerfyer/cersai-digest/api/middleware"
	"github.com/fyerfyer/cersai-digest/api/model"
	"github.com/fyerfyer/cersai-digest/internal/services"
)

// SetupRouter 设置API路由
// taskHandler为nil时不注册任务查询接口
func SetupRouter(
	summaryService *services.SummaryService,
	summaryHandler *handler.SummaryHandler,
	taskHandler *handler.TaskHandler,
) *gin.Engine {
	router := gin.New()

	// 应用全局中间件
	router.Use(middleware.ErrorMiddleware())
	router.Use(middleware.Logger())
	router.Use(middleware.SetTraceID())
	router.Use(Cors())

	// 在调试模式下记录请求体和响应体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
		router.Use(middleware.ResponseLogger())
	}

	api := router.Group("/api")
	{
		// 批处理 - GET/POST /api/process
		api.GET("/process", summaryHandler.ProcessInfo)
		api.POST("/process", summaryHandler.Process)
		api.POST("/process/async", summaryHandler.ProcessAsync)

		// 摘要 - POST /api/save_summary, GET /api/get_summary/:id
		api.POST("/save_summary", summaryHandler.SaveSummary)
		api.GET("/get_summary/:id", summaryHandler.GetSummary)

		// 导出 - GET /api/export/:id/:format
		api.GET("/export/:id/:format", summaryHandler.Export)

		if taskHandler != nil {
			api.GET("/tasks/:id", taskHandler.GetTaskStatus)
		}

		// 健康检查 - GET /api/health
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, model.HealthResponse{
				Status:            "healthy",
				DatabaseConnected: summaryService.Ping(c.Request.Context()),
				QueueEnabled:      summaryService.AsyncEnabled(),
				Endpoints: map[string]string{
					"process":       "/api/process",
					"process_async": "/api/process/async",
					"save_summary":  "/api/save_summary",
					"get_summary":   "/api/get_summary/<pdf_id>",
					"export":        "/api/export/<pdf_id>/<format>",
					"tasks":         "/api/tasks/<task_id>",
				},
			})
		})
	}

	return router
}

// Cors 跨域资源共享中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Trace-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
