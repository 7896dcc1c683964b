package api

import (
	"strings"

	"github.com/fyerfyer/pickup-extractor/api/handler"
	"github.com/fyerfyer/pickup-extractor/api/middleware"
	"github.com/gin-gonic/gin"
)

// RouterOptions 路由配置
type RouterOptions struct {
	BodyLimit  int64  // 请求体大小上限，0表示不限制
	BasePath   string // 额外挂载的路由前缀，如 /.netlify/functions/app
	EnableCORS bool   // 是否允许跨域请求
}

// SetupRouter 设置API路由
// 所有路由挂载在根路径，配置了BasePath时在该前缀下再挂载一份
func SetupRouter(
	pickupHandler *handler.PickupHandler,
	extractionHandler *handler.ExtractionHandler,
	opts RouterOptions,
) *gin.Engine {
	router := gin.New()

	// 应用全局中间件
	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	if opts.EnableCORS {
		router.Use(Cors())
	}

	registerRoutes(router, pickupHandler, extractionHandler, opts)

	if base := strings.TrimRight(opts.BasePath, "/"); base != "" {
		registerRoutes(router.Group(base), pickupHandler, extractionHandler, opts)
	}

	return router
}

// registerRoutes 在给定的路由分组上注册全部接口
func registerRoutes(
	r gin.IRouter,
	pickupHandler *handler.PickupHandler,
	extractionHandler *handler.ExtractionHandler,
	opts RouterOptions,
) {
	// 存活检查 - GET /
	r.GET("/", pickupHandler.Root)

	// 标注提取，错误沿用 {"error": ...} 格式
	processGroup := r.Group("/process")
	processGroup.Use(middleware.FlatErrors())
	processGroup.Use(middleware.BodyLimit(opts.BodyLimit))
	if gin.Mode() == gin.DebugMode {
		processGroup.Use(middleware.RequestBodyLog())
	}
	{
		// 提取标注 - POST /process
		processGroup.POST("", pickupHandler.Process)

		// 生成标注清单 - POST /process/report
		processGroup.POST("/report", pickupHandler.Report)

		// 上传脚本文件 - POST /process/upload
		processGroup.POST("/upload", pickupHandler.Upload)
	}

	api := r.Group("/api")
	{
		// 健康检查 - GET /api/health
		api.GET("/health", extractionHandler.Health)

		// 审计记录
		extractionGroup := api.Group("/extractions")
		{
			// 列表 - GET /api/extractions
			extractionGroup.GET("", extractionHandler.ListExtractions)

			// 详情 - GET /api/extractions/:id
			extractionGroup.GET("/:id", extractionHandler.GetExtraction)
		}
	}
}

// Cors 跨域资源共享中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
