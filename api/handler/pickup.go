package handler

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fyerfyer/pickup-extractor/api/middleware"
	"github.com/fyerfyer/pickup-extractor/api/model"
	"github.com/fyerfyer/pickup-extractor/internal/document"
	"github.com/fyerfyer/pickup-extractor/internal/pickup"
	"github.com/fyerfyer/pickup-extractor/internal/report"
	"github.com/fyerfyer/pickup-extractor/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RootMessage 根路径的存活提示
const RootMessage = "Pickup Extractor Server is running!"

// PickupHandler 处理标注提取相关的请求
type PickupHandler struct {
	service  *services.ExtractionService // 提取服务
	renderer *report.Renderer            // 标注清单渲染器
	logger   *logrus.Logger              // 日志记录器
}

// NewPickupHandler 创建标注提取处理器
func NewPickupHandler(service *services.ExtractionService, renderer *report.Renderer) *PickupHandler {
	if renderer == nil {
		renderer = report.NewRenderer()
	}
	return &PickupHandler{
		service:  service,
		renderer: renderer,
		logger:   middleware.GetLogger(),
	}
}

// Root 存活检查
// GET /
func (h *PickupHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, RootMessage)
}

// Process 从文档中提取标注
// POST /process
func (h *PickupHandler) Process(c *gin.Context) {
	result, ok := h.extract(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, model.NewProcessResponse(result))
}

// Report 提取标注并生成标注清单
// POST /process/report?format=markdown|html|pdf
func (h *PickupHandler) Report(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Unsupported report format", err.Error()))
		return
	}

	result, ok := h.extract(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, result, format); err != nil {
		h.logger.WithFields(logrus.Fields{
			"format":        format,
			"document_name": result.DocumentName,
		}).WithError(err).Error("Failed to render pickup sheet")
		middleware.HandleError(c, middleware.NewInternalError(middleware.MsgProcessFailed, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+reportFilename(result.DocumentName, format)+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Upload 上传Markdown或纯文本脚本并提取标注
// POST /process/upload
func (h *PickupHandler) Upload(c *gin.Context) {
	var req model.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			middleware.FieldTraceID: middleware.GetTraceID(c),
		}).WithError(err).Warn("Invalid upload request")
		middleware.HandleError(c, middleware.FromBindError(err))
		return
	}

	parser, err := document.ParserFactory(req.File.Filename)
	if err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Unsupported document type", err.Error()))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"filename": req.File.Filename,
		}).WithError(err).Error("Failed to open uploaded file")
		middleware.HandleError(c, middleware.NewInternalError(middleware.MsgProcessFailed, err.Error()))
		return
	}
	defer file.Close()

	name := req.DocumentName
	if name == "" {
		name = filepath.Base(req.File.Filename)
	}
	doc, err := parser.ParseReader(file, name)
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError(middleware.MsgProcessFailed, err.Error()))
		return
	}
	doc.TalentName = req.TalentName

	result, err := h.service.Extract(c.Request.Context(), doc)
	if err != nil {
		middleware.HandleError(c, middleware.FromPickupError(err))
		return
	}
	c.JSON(http.StatusOK, model.NewProcessResponse(result))
}

// extract 解析请求体并调用提取服务，失败时记录错误并返回false
func (h *PickupHandler) extract(c *gin.Context) (*pickup.Result, bool) {
	var req model.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			middleware.FieldTraceID: middleware.GetTraceID(c),
		}).WithError(err).Warn("Invalid process request")
		middleware.HandleError(c, middleware.FromBindError(err))
		return nil, false
	}

	result, err := h.service.Extract(c.Request.Context(), req.ToDocument())
	if err != nil {
		middleware.HandleError(c, middleware.FromPickupError(err))
		return nil, false
	}
	return result, true
}

// reportFilename 根据文档名生成清单文件名
func reportFilename(documentName string, format report.Format) string {
	base := strings.TrimSuffix(filepath.Base(documentName), filepath.Ext(documentName))
	base = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." || base == "/" {
		base = "pickups"
	}
	return base + "-pickups" + format.Extension()
}
