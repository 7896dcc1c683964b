package handler

import (
	"errors"
	"net/http"

	"github.com/fyerfyer/pickup-extractor/api/middleware"
	"github.com/fyerfyer/pickup-extractor/api/model"
	"github.com/fyerfyer/pickup-extractor/internal/models"
	"github.com/fyerfyer/pickup-extractor/internal/repository"
	"github.com/fyerfyer/pickup-extractor/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ExtractionHandler 处理提取审计记录查询
type ExtractionHandler struct {
	service *services.ExtractionService // 提取服务
	logger  *logrus.Logger              // 日志记录器
}

// NewExtractionHandler 创建审计记录处理器
func NewExtractionHandler(service *services.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{
		service: service,
		logger:  middleware.GetLogger(),
	}
}

// Health 健康检查
// GET /api/health
func (h *ExtractionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.HealthResponse{
		Status: "ok",
		Audit:  h.service.AuditEnabled(),
	}))
}

// ListExtractions 分页列出审计记录
// GET /api/extractions
func (h *ExtractionHandler) ListExtractions(c *gin.Context) {
	var req model.ExtractionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid query parameters", err.Error()))
		return
	}

	filter := repository.ExtractionFilter{
		TalentName:   req.TalentName,
		DocumentName: req.DocumentName,
		Status:       models.ExtractionStatus(req.Status),
	}

	records, total, err := h.service.ListExtractions(c.Request.Context(), req.GetOffset(), req.GetPageSize(), filter)
	if err != nil {
		middleware.HandleError(c, h.auditError(err))
		return
	}

	infos := make([]model.ExtractionInfo, 0, len(records))
	for _, record := range records {
		infos = append(infos, model.NewExtractionInfo(record))
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ExtractionListResponse{
		Total:       total,
		Page:        req.GetPage(),
		PageSize:    req.GetPageSize(),
		Extractions: infos,
	}))
}

// GetExtraction 获取一条审计记录
// GET /api/extractions/:id
func (h *ExtractionHandler) GetExtraction(c *gin.Context) {
	var req model.ExtractionGetRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid extraction id", err.Error()))
		return
	}

	record, err := h.service.GetExtraction(c.Request.Context(), req.ID)
	if err != nil {
		middleware.HandleError(c, h.auditError(err))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewExtractionInfo(record)))
}

// auditError 将审计查询错误转换为应用错误
func (h *ExtractionHandler) auditError(err error) middleware.AppError {
	switch {
	case errors.Is(err, services.ErrAuditDisabled):
		return middleware.NewNotFoundError("Extraction audit log is disabled")
	case errors.Is(err, models.ErrExtractionNotFound):
		return middleware.NewNotFoundError("Extraction not found")
	default:
		h.logger.WithError(err).Error("Failed to query extraction audit log")
		return middleware.NewInternalError("Failed to query extractions")
	}
}
