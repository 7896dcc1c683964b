package repository

import (
	"context"

	"github.com/fyerfyer/pickup-extractor/internal/models"
)

// ExtractionFilter 审计记录查询条件
type ExtractionFilter struct {
	TalentName   string                  // 按配音演员名精确匹配
	DocumentName string                  // 按文档名模糊匹配
	Status       models.ExtractionStatus // 按状态过滤
}

// ExtractionRepository 提取审计记录仓储接口
type ExtractionRepository interface {
	// Create 创建审计记录
	Create(ctx context.Context, record *models.Extraction) error

	// GetByID 根据ID获取审计记录
	GetByID(ctx context.Context, id string) (*models.Extraction, error)

	// List 列出审计记录，按创建时间倒序，支持分页和筛选
	List(ctx context.Context, offset, limit int, filter ExtractionFilter) ([]*models.Extraction, int64, error)
}
