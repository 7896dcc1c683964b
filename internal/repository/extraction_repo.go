package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fyerfyer/pickup-extractor/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// extractionRepository 审计记录仓储实现
type extractionRepository struct {
	db *gorm.DB // 数据库连接
}

// NewExtractionRepository 创建审计记录仓储实例
func NewExtractionRepository(db *gorm.DB) ExtractionRepository {
	return &extractionRepository{db: db}
}

// Create 创建审计记录，ID为空时自动生成
func (r *extractionRepository) Create(ctx context.Context, record *models.Extraction) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID 根据ID获取审计记录
func (r *extractionRepository) GetByID(ctx context.Context, id string) (*models.Extraction, error) {
	var record models.Extraction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrExtractionNotFound, id)
		}
		return nil, err
	}
	return &record, nil
}

// List 列出审计记录
func (r *extractionRepository) List(ctx context.Context, offset, limit int, filter ExtractionFilter) ([]*models.Extraction, int64, error) {
	var records []*models.Extraction
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Extraction{})

	if filter.TalentName != "" {
		query = query.Where("talent_name = ?", filter.TalentName)
	}
	if filter.DocumentName != "" {
		query = query.Where("document_name LIKE ?", "%"+filter.DocumentName+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
