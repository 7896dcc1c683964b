package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fyerfyer/pickup-extractor/internal/cache"
	"github.com/fyerfyer/pickup-extractor/internal/models"
	"github.com/fyerfyer/pickup-extractor/internal/pickup"
	"github.com/fyerfyer/pickup-extractor/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ErrAuditDisabled 未配置审计仓储
var ErrAuditDisabled = errors.New("extraction audit log is disabled")

// ExtractionService 标注提取服务
// 在提取器外层提供结果缓存、审计记录和耗时日志
type ExtractionService struct {
	extractor *pickup.Extractor               // 提取器
	cache     cache.Cache                     // 结果缓存，可为空
	cacheTTL  time.Duration                   // 缓存有效期
	repo      repository.ExtractionRepository // 审计仓储，可为空
	logger    *logrus.Logger                  // 日志记录器
}

// ExtractionOption 提取服务配置选项
type ExtractionOption func(*ExtractionService)

// WithCache 启用结果缓存
func WithCache(c cache.Cache, ttl time.Duration) ExtractionOption {
	return func(s *ExtractionService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithRepository 启用审计记录
func WithRepository(repo repository.ExtractionRepository) ExtractionOption {
	return func(s *ExtractionService) {
		s.repo = repo
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) ExtractionOption {
	return func(s *ExtractionService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewExtractionService 创建提取服务
func NewExtractionService(extractor *pickup.Extractor, opts ...ExtractionOption) *ExtractionService {
	if extractor == nil {
		extractor = pickup.NewExtractor()
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &ExtractionService{
		extractor: extractor,
		cacheTTL:  time.Hour,
		logger:    discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cachedResult 缓存中保存的内容，不含调用方透传字段
type cachedResult struct {
	Pickups []pickup.Annotation `json:"pickups"`
	Stats   pickup.Stats        `json:"stats"`
}

// Extract 提取文档中的标注
func (s *ExtractionService) Extract(ctx context.Context, doc pickup.Document) (*pickup.Result, error) {
	start := time.Now()

	result, cacheHit, err := s.extract(ctx, doc)
	elapsed := time.Since(start)

	fields := logrus.Fields{
		"document_name":   doc.DocumentName,
		"talent_name":     doc.TalentName,
		"processing_time": elapsed.String(),
		"cache_hit":       cacheHit,
	}
	if err != nil {
		s.logger.WithFields(fields).WithError(err).Warn("Pickup extraction failed")
	} else {
		fields["pickups"] = len(result.Pickups)
		s.logger.WithFields(fields).Info("Total processing time")
	}

	s.audit(ctx, doc, result, cacheHit, err, elapsed)
	return result, err
}

func (s *ExtractionService) extract(ctx context.Context, doc pickup.Document) (*pickup.Result, bool, error) {
	if err := s.extractor.Validate(doc); err != nil {
		return nil, false, err
	}

	if s.cache == nil {
		result, err := s.extractor.Extract(doc)
		return result, false, err
	}

	key, err := resultKey(doc)
	if err != nil {
		return nil, false, pickup.NewExtractionError("failed to encode segments: %v", err)
	}

	if result, ok := s.lookup(ctx, key, doc); ok {
		return result, true, nil
	}

	result, err := s.extractor.Extract(doc)
	if err != nil {
		return nil, false, err
	}
	s.store(ctx, key, result)
	return result, false, nil
}

// resultKey 根据纯文本和片段列表生成缓存键，透传字段不参与
func resultKey(doc pickup.Document) (string, error) {
	segments, err := json.Marshal(doc.FormattedText)
	if err != nil {
		return "", err
	}
	return cache.ContentKey("pickups", []byte(doc.PlainText), segments), nil
}

func (s *ExtractionService) lookup(ctx context.Context, key string, doc pickup.Document) (*pickup.Result, bool) {
	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read pickup cache")
		return nil, false
	}
	if !found {
		return nil, false
	}

	var cached cachedResult
	if err := json.Unmarshal([]byte(value), &cached); err != nil {
		s.logger.WithError(err).Warn("Discarding unreadable cached pickups")
		return nil, false
	}
	if cached.Pickups == nil {
		cached.Pickups = []pickup.Annotation{}
	}

	return &pickup.Result{
		DocumentName: doc.DocumentName,
		TalentName:   doc.TalentName,
		Pickups:      cached.Pickups,
		Stats:        cached.Stats,
	}, true
}

func (s *ExtractionService) store(ctx context.Context, key string, result *pickup.Result) {
	data, err := json.Marshal(cachedResult{Pickups: result.Pickups, Stats: result.Stats})
	if err != nil {
		s.logger.WithError(err).Warn("Failed to encode pickups for cache")
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to write pickup cache")
	}
}

// audit 写入一条审计记录，失败只记录日志
func (s *ExtractionService) audit(ctx context.Context, doc pickup.Document, result *pickup.Result, cacheHit bool, extractErr error, elapsed time.Duration) {
	if s.repo == nil {
		return
	}

	record := &models.Extraction{
		DocumentName: doc.DocumentName,
		TalentName:   doc.TalentName,
		Status:       models.ExtractionSucceeded,
		TextLength:   len([]rune(doc.PlainText)),
		SegmentCount: len(doc.FormattedText),
		CacheHit:     cacheHit,
		DurationMs:   elapsed.Milliseconds(),
	}

	switch {
	case errors.Is(extractErr, pickup.ErrMissingContent):
		record.Status = models.ExtractionRejected
		record.Error = extractErr.Error()
	case extractErr != nil:
		record.Status = models.ExtractionFailed
		record.Error = extractErr.Error()
	}

	if result != nil {
		record.BracketCount = result.Stats.BracketCount
		record.FormattedCount = result.Stats.FormattedCount
		record.DuplicateCount = result.Stats.DuplicateCount
		record.SkippedSegments = result.Stats.SkippedSegments
		record.PickupCount = len(result.Pickups)
		if counts, err := json.Marshal(result.CountByType()); err == nil {
			record.TypeCounts = datatypes.JSON(counts)
		}
	}

	if err := s.repo.Create(context.WithoutCancel(ctx), record); err != nil {
		s.logger.WithError(err).WithField("document_name", doc.DocumentName).
			Error("Failed to write extraction audit record")
	}
}

// ListExtractions 分页列出审计记录
func (s *ExtractionService) ListExtractions(ctx context.Context, offset, limit int, filter repository.ExtractionFilter) ([]*models.Extraction, int64, error) {
	if s.repo == nil {
		return nil, 0, ErrAuditDisabled
	}
	records, total, err := s.repo.List(ctx, offset, limit, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list extractions: %w", err)
	}
	return records, total, nil
}

// GetExtraction 获取一条审计记录
func (s *ExtractionService) GetExtraction(ctx context.Context, id string) (*models.Extraction, error) {
	if s.repo == nil {
		return nil, ErrAuditDisabled
	}
	return s.repo.GetByID(ctx, id)
}

// AuditEnabled 是否启用审计记录
func (s *ExtractionService) AuditEnabled() bool {
	return s.repo != nil
}
