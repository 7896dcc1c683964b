package repository

import (
	"context"

	"github.com/fyerfyer/pickup-extractor/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockExtractionRepository 基于testify/mock的审计仓储，供其他包的测试使用
type MockExtractionRepository struct {
	mock.Mock
}

// NewMockExtractionRepository 创建mock仓储，测试结束时校验期望调用
func NewMockExtractionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockExtractionRepository {
	m := &MockExtractionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create 实现ExtractionRepository接口
func (m *MockExtractionRepository) Create(ctx context.Context, record *models.Extraction) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// GetByID 实现ExtractionRepository接口
func (m *MockExtractionRepository) GetByID(ctx context.Context, id string) (*models.Extraction, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*models.Extraction)
	return record, args.Error(1)
}

// List 实现ExtractionRepository接口
func (m *MockExtractionRepository) List(ctx context.Context, offset, limit int, filter ExtractionFilter) ([]*models.Extraction, int64, error) {
	args := m.Called(ctx, offset, limit, filter)
	records, _ := args.Get(0).([]*models.Extraction)
	return records, args.Get(1).(int64), args.Error(2)
}
