package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExtractionStatus 提取结果状态
type ExtractionStatus string

const (
	// ExtractionSucceeded 提取成功
	ExtractionSucceeded ExtractionStatus = "succeeded"
	// ExtractionRejected 请求缺少必要内容
	ExtractionRejected ExtractionStatus = "rejected"
	// ExtractionFailed 提取过程失败
	ExtractionFailed ExtractionStatus = "failed"
)

// Extraction 提取审计记录
// 只记录请求元信息和统计数据，不保存标注内容
type Extraction struct {
	ID              string           `gorm:"primaryKey;size:36"`     // 记录ID
	DocumentName    string           `gorm:"size:255;index"`         // 文档名
	TalentName      string           `gorm:"size:255;index"`         // 配音演员名
	Status          ExtractionStatus `gorm:"size:20;not null"`       // 结果状态
	Error           string           `gorm:"type:text"`              // 错误信息
	TextLength      int              `gorm:"not null;default:0"`     // 纯文本长度
	SegmentCount    int              `gorm:"not null;default:0"`     // 输入片段数
	BracketCount    int              `gorm:"not null;default:0"`     // 方括号标注数
	FormattedCount  int              `gorm:"not null;default:0"`     // 格式化标注数
	DuplicateCount  int              `gorm:"not null;default:0"`     // 去重丢弃数
	SkippedSegments int              `gorm:"not null;default:0"`     // 被跳过的异常片段数
	PickupCount     int              `gorm:"not null;default:0"`     // 最终标注数
	TypeCounts      datatypes.JSON   `gorm:"type:json"`              // 各类型标注数
	CacheHit        bool             `gorm:"not null;default:false"` // 是否命中缓存
	DurationMs      int64            `gorm:"not null;default:0"`     // 处理耗时（毫秒）
	CreatedAt       time.Time        `gorm:"not null;index"`         // 创建时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (e *Extraction) BeforeCreate(tx *gorm.DB) (err error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return nil
}

// TableName 明确指定表名
func (Extraction) TableName() string {
	return "extractions"
}
