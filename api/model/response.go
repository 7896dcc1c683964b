package model

import (
	"encoding/json"
	"time"

	"github.com/fyerfyer/pickup-extractor/internal/models"
	"github.com/fyerfyer/pickup-extractor/internal/pickup"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// ErrorResponse 文档处理接口的错误响应
type ErrorResponse struct {
	Error   string `json:"error"`              // 错误消息
	Details string `json:"details,omitempty"`  // 详细错误信息
	TraceID string `json:"trace_id,omitempty"` // 调用链追踪ID
}

// ProcessSuccessMessage 提取成功时的固定消息
const ProcessSuccessMessage = "Pickups extracted successfully"

// ProcessResponse 标注提取响应
type ProcessResponse struct {
	Message      string              `json:"message"`                // 固定为成功消息
	Pickups      []pickup.Annotation `json:"pickups"`                // 标注列表，无结果时为空数组
	TalentName   string              `json:"talentName"`             // 原样返回的配音演员名
	DocumentName string              `json:"documentName,omitempty"` // 原样返回的文档名
}

// NewProcessResponse 根据提取结果创建响应
func NewProcessResponse(result *pickup.Result) *ProcessResponse {
	pickups := result.Pickups
	if pickups == nil {
		pickups = []pickup.Annotation{}
	}
	return &ProcessResponse{
		Message:      ProcessSuccessMessage,
		Pickups:      pickups,
		TalentName:   result.TalentName,
		DocumentName: result.DocumentName,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string `json:"status"`
	Audit  bool   `json:"audit"` // 是否启用审计记录
}

// ExtractionInfo 提取审计记录
type ExtractionInfo struct {
	ID              string          `json:"id"`
	DocumentName    string          `json:"document_name"`
	TalentName      string          `json:"talent_name"`
	Status          string          `json:"status"`
	Error           string          `json:"error,omitempty"`
	TextLength      int             `json:"text_length"`
	SegmentCount    int             `json:"segment_count"`
	BracketCount    int             `json:"bracket_count"`
	FormattedCount  int             `json:"formatted_count"`
	DuplicateCount  int             `json:"duplicate_count"`
	SkippedSegments int             `json:"skipped_segments"`
	PickupCount     int             `json:"pickup_count"`
	TypeCounts      json.RawMessage `json:"type_counts,omitempty"`
	CacheHit        bool            `json:"cache_hit"`
	DurationMs      int64           `json:"duration_ms"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewExtractionInfo 将审计记录转换为响应结构
func NewExtractionInfo(e *models.Extraction) ExtractionInfo {
	info := ExtractionInfo{
		ID:              e.ID,
		DocumentName:    e.DocumentName,
		TalentName:      e.TalentName,
		Status:          string(e.Status),
		Error:           e.Error,
		TextLength:      e.TextLength,
		SegmentCount:    e.SegmentCount,
		BracketCount:    e.BracketCount,
		FormattedCount:  e.FormattedCount,
		DuplicateCount:  e.DuplicateCount,
		SkippedSegments: e.SkippedSegments,
		PickupCount:     e.PickupCount,
		CacheHit:        e.CacheHit,
		DurationMs:      e.DurationMs,
		CreatedAt:       e.CreatedAt,
	}
	if len(e.TypeCounts) > 0 {
		info.TypeCounts = json.RawMessage(e.TypeCounts)
	}
	return info
}

// ExtractionListResponse 审计记录列表响应
type ExtractionListResponse struct {
	Total       int64            `json:"total"`       // 总数量
	Page        int              `json:"page"`        // 当前页码
	PageSize    int              `json:"page_size"`   // 每页大小
	Extractions []ExtractionInfo `json:"extractions"` // 记录列表
}
