package model

import (
	"mime/multipart"

	"github.com/fyerfyer/pickup-extractor/internal/pickup"
)

// 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// GetOffset 获取分页偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ProcessRequest 标注提取请求
// 字段是否缺失由提取器校验，便于返回统一的错误消息
type ProcessRequest struct {
	DocumentName  string           `json:"documentName"`  // 文档名，原样返回
	PlainText     string           `json:"plainText"`     // 文档纯文本
	FormattedText []pickup.Segment `json:"formattedText"` // 格式化片段列表
	TalentName    string           `json:"talentName"`    // 配音演员名，原样返回
}

// ToDocument 转换为提取器输入
func (r *ProcessRequest) ToDocument() pickup.Document {
	return pickup.Document{
		DocumentName:  r.DocumentName,
		TalentName:    r.TalentName,
		PlainText:     r.PlainText,
		FormattedText: r.FormattedText,
	}
}

// UploadRequest 脚本文件上传请求
type UploadRequest struct {
	File         *multipart.FileHeader `form:"file" binding:"required"` // Markdown或纯文本脚本
	TalentName   string                `form:"talentName"`              // 配音演员名，原样返回
	DocumentName string                `form:"documentName"`            // 文档名，为空时使用文件名
}

// ExtractionListRequest 审计记录列表请求
type ExtractionListRequest struct {
	PaginationRequest
	TalentName   string `form:"talent_name" binding:"omitempty,max=255"`                    // 配音演员名过滤
	DocumentName string `form:"document_name" binding:"omitempty,max=255"`                  // 文档名过滤
	Status       string `form:"status" binding:"omitempty,oneof=succeeded rejected failed"` // 状态过滤
}

// ExtractionGetRequest 审计记录查询请求
type ExtractionGetRequest struct {
	ID string `uri:"id" binding:"required"` // 记录ID
}
