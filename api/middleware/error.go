package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/fyerfyer/pickup-extractor/api/model"
	"github.com/fyerfyer/pickup-extractor/internal/pickup"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 定义应用中的错误类型常量
const (
	ErrorTypeValidation      = "VALIDATION_ERROR"  // 输入验证错误
	ErrorTypeNotFound        = "NOT_FOUND_ERROR"   // 资源不存在错误
	ErrorTypePayloadTooLarge = "PAYLOAD_TOO_LARGE" // 请求体过大
	ErrorTypeInternal        = "INTERNAL_ERROR"    // 内部服务器错误
)

// 处理文档失败时返回给客户端的固定消息
const (
	MsgMissingContent  = "Missing document content"
	MsgProcessFailed   = "Failed to process document"
	MsgInvalidBody     = "Invalid request body"
	MsgPayloadTooLarge = "Request body too large"
)

// AppError 应用错误结构体
type AppError struct {
	Type    string // 错误类型
	Message string // 错误消息
	Details string // 详细错误信息
	Code    int    // HTTP状态码
}

// Error 实现error接口的方法
func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewValidationError 创建输入验证错误
func NewValidationError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusBadRequest,
	}
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(message string) AppError {
	return AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

// NewPayloadTooLargeError 创建请求体过大错误
func NewPayloadTooLargeError(limit int64) AppError {
	return AppError{
		Type:    ErrorTypePayloadTooLarge,
		Message: MsgPayloadTooLarge,
		Details: fmt.Sprintf("limit is %d bytes", limit),
		Code:    http.StatusRequestEntityTooLarge,
	}
}

// NewInternalError 创建内部服务器错误
func NewInternalError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusInternalServerError,
	}
}

// FromBindError 将请求体解析错误转换为应用错误
func FromBindError(err error) AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return NewPayloadTooLargeError(tooLarge.Limit)
	}
	return NewValidationError(MsgInvalidBody, err.Error())
}

// FromPickupError 将提取错误转换为应用错误
func FromPickupError(err error) AppError {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var extractErr *pickup.ExtractionError
	switch {
	case errors.Is(err, pickup.ErrMissingContent):
		return NewValidationError(MsgMissingContent)
	case errors.As(err, &extractErr):
		return NewInternalError(MsgProcessFailed, extractErr.Detail)
	default:
		return NewInternalError(MsgProcessFailed, err.Error())
	}
}

// 错误响应格式
const (
	errorShapeKey  = "ErrorShape"
	errorShapeFlat = "flat"
)

// FlatErrors 将当前路由的错误渲染为 {"error": ..., "details": ...}
// 文档处理接口沿用这种格式，/api 下的接口使用统一的Response结构
func FlatErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(errorShapeKey, errorShapeFlat)
		c.Next()
	}
}

// ErrorMiddleware 统一错误处理中间件
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 捕获 panic
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(logrus.Fields{
					FieldError:   err,
					"stack":      string(debug.Stack()),
					FieldPath:    c.Request.URL.Path,
					FieldTraceID: GetTraceID(c),
				}).Error("Panic recovered in API request")

				appErr := NewInternalError("An unexpected error occurred")
				if c.GetString(errorShapeKey) == errorShapeFlat {
					appErr.Message = MsgProcessFailed
				}
				// 在开发环境中返回详细错误
				if gin.Mode() == gin.DebugMode {
					appErr.Details = fmt.Sprintf("panic: %v", err)
				}
				writeError(c, appErr)
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// 取最后一个错误进行处理
		err := c.Errors.Last().Err

		var appErr AppError
		var appErrPtr *AppError
		switch {
		case errors.As(err, &appErr):
		case errors.As(err, &appErrPtr) && appErrPtr != nil:
			appErr = *appErrPtr
		default:
			appErr = NewInternalError("Internal server error")
			// 在开发环境下显示具体错误信息
			if gin.Mode() == gin.DebugMode {
				appErr.Details = err.Error()
			}
		}

		fields := logrus.Fields{
			"error_type": appErr.Type,
			FieldTraceID: GetTraceID(c),
			FieldPath:    c.Request.URL.Path,
		}
		if appErr.Details != "" {
			fields["details"] = appErr.Details
		}
		if appErr.Code >= http.StatusInternalServerError {
			log.WithFields(fields).Error(appErr.Message)
		} else {
			log.WithFields(fields).Warn(appErr.Message)
		}

		writeError(c, appErr)
		c.Abort()
	}
}

// writeError 按路由要求的格式写出错误
func writeError(c *gin.Context, e AppError) {
	if c.Writer.Written() {
		return
	}
	traceID := GetTraceID(c)

	if c.GetString(errorShapeKey) == errorShapeFlat {
		resp := model.ErrorResponse{Error: e.Message, TraceID: traceID}
		// 输入错误不回显细节，与处理失败时的格式保持一致
		if e.Code >= http.StatusInternalServerError || e.Type == ErrorTypePayloadTooLarge {
			resp.Details = e.Details
		}
		c.JSON(e.Code, resp)
		return
	}

	errResp := model.NewErrorResponse(e.Code, e.Message)
	errResp.TraceID = traceID
	c.JSON(e.Code, errResp)
}

// HandleError 在处理器中使用的错误处理辅助函数
func HandleError(c *gin.Context, err error) {
	// 添加错误到上下文中
	_ = c.Error(err)
}
