package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/fyerfyer/cersai-digest/api/model"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 错误类型
const (
	ErrorTypeValidation  = "VALIDATION_ERROR"  // 请求参数错误
	ErrorTypeNotFound    = "NOT_FOUND_ERROR"   // 报告或任务不存在
	ErrorTypeBusiness    = "BUSINESS_ERROR"    // 当前配置下不支持的操作
	ErrorTypeUnavailable = "UNAVAILABLE_ERROR" // 依赖服务不可用
	ErrorTypeInternal    = "INTERNAL_ERROR"    // 内部服务器错误
)

// AppError 应用错误，Cause保留原始错误以便errors.Is判断
type AppError struct {
	Type    string
	Message string
	Details string
	Code    int
	Cause   error
}

func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e AppError) Unwrap() error {
	return e.Cause
}

// WithCause 附加原始错误
func (e AppError) WithCause(err error) AppError {
	e.Cause = err
	if e.Details == "" && err != nil {
		e.Details = err.Error()
	}
	return e
}

func newAppError(typ string, code int, message string, details []string) AppError {
	return AppError{
		Type:    typ,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    code,
	}
}

// NewValidationError 创建参数校验错误
func NewValidationError(message string, details ...string) AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(message string) AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, nil)
}

// NewBusinessError 创建业务错误
func NewBusinessError(message string, details ...string) AppError {
	return newAppError(ErrorTypeBusiness, http.StatusBadRequest, message, details)
}

// NewUnavailableError 创建依赖不可用错误，如任务队列或Redis断开
func NewUnavailableError(message string, details ...string) AppError {
	return newAppError(ErrorTypeUnavailable, http.StatusServiceUnavailable, message, details)
}

// NewInternalError 创建内部错误
func NewInternalError(message string, details ...string) AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// ErrorMiddleware 统一错误处理中间件
// 处理器通过HandleError登记错误，这里负责记录日志并写出响应
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"error":    r,
					"stack":    string(debug.Stack()),
					"path":     c.Request.URL.Path,
					"trace_id": traceIDOf(c),
				}).Error("Panic recovered in API request")

				appErr := NewInternalError("An unexpected error occurred")
				if gin.Mode() == gin.DebugMode {
					appErr.Message = fmt.Sprintf("Panic: %v", r)
				}
				writeAppError(c, appErr)
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeAppError(c, toAppError(c.Errors.Last().Err))
		c.Abort()
	}
}

// toAppError 把任意错误转换为AppError，未知错误按内部错误处理
func toAppError(err error) AppError {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var ptr *AppError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr
	}

	appErr = NewInternalError("Internal server error").WithCause(err)
	if gin.Mode() == gin.DebugMode {
		appErr.Message = err.Error()
	}
	return appErr
}

func writeAppError(c *gin.Context, e AppError) {
	traceID := traceIDOf(c)

	entry := log.WithFields(logrus.Fields{
		"error_type": e.Type,
		"trace_id":   traceID,
		"path":       c.Request.URL.Path,
	})
	if e.Details != "" {
		entry = entry.WithField("details", e.Details)
	}
	// 客户端错误只记为警告
	if e.Code >= http.StatusInternalServerError {
		entry.Error(e.Message)
	} else {
		entry.Warn(e.Message)
	}

	resp := model.NewErrorResponse(e.Code, e.Message)
	resp.TraceID = traceID
	c.JSON(e.Code, resp)
}

func traceIDOf(c *gin.Context) string {
	if v, ok := c.Get("TraceID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// HandleError 在处理器中登记错误
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
}
