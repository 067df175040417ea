package model

import (
	"encoding/json"
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

// ErrorBody 兼容接口使用的错误响应
type ErrorBody struct {
	Error string `json:"error"`
}

// NewErrorBody 创建兼容格式的错误响应
func NewErrorBody(message string) ErrorBody {
	return ErrorBody{Error: message}
}

// ProcessInfoResponse 批处理接口说明
type ProcessInfoResponse struct {
	Message     string `json:"message"`
	Endpoint    string `json:"endpoint"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

// SaveSummaryResponse 保存摘要响应
type SaveSummaryResponse struct {
	ReportID  string `json:"pdf_id"`     // 报告ID
	SummaryID string `json:"summary_id"` // 摘要ID
}

// SummaryResponse 获取摘要响应
type SummaryResponse struct {
	Summary json.RawMessage `json:"summary"` // 保存的批处理结果
}

// AsyncSubmitResponse 异步批处理提交响应
type AsyncSubmitResponse struct {
	TaskID string `json:"task_id"` // 任务ID
	Status string `json:"status"`  // 任务状态
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status            string            `json:"status"`             // 服务状态
	DatabaseConnected bool              `json:"database_connected"` // 数据库是否可用
	QueueEnabled      bool              `json:"queue_enabled"`      // 是否启用异步处理
	Endpoints         map[string]string `json:"endpoints"`          // 可用接口
}
