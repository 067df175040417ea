package model

import (
	"encoding/json"
)

// ProcessForm 批处理上传表单中的字段名
const (
	FormFiles          = "files[]"        // 上传文件字段
	FormCompanyDetails = "companyDetails" // 公司信息字段，JSON字符串
)

// SaveSummaryRequest 保存摘要请求
// 字段校验在处理器中完成，错误响应需要保持固定格式
type SaveSummaryRequest struct {
	FileName       string          `json:"filename"`                 // 源文件名，多个文件以逗号分隔
	Summary        json.RawMessage `json:"summary"`                  // 批处理结果JSON
	CompanyDetails json.RawMessage `json:"companyDetails,omitempty"` // 操作员提交的公司信息
}

// SummaryRequest 按报告ID获取摘要的请求
type SummaryRequest struct {
	ID string `uri:"id" binding:"required"` // 报告ID
}

// ExportRequest 导出请求
type ExportRequest struct {
	ID     string `uri:"id" binding:"required"`                                   // 报告ID
	Format string `uri:"format" binding:"required,oneof=html excel pdf markdown"` // 导出格式
}

// TaskStatusRequest 任务状态查询请求
type TaskStatusRequest struct {
	ID   string `uri:"id" binding:"required"`                   // 任务ID
	Wait int    `form:"wait" binding:"omitempty,min=0,max=300"` // 等待任务结束的秒数
}
