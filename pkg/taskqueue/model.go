package taskqueue

import (
	"encoding/json"
	"time"
)

// TaskType 任务类型
type TaskType string

const (
	// TaskBatchProcess 批量处理已归档的CERSAI报告
	TaskBatchProcess TaskType = "batch_process"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	// StatusPending 等待处理
	StatusPending TaskStatus = "pending"
	// StatusProcessing 处理中
	StatusProcessing TaskStatus = "processing"
	// StatusCompleted 已完成
	StatusCompleted TaskStatus = "completed"
	// StatusFailed 处理失败
	StatusFailed TaskStatus = "failed"
)

// Done 任务是否已结束
func (s TaskStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task 任务基础结构
type Task struct {
	ID          string          `json:"id"`           // 任务唯一标识符
	Type        TaskType        `json:"type"`         // 任务类型
	Status      TaskStatus      `json:"status"`       // 任务状态
	Payload     json.RawMessage `json:"payload"`      // 任务载荷数据
	Result      json.RawMessage `json:"result"`       // 任务结果数据
	Error       string          `json:"error"`        // 错误信息（如果处理失败）
	CreatedAt   time.Time       `json:"created_at"`   // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`   // 更新时间
	StartedAt   *time.Time      `json:"started_at"`   // 开始处理时间
	CompletedAt *time.Time      `json:"completed_at"` // 完成时间
	Attempts    int             `json:"attempts"`     // 尝试次数
	MaxRetries  int             `json:"max_retries"`  // 最大重试次数
}

// BatchPayload 批处理任务载荷
// 文件已归档到存储中，按提交顺序排列
type BatchPayload struct {
	FileIDs        []string        `json:"file_ids"`                  // 归档文件ID
	FileNames      []string        `json:"file_names"`                // 原始文件名，与FileIDs一一对应
	CompanyDetails json.RawMessage `json:"company_details,omitempty"` // 操作员提交的公司信息
}

// BatchResult 批处理任务结果
type BatchResult struct {
	ReportID  string `json:"report_id"`  // 保存的报告ID
	SummaryID string `json:"summary_id"` // 保存的摘要ID
	Assets    int    `json:"assets"`     // 条目总数
	Failed    int    `json:"failed"`     // 失败的条目数
}
