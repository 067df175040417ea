package taskqueue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Queue 定义任务队列的接口
// 负责任务的入队、获取状态和结果等操作
type Queue interface {
	// Enqueue 将任务加入队列
	Enqueue(ctx context.Context, taskType TaskType, payload interface{}) (string, error)

	// GetTask 获取任务信息
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// WaitForTask 等待任务结束并返回任务
	// timeout为0表示不设置超时
	WaitForTask(ctx context.Context, taskID string, timeout time.Duration) (*Task, error)

	// UpdateTaskStatus 更新任务状态和结果
	UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus, result interface{}, errorMsg string) error

	// NotifyTaskUpdate 通知任务状态已更新
	NotifyTaskUpdate(ctx context.Context, taskID string) error

	// Close 关闭队列连接
	Close() error
}

// Handler 任务处理器接口
type Handler interface {
	// ProcessTask 处理任务，返回的结果保存到任务中
	ProcessTask(ctx context.Context, task *Task) (interface{}, error)
}

// HandlerFunc 函数形式的Handler
type HandlerFunc func(ctx context.Context, task *Task) (interface{}, error)

// ProcessTask 实现Handler接口
func (f HandlerFunc) ProcessTask(ctx context.Context, task *Task) (interface{}, error) {
	return f(ctx, task)
}

// Worker 工作者接口
// 负责运行一组Handler来处理队列中的任务
type Worker interface {
	// RegisterHandler 注册任务处理器
	RegisterHandler(taskType TaskType, handler Handler)

	// Start 启动工作者，开始处理任务
	Start() error

	// Stop 停止工作者
	Stop()
}

// Config 队列配置
type Config struct {
	RedisAddr     string         // Redis地址
	RedisPassword string         // Redis密码
	RedisDB       int            // Redis数据库
	Concurrency   int            // 并发处理任务数
	RetryLimit    int            // 最大重试次数
	RetryDelay    time.Duration  // 重试延迟
	TaskTimeout   time.Duration  // 单个任务的处理超时
	Queues        map[string]int // 队列名称到优先级的映射
	Logger        *logrus.Logger // 日志记录器，为空时使用默认JSON日志
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RedisAddr:   "localhost:6379",
		RedisDB:     0,
		Concurrency: 4,
		RetryLimit:  3,
		RetryDelay:  time.Minute,
		TaskTimeout: 10 * time.Minute,
		Queues: map[string]int{
			"default": 1,
		},
	}
}

// TaskInfo 表示任务的元信息
// 用于传递给客户端的简化任务信息
type TaskInfo struct {
	ID          string          `json:"id"`               // 任务唯一标识符
	Type        TaskType        `json:"type"`             // 任务类型
	Status      TaskStatus      `json:"status"`           // 任务状态
	Error       string          `json:"error,omitempty"`  // 错误信息
	Result      json.RawMessage `json:"result,omitempty"` // 任务结果
	CreatedAt   time.Time       `json:"created_at"`       // 创建时间
	StartedAt   *time.Time      `json:"started_at"`       // 开始处理时间
	CompletedAt *time.Time      `json:"completed_at"`     // 完成时间
	Attempts    int             `json:"attempts"`         // 尝试次数
}

// NewTaskInfo 从Task创建TaskInfo
func NewTaskInfo(task *Task) *TaskInfo {
	info := &TaskInfo{
		ID:          task.ID,
		Type:        task.Type,
		Status:      task.Status,
		Error:       task.Error,
		CreatedAt:   task.CreatedAt,
		StartedAt:   task.StartedAt,
		CompletedAt: task.CompletedAt,
		Attempts:    task.Attempts,
	}
	if task.Status == StatusCompleted {
		info.Result = task.Result
	}
	return info
}

// ErrTaskNotFound 任务未找到错误
var ErrTaskNotFound = TaskError("task not found")

// ErrTaskTimeout 任务超时错误
var ErrTaskTimeout = TaskError("task timed out")

// ErrInvalidPayload 无效的任务载荷错误
var ErrInvalidPayload = TaskError("invalid task payload")

// TaskError 任务错误类型
type TaskError string

// Error 实现error接口
func (e TaskError) Error() string {
	return string(e)
}

// MarshalPayload 将任务载荷序列化为JSON
func MarshalPayload(payload interface{}) (json.RawMessage, error) {
	if payload == nil {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(payload)
}

// UnmarshalPayload 将JSON反序列化为任务载荷
func UnmarshalPayload(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return ErrInvalidPayload
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ErrInvalidPayload
	}
	return nil
}
