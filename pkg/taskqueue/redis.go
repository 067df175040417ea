package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// 任务键前缀
	taskKeyPrefix = "task:"
	// 任务状态通知频道前缀
	taskChannelPrefix = "task_status:"
	// 默认任务过期时间（7天）
	defaultTaskExpiry = 7 * 24 * time.Hour
)

// RedisQueue Redis任务队列实现
// 任务数据以JSON保存在Redis中，asynq只传递任务ID
type RedisQueue struct {
	client      *asynq.Client  // 用于添加任务
	redisClient *redis.Client  // Redis客户端，用于存储任务数据
	cfg         *Config        // 队列配置
	logger      *logrus.Logger // 日志记录器
}

// NewRedisQueue 创建Redis任务队列实例
func NewRedisQueue(cfg *Config) (*RedisQueue, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return &RedisQueue{
		client:      asynq.NewClient(redisOpt(cfg)),
		redisClient: redisClient,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

func redisOpt(cfg *Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// Enqueue 将任务加入队列
func (q *RedisQueue) Enqueue(ctx context.Context, taskType TaskType, payload interface{}) (string, error) {
	taskID := uuid.New().String()

	payloadBytes, err := MarshalPayload(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	now := time.Now()
	task := &Task{
		ID:         taskID,
		Type:       taskType,
		Status:     StatusPending,
		Payload:    payloadBytes,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: q.cfg.RetryLimit,
	}

	if err := q.saveTask(ctx, task); err != nil {
		return "", fmt.Errorf("failed to save task to redis: %w", err)
	}

	opts := []asynq.Option{
		asynq.TaskID(taskID),
		asynq.MaxRetry(q.cfg.RetryLimit),
		asynq.Retention(defaultTaskExpiry),
	}
	if q.cfg.TaskTimeout > 0 {
		opts = append(opts, asynq.Timeout(q.cfg.TaskTimeout))
	}

	if _, err := q.client.EnqueueContext(ctx, asynq.NewTask(string(taskType), []byte(taskID)), opts...); err != nil {
		q.redisClient.Del(ctx, taskKeyPrefix+taskID)
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	q.logger.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": taskType,
	}).Info("Task enqueued successfully")

	return taskID, nil
}

// GetTask 获取任务信息
func (q *RedisQueue) GetTask(ctx context.Context, taskID string) (*Task, error) {
	data, err := q.redisClient.Get(ctx, taskKeyPrefix+taskID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task from redis: %w", err)
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task data: %w", err)
	}
	return &task, nil
}

// WaitForTask 等待任务结束
// 订阅状态通知，同时每秒轮询一次以防错过消息
func (q *RedisQueue) WaitForTask(ctx context.Context, taskID string, timeout time.Duration) (*Task, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	pubsub := q.redisClient.Subscribe(ctx, taskChannelPrefix+taskID)
	defer pubsub.Close()

	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status.Done() {
		return task, nil
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	updates := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return task, ErrTaskTimeout
		case <-updates:
		case <-ticker.C:
		}

		latest, err := q.GetTask(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return task, ErrTaskTimeout
			}
			return nil, err
		}
		task = latest
		if task.Status.Done() {
			return task, nil
		}
	}
}

// UpdateTaskStatus 更新任务状态
func (q *RedisQueue) UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus, result interface{}, errMsg string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	now := time.Now()
	task.Status = status
	task.UpdatedAt = now

	switch status {
	case StatusProcessing:
		task.Attempts++
		if task.StartedAt == nil {
			task.StartedAt = &now
		}
	case StatusCompleted, StatusFailed:
		task.CompletedAt = &now
	}

	if result != nil {
		resultBytes, err := MarshalPayload(result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		task.Result = resultBytes
	}
	task.Error = errMsg

	return q.saveTask(ctx, task)
}

// NotifyTaskUpdate 通知任务状态更新
func (q *RedisQueue) NotifyTaskUpdate(ctx context.Context, taskID string) error {
	return q.redisClient.Publish(ctx, taskChannelPrefix+taskID, "updated").Err()
}

// Ping 检查Redis连接
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.redisClient.Ping(ctx).Err()
}

// Close 关闭队列连接
func (q *RedisQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	return q.redisClient.Close()
}

// saveTask 将任务信息保存到Redis，设置7天过期
func (q *RedisQueue) saveTask(ctx context.Context, task *Task) error {
	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := q.redisClient.Set(ctx, taskKeyPrefix+task.ID, taskData, defaultTaskExpiry).Err(); err != nil {
		return fmt.Errorf("failed to save task data: %w", err)
	}
	return nil
}

// RedisWorker Redis工作者实现
type RedisWorker struct {
	server   *asynq.Server
	queue    *RedisQueue
	handlers map[TaskType]Handler
	logger   *logrus.Logger
}

// NewRedisWorker 创建Redis工作者
func NewRedisWorker(queue *RedisQueue, cfg *Config) *RedisWorker {
	if cfg == nil {
		cfg = queue.cfg
	}

	server := asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      cfg.Queues,
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			return cfg.RetryDelay
		},
		Logger: queue.logger,
	})

	return &RedisWorker{
		server:   server,
		queue:    queue,
		handlers: make(map[TaskType]Handler),
		logger:   queue.logger,
	}
}

// RegisterHandler 注册任务处理器
func (w *RedisWorker) RegisterHandler(taskType TaskType, handler Handler) {
	w.handlers[taskType] = handler
}

// Start 启动工作者
func (w *RedisWorker) Start() error {
	mux := asynq.NewServeMux()
	for taskType, handler := range w.handlers {
		mux.HandleFunc(string(taskType), w.wrap(handler))
		w.logger.WithField("task_type", taskType).Info("Registered handler for task type")
	}
	return w.server.Start(mux)
}

// wrap 把Handler包装为asynq处理函数，并维护任务状态
func (w *RedisWorker) wrap(h Handler) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		taskID := string(t.Payload())
		log := w.logger.WithField("task_id", taskID)

		task, err := w.queue.GetTask(ctx, taskID)
		if err != nil {
			log.WithError(err).Error("Failed to get task info")
			if errors.Is(err, ErrTaskNotFound) {
				// 任务数据已过期，不再重试
				return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
			}
			return err
		}

		if err := w.queue.UpdateTaskStatus(ctx, taskID, StatusProcessing, nil, ""); err != nil {
			log.WithError(err).Error("Failed to update task status to processing")
		}
		w.queue.NotifyTaskUpdate(ctx, taskID)

		result, err := h.ProcessTask(ctx, task)
		if err != nil {
			if updateErr := w.queue.UpdateTaskStatus(ctx, taskID, StatusFailed, nil, err.Error()); updateErr != nil {
				log.WithError(updateErr).Error("Failed to update task status after failure")
			}
			w.queue.NotifyTaskUpdate(ctx, taskID)
			log.WithError(err).Warn("Task failed")
			return err
		}

		if err := w.queue.UpdateTaskStatus(ctx, taskID, StatusCompleted, result, ""); err != nil {
			log.WithError(err).Error("Failed to update task status after completion")
		}
		w.queue.NotifyTaskUpdate(ctx, taskID)
		log.Info("Task completed")
		return nil
	}
}

// Stop 停止工作者
func (w *RedisWorker) Stop() {
	w.server.Shutdown()
}

var _ Queue = (*RedisQueue)(nil)
var _ Worker = (*RedisWorker)(nil)
