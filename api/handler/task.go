package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/cersai-digest/api/middleware"
	"github.com/fyerfyer/cersai-digest/api/model"
	"github.com/fyerfyer/cersai-digest/pkg/taskqueue"
)

// TaskHandler 处理任务相关的API请求
type TaskHandler struct {
	queue  taskqueue.Queue // 任务队列
	logger *logrus.Logger  // 日志记录器
}

// NewTaskHandler 创建新的任务处理器
func NewTaskHandler(queue taskqueue.Queue) *TaskHandler {
	return &TaskHandler{
		queue:  queue,
		logger: middleware.GetLogger(),
	}
}

// GetTaskStatus 获取任务状态
// GET /api/tasks/:id?wait=秒数
func (h *TaskHandler) GetTaskStatus(c *gin.Context) {
	var req model.TaskStatusRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Task ID is required", err.Error()))
		return
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid wait parameter", err.Error()))
		return
	}

	ctx := c.Request.Context()
	var (
		task *taskqueue.Task
		err  error
	)
	if req.Wait > 0 {
		task, err = h.queue.WaitForTask(ctx, req.ID, time.Duration(req.Wait)*time.Second)
		// 等待超时时返回当前状态
		if errors.Is(err, taskqueue.ErrTaskTimeout) && task != nil {
			err = nil
		}
	} else {
		task, err = h.queue.GetTask(ctx, req.ID)
	}

	if err != nil {
		if errors.Is(err, taskqueue.ErrTaskNotFound) {
			middleware.HandleError(c, middleware.NewNotFoundError("Task not found"))
			return
		}
		h.logger.WithError(err).WithField("task_id", req.ID).Error("Failed to get task")
		middleware.HandleError(c, middleware.NewUnavailableError("Task queue unavailable").WithCause(err))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(taskqueue.NewTaskInfo(task)))
}
