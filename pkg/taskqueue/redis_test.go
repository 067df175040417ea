package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisQueue 基于miniredis创建测试队列
func setupRedisQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	queue, err := NewRedisQueue(&Config{
		RedisAddr:   mr.Addr(),
		Concurrency: 1,
		RetryLimit:  2,
		RetryDelay:  time.Second,
		Queues:      map[string]int{"default": 1},
	})
	require.NoError(t, err)
	t.Cleanup(func() { queue.Close() })

	return queue, mr
}

func samplePayload() *BatchPayload {
	return &BatchPayload{
		FileIDs:        []string{"f-1", "f-2"},
		FileNames:      []string{"a.pdf", "b.pdf"},
		CompanyDetails: json.RawMessage(`{"borrowerName":"ACME"}`),
	}
}

func TestNewRedisQueue(t *testing.T) {
	queue, _ := setupRedisQueue(t)
	assert.NoError(t, queue.Ping(context.Background()))

	_, err := NewRedisQueue(&Config{RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRedisQueue_Enqueue(t *testing.T) {
	queue, mr := setupRedisQueue(t)
	ctx := context.Background()

	taskID, err := queue.Enqueue(ctx, TaskBatchProcess, samplePayload())
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	task, err := queue.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, TaskBatchProcess, task.Type)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, 2, task.MaxRetries)

	var payload BatchPayload
	require.NoError(t, UnmarshalPayload(task.Payload, &payload))
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, payload.FileNames)
	assert.JSONEq(t, `{"borrowerName":"ACME"}`, string(payload.CompanyDetails))

	assert.True(t, mr.Exists(taskKeyPrefix+taskID))
	assert.Greater(t, mr.TTL(taskKeyPrefix+taskID), time.Duration(0))
}

func TestRedisQueue_GetTaskNotFound(t *testing.T) {
	queue, _ := setupRedisQueue(t)

	_, err := queue.GetTask(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRedisQueue_UpdateTaskStatus(t *testing.T) {
	queue, _ := setupRedisQueue(t)
	ctx := context.Background()

	taskID, err := queue.Enqueue(ctx, TaskBatchProcess, samplePayload())
	require.NoError(t, err)

	require.NoError(t, queue.UpdateTaskStatus(ctx, taskID, StatusProcessing, nil, ""))
	task, err := queue.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, task.Status)
	assert.Equal(t, 1, task.Attempts)
	assert.NotNil(t, task.StartedAt)
	assert.Nil(t, task.CompletedAt)

	result := &BatchResult{ReportID: "r-1", SummaryID: "s-1", Assets: 2, Failed: 1}
	require.NoError(t, queue.UpdateTaskStatus(ctx, taskID, StatusCompleted, result, ""))
	task, err = queue.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.NotNil(t, task.CompletedAt)

	var got BatchResult
	require.NoError(t, UnmarshalPayload(task.Result, &got))
	assert.Equal(t, *result, got)

	info := NewTaskInfo(task)
	assert.NotEmpty(t, info.Result)

	assert.ErrorIs(t, queue.UpdateTaskStatus(ctx, "missing", StatusFailed, nil, "x"), ErrTaskNotFound)
}

func TestRedisQueue_WaitForTask(t *testing.T) {
	queue, _ := setupRedisQueue(t)
	ctx := context.Background()

	t.Run("already finished", func(t *testing.T) {
		taskID, err := queue.Enqueue(ctx, TaskBatchProcess, samplePayload())
		require.NoError(t, err)
		require.NoError(t, queue.UpdateTaskStatus(ctx, taskID, StatusFailed, nil, "boom"))

		task, err := queue.WaitForTask(ctx, taskID, time.Second)
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, task.Status)
		assert.Equal(t, "boom", task.Error)
	})

	t.Run("finished while waiting", func(t *testing.T) {
		taskID, err := queue.Enqueue(ctx, TaskBatchProcess, samplePayload())
		require.NoError(t, err)

		go func() {
			time.Sleep(100 * time.Millisecond)
			queue.UpdateTaskStatus(ctx, taskID, StatusCompleted, &BatchResult{ReportID: "r"}, "")
			queue.NotifyTaskUpdate(ctx, taskID)
		}()

		task, err := queue.WaitForTask(ctx, taskID, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, task.Status)
	})

	t.Run("timeout", func(t *testing.T) {
		taskID, err := queue.Enqueue(ctx, TaskBatchProcess, samplePayload())
		require.NoError(t, err)

		task, err := queue.WaitForTask(ctx, taskID, 200*time.Millisecond)
		assert.ErrorIs(t, err, ErrTaskTimeout)
		require.NotNil(t, task)
		assert.Equal(t, StatusPending, task.Status)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := queue.WaitForTask(ctx, "missing", time.Second)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestRedisWorker_Handle(t *testing.T) {
	queue, _ := setupRedisQueue(t)
	worker := NewRedisWorker(queue, nil)
	ctx := context.Background()

	t.Run("success stores result", func(t *testing.T) {
		taskID, err := queue.Enqueue(ctx, TaskBatchProcess, samplePayload())
		require.NoError(t, err)

		handler := worker.wrap(HandlerFunc(func(ctx context.Context, task *Task) (interface{}, error) {
			var p BatchPayload
			if err := UnmarshalPayload(task.Payload, &p); err != nil {
				return nil, err
			}
			return &BatchResult{ReportID: "r-1", Assets: len(p.FileIDs)}, nil
		}))

		require.NoError(t, handler(ctx, asynq.NewTask(string(TaskBatchProcess), []byte(taskID))))

		task, err := queue.GetTask(ctx, taskID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, task.Status)
		assert.Equal(t, 1, task.Attempts)

		var result BatchResult
		require.NoError(t, UnmarshalPayload(task.Result, &result))
		assert.Equal(t, 2, result.Assets)
	})

	t.Run("failure records error", func(t *testing.T) {
		taskID, err := queue.Enqueue(ctx, TaskBatchProcess, samplePayload())
		require.NoError(t, err)

		handler := worker.wrap(HandlerFunc(func(ctx context.Context, task *Task) (interface{}, error) {
			return nil, errors.New("storage unavailable")
		}))

		err = handler(ctx, asynq.NewTask(string(TaskBatchProcess), []byte(taskID)))
		assert.Error(t, err)

		task, err := queue.GetTask(ctx, taskID)
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, task.Status)
		assert.Equal(t, "storage unavailable", task.Error)
		assert.Empty(t, NewTaskInfo(task).Result)
	})

	t.Run("expired task is not retried", func(t *testing.T) {
		handler := worker.wrap(HandlerFunc(func(ctx context.Context, task *Task) (interface{}, error) {
			return nil, nil
		}))

		err := handler(ctx, asynq.NewTask(string(TaskBatchProcess), []byte("missing")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})
}

func TestUnmarshalPayload(t *testing.T) {
	var p BatchPayload
	assert.ErrorIs(t, UnmarshalPayload(nil, &p), ErrInvalidPayload)
	assert.ErrorIs(t, UnmarshalPayload(json.RawMessage("{bad"), &p), ErrInvalidPayload)
	assert.NoError(t, UnmarshalPayload(json.RawMessage(`{"file_ids":["x"]}`), &p))
	assert.Equal(t, []string{"x"}, p.FileIDs)
}
