package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/cersai-digest/internal/extract"
	"github.com/fyerfyer/cersai-digest/pkg/storage"
	"github.com/fyerfyer/cersai-digest/pkg/taskqueue"
)

// SubmitAsync 归档上传文件并提交批处理任务，返回任务ID
func (s *SummaryService) SubmitAsync(ctx context.Context, uploads []Upload, companyDetails json.RawMessage) (string, error) {
	if !s.AsyncEnabled() {
		return "", ErrAsyncDisabled
	}
	if err := s.checkBatch(uploads); err != nil {
		return "", err
	}

	payload := &taskqueue.BatchPayload{
		FileIDs:   make([]string, 0, len(uploads)),
		FileNames: make([]string, 0, len(uploads)),
	}
	if !isEmptyJSON(companyDetails) && json.Valid(companyDetails) {
		payload.CompanyDetails = companyDetails
	}

	for _, u := range uploads {
		id := ""
		if s.archivable(u) {
			info, err := s.archive(ctx, u)
			if err != nil {
				return "", fmt.Errorf("failed to archive %s: %w", u.Name, err)
			}
			id = info.ID
		}
		payload.FileIDs = append(payload.FileIDs, id)
		payload.FileNames = append(payload.FileNames, u.Name)
	}

	taskID, err := s.taskQueue.Enqueue(ctx, taskqueue.TaskBatchProcess, payload)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue batch: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"task_id": taskID,
		"files":   len(uploads),
	}).Info("Batch submitted for async processing")

	return taskID, nil
}

// RegisterTaskHandlers 向工作者注册批处理任务处理器
func (s *SummaryService) RegisterTaskHandlers(w taskqueue.Worker) {
	w.RegisterHandler(taskqueue.TaskBatchProcess, taskqueue.HandlerFunc(s.HandleBatchTask))
}

// HandleBatchTask 处理批处理任务
// 存储中缺失的文件在对应位置产生失败标记，不会中止整个批次
func (s *SummaryService) HandleBatchTask(ctx context.Context, task *taskqueue.Task) (interface{}, error) {
	var payload taskqueue.BatchPayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		return nil, err
	}
	if len(payload.FileIDs) == 0 {
		return nil, extract.ErrNoSources
	}
	if s.storage == nil {
		return nil, fmt.Errorf("no storage configured")
	}

	log := s.logger.WithField("task_id", task.ID)

	sources := make([]extract.Source, len(payload.FileIDs))
	for i, id := range payload.FileIDs {
		name := id
		if i < len(payload.FileNames) && payload.FileNames[i] != "" {
			name = payload.FileNames[i]
		}
		sources[i].Name = name

		// 未归档的文件交给转换器报告类型错误
		if id == "" {
			sources[i].Content = []byte{}
			continue
		}

		data, err := storage.ReadAll(ctx, s.storage, id)
		if err != nil {
			log.WithFields(logrus.Fields{
				"file_id": id,
				"error":   err.Error(),
			}).Warn("Archived file unavailable")
			continue
		}
		if data == nil {
			data = []byte{}
		}
		sources[i].Content = data
	}

	override := ParseOverride(payload.CompanyDetails, s.logger)
	result, err := s.assembler.ProcessBatch(ctx, sources, override)
	if err != nil {
		return nil, err
	}

	summary, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}

	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = filepath.Base(src.Name)
	}

	reportID, summaryID, err := s.SaveSummary(ctx, strings.Join(names, ", "), summary, payload.CompanyDetails)
	if err != nil {
		return nil, err
	}

	return &taskqueue.BatchResult{
		ReportID:  reportID,
		SummaryID: summaryID,
		Assets:    len(result.Assets),
		Failed:    result.Failures(),
	}, nil
}

// ParseOverride 解析操作员提交的公司信息
// 空对象视为未提供；格式错误时记录日志并视为未提供
func ParseOverride(data json.RawMessage, logger *logrus.Logger) *extract.HeaderOverride {
	if isEmptyJSON(data) {
		return nil
	}

	var override extract.HeaderOverride
	if err := json.Unmarshal(data, &override); err != nil {
		if logger != nil {
			logger.WithError(err).Warn("Ignoring malformed company details")
		}
		return nil
	}
	if override.Empty() {
		return nil
	}
	return &override
}
