package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/cersai-digest/internal/cache"
	"github.com/fyerfyer/cersai-digest/internal/document"
	"github.com/fyerfyer/cersai-digest/internal/export"
	"github.com/fyerfyer/cersai-digest/internal/extract"
	"github.com/fyerfyer/cersai-digest/internal/models"
	"github.com/fyerfyer/cersai-digest/internal/repository"
	"github.com/fyerfyer/cersai-digest/pkg/storage"
	"github.com/fyerfyer/cersai-digest/pkg/taskqueue"
)

var (
	// ErrMissingSummary 保存请求缺少文件名或摘要
	ErrMissingSummary = errors.New("Missing filename or summary")

	// ErrInvalidSummary 摘要不是批处理结果的结构
	ErrInvalidSummary = errors.New("Invalid summary")

	// ErrAsyncDisabled 未配置任务队列
	ErrAsyncDisabled = errors.New("async processing is not enabled")
)

// Upload 一份上传的源文档
type Upload struct {
	Name    string // 原始文件名
	Content []byte // 文件内容
}

// SummaryService 报告摘要服务
// 负责协调文档归档、字段提取、摘要保存、缓存和导出
type SummaryService struct {
	assembler *extract.Assembler
	converter extract.TextConverter
	repo      repository.SummaryRepository
	storage   storage.Storage
	cache     *cache.SummaryCache
	exporter  *export.Exporter
	taskQueue taskqueue.Queue
	maxFiles  int
	logger    *logrus.Logger
}

// SummaryOption 摘要服务配置选项
type SummaryOption func(*SummaryService)

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) SummaryOption {
	return func(s *SummaryService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStorage 设置上传文件的归档存储
func WithStorage(st storage.Storage) SummaryOption {
	return func(s *SummaryService) {
		s.storage = st
	}
}

// WithSummaryCache 设置摘要缓存
func WithSummaryCache(c *cache.SummaryCache) SummaryOption {
	return func(s *SummaryService) {
		s.cache = c
	}
}

// WithExporter 设置导出器
func WithExporter(e *export.Exporter) SummaryOption {
	return func(s *SummaryService) {
		if e != nil {
			s.exporter = e
		}
	}
}

// WithTaskQueue 设置任务队列，启用异步批处理
func WithTaskQueue(q taskqueue.Queue) SummaryOption {
	return func(s *SummaryService) {
		s.taskQueue = q
	}
}

// WithMaxFiles 限制单次批处理的文件数，0表示不限制
func WithMaxFiles(n int) SummaryOption {
	return func(s *SummaryService) {
		if n >= 0 {
			s.maxFiles = n
		}
	}
}

// NewSummaryService 创建摘要服务
func NewSummaryService(converter extract.TextConverter, repo repository.SummaryRepository, opts ...SummaryOption) *SummaryService {
	s := &SummaryService{
		converter: converter,
		repo:      repo,
		logger:    logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.exporter == nil {
		s.exporter = export.NewExporter(export.WithLogger(s.logger))
	}
	s.assembler = extract.NewAssembler(archivedConverter{next: converter}, extract.WithLogger(s.logger))

	return s
}

// AsyncEnabled 是否可以提交异步批处理
func (s *SummaryService) AsyncEnabled() bool {
	return s.taskQueue != nil && s.storage != nil
}

// Process 同步处理一批上传文件
// 可解析的文件先归档到存储，归档失败不影响处理
func (s *SummaryService) Process(ctx context.Context, uploads []Upload, override *extract.HeaderOverride) (*extract.BatchResult, error) {
	if err := s.checkBatch(uploads); err != nil {
		return nil, err
	}

	sources := make([]extract.Source, 0, len(uploads))
	for _, u := range uploads {
		if s.storage != nil && s.archivable(u) {
			if _, err := s.archive(ctx, u); err != nil {
				s.logger.WithFields(logrus.Fields{
					"file":  u.Name,
					"error": err.Error(),
				}).Warn("Failed to archive upload")
			}
		}
		sources = append(sources, extract.Source{Name: u.Name, Content: u.Content})
	}

	return s.assembler.ProcessBatch(ctx, sources, override)
}

// SaveSummary 保存摘要并返回报告ID和摘要ID
// companyDetails可以为空
func (s *SummaryService) SaveSummary(ctx context.Context, fileName string, summary, companyDetails json.RawMessage) (string, string, error) {
	if strings.TrimSpace(fileName) == "" || isEmptyJSON(summary) {
		return "", "", ErrMissingSummary
	}
	// 导出时按批处理结果解码，保存前先校验结构
	if err := extract.ValidateBatchJSON(summary); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidSummary, err)
	}

	report := &models.Report{FileName: fileName}
	if !isEmptyJSON(companyDetails) {
		if !json.Valid(companyDetails) {
			return "", "", fmt.Errorf("company details are not valid JSON")
		}
		report.CompanyDetails = []byte(companyDetails)
	}
	sum := &models.Summary{Content: []byte(summary)}

	if err := s.repo.SaveReport(ctx, report, sum); err != nil {
		return "", "", fmt.Errorf("failed to save summary: %w", err)
	}
	s.cache.Store(ctx, report.ID, summary)

	s.logger.WithFields(logrus.Fields{
		"report_id":  report.ID,
		"summary_id": sum.ID,
		"file_name":  fileName,
	}).Info("Summary saved")

	return report.ID, sum.ID, nil
}

// GetSummary 获取报告的摘要JSON，优先读取缓存
func (s *SummaryService) GetSummary(ctx context.Context, reportID string) (json.RawMessage, error) {
	if data, ok := s.cache.Load(ctx, reportID); ok {
		return data, nil
	}

	sum, err := s.repo.GetSummaryByReportID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	content := json.RawMessage(sum.Content)
	s.cache.Store(ctx, reportID, content)
	return content, nil
}

// Export 以指定格式导出报告摘要
func (s *SummaryService) Export(ctx context.Context, reportID string, format export.Format) (*export.Document, error) {
	content, err := s.GetSummary(ctx, reportID)
	if err != nil {
		return nil, err
	}

	result, err := extract.ParseBatchResult(content)
	if err != nil {
		// 缓存中的内容无法解码时丢弃缓存，从数据库重新读取一次
		s.logger.WithError(err).WithField("report_id", reportID).Warn("Discarding undecodable cached summary")
		s.cache.Invalidate(ctx, reportID)

		sum, repoErr := s.repo.GetSummaryByReportID(ctx, reportID)
		if repoErr != nil {
			return nil, repoErr
		}
		if result, err = extract.ParseBatchResult(sum.Content); err != nil {
			return nil, fmt.Errorf("failed to decode summary: %w", err)
		}
		s.cache.Store(ctx, reportID, sum.Content)
	}

	return s.exporter.Render(format, result, reportID)
}

// Ping 检查数据库是否可用
func (s *SummaryService) Ping(ctx context.Context) bool {
	if s.repo == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.repo.Ping(ctx) == nil
}

// checkBatch 校验批次大小
func (s *SummaryService) checkBatch(uploads []Upload) error {
	if len(uploads) == 0 {
		return extract.ErrNoSources
	}
	if s.maxFiles > 0 && len(uploads) > s.maxFiles {
		return fmt.Errorf("too many files: %d (max %d)", len(uploads), s.maxFiles)
	}
	return nil
}

// archivable 不支持的文件类型不归档，仍由批处理在对应位置产生失败标记
func (s *SummaryService) archivable(u Upload) bool {
	if document.IsSupported(u.Name) {
		return true
	}
	s.logger.WithField("file", u.Name).Info("Skipping archive of unsupported upload")
	return false
}

// archive 把上传文件保存到存储
func (s *SummaryService) archive(ctx context.Context, u Upload) (storage.FileInfo, error) {
	return s.storage.Save(ctx, bytes.NewReader(u.Content), filepath.Base(u.Name))
}

// isEmptyJSON 判断JSON值是否缺失
func isEmptyJSON(data json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(data))
	return trimmed == "" || trimmed == "null" || trimmed == `""` || trimmed == "{}"
}

// archivedConverter 对无法从存储中读取的文档直接返回错误
type archivedConverter struct {
	next extract.TextConverter
}

// ToText 实现extract.TextConverter接口
func (c archivedConverter) ToText(ctx context.Context, src extract.Source) (extract.TextBlob, error) {
	if src.Content == nil {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, filepath.Base(src.Name))
	}
	if c.next == nil {
		return "", errors.New("no text converter configured")
	}
	return c.next.ToText(ctx, src)
}
