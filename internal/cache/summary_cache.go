package cache

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const summaryKeyPrefix = "summary"

// SummaryKey 返回报告摘要的缓存键
func SummaryKey(reportID string) string {
	return GenerateCacheKey(summaryKeyPrefix, reportID)
}

// SummaryCache 按报告ID缓存摘要JSON
// 缓存故障只记录日志，调用方按未命中处理
type SummaryCache struct {
	cache  Cache
	ttl    time.Duration
	logger *logrus.Logger
}

// NewSummaryCache 创建摘要缓存，cache为nil时所有操作都是空操作
func NewSummaryCache(c Cache, ttl time.Duration, logger *logrus.Logger) *SummaryCache {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SummaryCache{cache: c, ttl: ttl, logger: logger}
}

// Load 读取缓存的摘要
func (s *SummaryCache) Load(ctx context.Context, reportID string) ([]byte, bool) {
	if s == nil || s.cache == nil {
		return nil, false
	}

	data, found, err := s.cache.Get(ctx, SummaryKey(reportID))
	if err != nil {
		s.logger.WithError(err).WithField("report_id", reportID).Warn("Failed to read summary cache")
		return nil, false
	}
	return data, found
}

// Store 写入摘要
func (s *SummaryCache) Store(ctx context.Context, reportID string, content []byte) {
	if s == nil || s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, SummaryKey(reportID), content, s.ttl); err != nil {
		s.logger.WithError(err).WithField("report_id", reportID).Warn("Failed to write summary cache")
	}
}

// Invalidate 删除缓存的摘要
func (s *SummaryCache) Invalidate(ctx context.Context, reportID string) {
	if s == nil || s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, SummaryKey(reportID)); err != nil {
		s.logger.WithError(err).WithField("report_id", reportID).Warn("Failed to invalidate summary cache")
	}
}
