package repository

import (
	"context"

	"github.com/fyerfyer/cersai-digest/internal/models"
)

// SummaryRepository 报告摘要仓储接口
// 负责已处理报告及其结构化摘要的存储和检索
type SummaryRepository interface {
	// SaveReport 在一个事务中保存报告和摘要，并回填报告的摘要ID
	SaveReport(ctx context.Context, report *models.Report, summary *models.Summary) error

	// GetReport 根据ID获取报告
	GetReport(ctx context.Context, id string) (*models.Report, error)

	// GetSummaryByReportID 获取报告对应的摘要
	GetSummaryByReportID(ctx context.Context, reportID string) (*models.Summary, error)

	// Ping 检查存储是否可用
	Ping(ctx context.Context) error
}
