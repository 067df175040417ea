package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fyerfyer/cersai-digest/internal/database"
	"github.com/fyerfyer/cersai-digest/internal/models"
)

// summaryRepository 摘要仓储实现
type summaryRepository struct {
	db *gorm.DB // 数据库连接
}

// NewSummaryRepository 使用全局数据库连接创建摘要仓储
func NewSummaryRepository() SummaryRepository {
	return &summaryRepository{db: database.MustDB()}
}

// NewSummaryRepositoryWithDB 使用指定的数据库连接创建摘要仓储
func NewSummaryRepositoryWithDB(db *gorm.DB) SummaryRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &summaryRepository{db: db}
}

// SaveReport 保存报告和摘要
func (r *summaryRepository) SaveReport(ctx context.Context, report *models.Report, summary *models.Summary) error {
	if report == nil || summary == nil {
		return errors.New("report and summary are required")
	}
	if len(summary.Content) == 0 {
		return errors.New("summary content cannot be empty")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}

		summary.ReportID = report.ID
		if err := tx.Create(summary).Error; err != nil {
			return fmt.Errorf("failed to create summary: %w", err)
		}

		if err := tx.Model(report).Update("summary_id", summary.ID).Error; err != nil {
			return fmt.Errorf("failed to link summary: %w", err)
		}
		report.SummaryID = summary.ID
		return nil
	})
}

// GetReport 根据ID获取报告
func (r *summaryRepository) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// GetSummaryByReportID 获取报告对应的最新摘要
func (r *summaryRepository) GetSummaryByReportID(ctx context.Context, reportID string) (*models.Summary, error) {
	var summary models.Summary
	err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at DESC").
		First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrSummaryNotFound
		}
		return nil, err
	}
	return &summary, nil
}

// Ping 检查数据库连接
func (r *summaryRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
