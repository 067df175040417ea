package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/cersai-digest/internal/database"
	"github.com/fyerfyer/cersai-digest/internal/models"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	// 使用唯一的内存数据库标识符
	dbName := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	require.NoError(t, database.Migrate(db), "Failed to run migrations")

	originalDB := database.DB
	database.DB = db

	cleanup := func() {
		database.DB = originalDB
	}
	return db, cleanup
}

func TestSummaryRepository_SaveReport(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSummaryRepository()
	ctx := context.Background()

	report := &models.Report{
		FileName:       "a.pdf,b.pdf",
		CompanyDetails: datatypes.JSON(`{"companyName":"ACME"}`),
	}
	summary := &models.Summary{Content: datatypes.JSON(`{"company_details":{},"assets":[]}`)}

	require.NoError(t, repo.SaveReport(ctx, report, summary))
	assert.NotEmpty(t, report.ID)
	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, report.ID, summary.ReportID)
	assert.Equal(t, summary.ID, report.SummaryID)

	// 摘要ID已回填到报告
	var stored models.Report
	require.NoError(t, db.First(&stored, "id = ?", report.ID).Error)
	assert.Equal(t, summary.ID, stored.SummaryID)
	assert.Equal(t, "a.pdf,b.pdf", stored.FileName)
	assert.JSONEq(t, `{"companyName":"ACME"}`, string(stored.CompanyDetails))

	got, err := repo.GetSummaryByReportID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.ID, got.ID)
	assert.JSONEq(t, `{"company_details":{},"assets":[]}`, string(got.Content))

	r, err := repo.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.ID, r.SummaryID)
}

func TestSummaryRepository_SaveReportRollback(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSummaryRepositoryWithDB(db)
	ctx := context.Background()

	first := &models.Summary{ID: "dup-summary", Content: datatypes.JSON(`{}`)}
	require.NoError(t, repo.SaveReport(ctx, &models.Report{FileName: "a.pdf"}, first))

	// 摘要主键冲突时报告也不应写入
	report := &models.Report{ID: "report-2", FileName: "b.pdf"}
	err := repo.SaveReport(ctx, report, &models.Summary{ID: "dup-summary", Content: datatypes.JSON(`{}`)})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Report{}).Where("id = ?", "report-2").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSummaryRepository_Validation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSummaryRepositoryWithDB(db)
	assert.Error(t, repo.SaveReport(context.Background(), nil, &models.Summary{}))
	assert.Error(t, repo.SaveReport(context.Background(), &models.Report{FileName: "a.pdf"}, &models.Summary{}))
}

func TestSummaryRepository_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSummaryRepositoryWithDB(db)

	_, err := repo.GetSummaryByReportID(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrSummaryNotFound)

	_, err = repo.GetReport(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrReportNotFound)

	assert.NoError(t, repo.Ping(context.Background()))
}
