package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report 已处理的源文档记录
// 一次批处理的所有文件名合并保存为一条记录
type Report struct {
	ID             string         `gorm:"primaryKey;size:36"` // 报告ID，对外即pdf_id
	FileName       string         `gorm:"type:text;not null"` // 文件名，多个文件以逗号分隔
	CompanyDetails datatypes.JSON `gorm:"type:json"`          // 操作员提交的公司信息
	SummaryID      string         `gorm:"size:36;index"`      // 关联的摘要ID
	CreatedAt      time.Time      `gorm:"not null;index"`     // 创建时间
}

// BeforeCreate GORM的钩子函数，创建记录前生成ID和时间
func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}

// TableName 明确指定表名
func (Report) TableName() string {
	return "reports"
}

// Summary 报告的结构化摘要，内容为批处理结果的JSON
type Summary struct {
	ID        string         `gorm:"primaryKey;size:36"`     // 摘要ID
	ReportID  string         `gorm:"size:36;not null;index"` // 所属报告ID
	Content   datatypes.JSON `gorm:"type:json;not null"`     // 批处理结果
	CreatedAt time.Time      `gorm:"not null"`
}

// BeforeCreate GORM的钩子函数，创建记录前生成ID和时间
func (s *Summary) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	return nil
}

// TableName 明确指定表名
func (Summary) TableName() string {
	return "summaries"
}
