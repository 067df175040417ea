package models

import "errors"

var (
	// ErrSummaryNotFound 摘要不存在错误
	ErrSummaryNotFound = errors.New("Summary not found")

	// ErrReportNotFound 报告不存在错误
	ErrReportNotFound = errors.New("report not found")
)
