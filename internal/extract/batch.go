package extract

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// ProcessBatch 依次处理多份文档
// 单份文档失败只在对应位置留下失败标记，不影响其他文档；
// 公司信息取自第一份处理成功的文档
func (a *Assembler) ProcessBatch(ctx context.Context, sources []Source, override *HeaderOverride) (*BatchResult, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	result := &BatchResult{
		Assets: make([]AssetEntry, 0, len(sources)),
	}
	headerSet := false

	for i, src := range sources {
		record, header, err := a.AssembleSource(ctx, src, override)
		if err != nil {
			name := filepath.Base(src.Name)
			a.logger.WithFields(logrus.Fields{
				"source": name,
				"index":  i,
				"error":  err.Error(),
			}).Error("Failed to process document")

			result.Assets = append(result.Assets, AssetEntry{Failure: NewErrorRecord(name, err)})
			continue
		}

		if !headerSet {
			result.Company = header
			headerSet = true
		}
		result.Assets = append(result.Assets, AssetEntry{Record: &record})
	}

	// 全部失败时公司信息按空文本解析，保证每个字段都有值
	if !headerSet {
		result.Company = ResolveHeader("", override)
	}

	a.logger.WithFields(logrus.Fields{
		"documents": len(sources),
		"failed":    result.Failures(),
	}).Info("Batch processed")

	return result, nil
}
