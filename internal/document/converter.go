package document

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/cersai-digest/internal/extract"
)

// Converter 把上传的源文档转换为提取引擎使用的文本
type Converter struct {
	logger *logrus.Logger
}

// ConverterOption 转换器配置选项
type ConverterOption func(*Converter)

// WithConverterLogger 设置日志记录器
func WithConverterLogger(logger *logrus.Logger) ConverterOption {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewConverter 创建文档转换器
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToText 实现extract.TextConverter接口
func (c *Converter) ToText(ctx context.Context, src extract.Source) (extract.TextBlob, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	parser, err := ParserFactory(src.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, filepath.Ext(src.Name))
	}

	pages, err := parser.ParseReader(bytes.NewReader(src.Content), src.Name)
	if err != nil {
		return "", err
	}

	c.logger.WithFields(logrus.Fields{
		"source": filepath.Base(src.Name),
		"pages":  len(pages),
	}).Debug("Document converted to text")

	return extract.NewTextBlob(pages), nil
}

var _ extract.TextConverter = (*Converter)(nil)
