package document

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType 不支持的文档类型
var ErrUnsupportedType = errors.New("unsupported document type")

// Parser 文档解析器接口
// 负责将源文档转换为按页序排列的纯文本页面
type Parser interface {
	// Parse 解析本地文件
	Parse(filePath string) ([]string, error)

	// ParseReader 从Reader解析文档，filename用于确定文档类型
	ParseReader(r io.Reader, filename string) ([]string, error)
}

// ContentType 表示文档的内容类型
type ContentType string

const (
	// PDF 文档类型
	PDF ContentType = "pdf"
	// PlainText 纯文本类型，通常是已经展平的报告
	PlainText ContentType = "plaintext"
	// Unknown 未知类型
	Unknown ContentType = "unknown"
)

// ParserFactory 根据文件类型创建对应的解析器
func ParserFactory(filePath string) (Parser, error) {
	switch DetectContentType(filePath) {
	case PDF:
		return NewPDFParser(), nil
	case PlainText:
		return NewPlainTextParser(), nil
	default:
		return nil, ErrUnsupportedType
	}
}

// DetectContentType 根据文件扩展名检测内容类型
func DetectContentType(filePath string) ContentType {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return PDF
	case ".txt":
		return PlainText
	default:
		return Unknown
	}
}

// IsSupported 判断文件是否可以被解析
func IsSupported(filePath string) bool {
	return DetectContentType(filePath) != Unknown
}
