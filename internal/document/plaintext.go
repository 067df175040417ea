package document

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// pageBreak 纯文本中的分页符
const pageBreak = "\f"

// PlainTextParser 纯文本解析器
// 以换页符拆分页面，没有换页符时整个文件为一页
type PlainTextParser struct{}

// NewPlainTextParser 创建一个新的纯文本解析器
func NewPlainTextParser() Parser {
	return &PlainTextParser{}
}

// Parse 解析纯文本文件
func (p *PlainTextParser) Parse(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open text file: %v", err)
	}
	defer file.Close()

	return p.ParseReader(file, filePath)
}

// ParseReader 从Reader读取纯文本
func (p *PlainTextParser) ParseReader(r io.Reader, filename string) ([]string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %v", err)
	}

	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	pages := strings.Split(text, pageBreak)
	for i := range pages {
		pages[i] = strings.TrimRight(pages[i], "\n")
	}
	return pages, nil
}
