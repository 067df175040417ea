package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfcpu导出的内容文件名形如 name_Content_page_3.txt
var pageFileRe = regexp.MustCompile(`_(\d+)\.txt$`)

// PDFParser PDF文档解析器
type PDFParser struct{}

// NewPDFParser 创建一个新的PDF解析器
func NewPDFParser() Parser {
	return &PDFParser{}
}

// Parse 解析PDF文件并按页返回文本
func (p *PDFParser) Parse(filePath string) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "pdfcpu_extract_")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := api.ExtractContentFile(filePath, tmpDir, nil, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to extract text from PDF: %v", err)
	}

	return readPages(tmpDir)
}

// ParseReader 从Reader解析PDF
func (p *PDFParser) ParseReader(r io.Reader, filename string) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF content: %v", err)
	}

	tmpDir, err := os.MkdirTemp("", "pdfcpu_extract_")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "document"
	}

	if err := api.ExtractContent(bytes.NewReader(data), tmpDir, base, nil, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to extract text from PDF: %v", err)
	}

	return readPages(tmpDir)
}

// readPages 读取pdfcpu导出的页面内容流，按页码排序后解码文本
func readPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted text dir: %v", err)
	}

	type page struct {
		num  int
		name string
	}
	var files []page
	for _, e := range entries {
		m := pageFileRe.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		files = append(files, page{num: n, name: e.Name()})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].num < files[j].num
	})

	pages := make([]string, 0, len(files))
	hasText := false
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			continue
		}
		text := contentText(data)
		if text != "" {
			hasText = true
		}
		pages = append(pages, text)
	}

	if !hasText {
		return nil, fmt.Errorf("no text content found in PDF")
	}
	return pages, nil
}

// contentText 从页面内容流中解码文本
// 只处理文本显示操作符，字符串按出现顺序拼接，文本行移动时换行
func contentText(stream []byte) string {
	var (
		out  strings.Builder
		line strings.Builder
		strs []string
		nums []float64
	)

	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			out.WriteString(s)
			out.WriteByte('\n')
		}
		line.Reset()
	}
	show := func() {
		for _, s := range strs {
			line.WriteString(s)
		}
	}

	for i := 0; i < len(stream); {
		c := stream[i]
		switch {
		case c == '(':
			s, n := readLiteralString(stream[i:])
			strs = append(strs, s)
			i += n
		case c == '<' && i+1 < len(stream) && stream[i+1] == '<':
			i += 2
		case c == '<':
			s, n := readHexString(stream[i:])
			strs = append(strs, s)
			i += n
		case c == '%':
			for i < len(stream) && stream[i] != '\n' && stream[i] != '\r' {
				i++
			}
		case c == '/':
			i++
			for i < len(stream) && isRegular(stream[i]) {
				i++
			}
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < len(stream) && (stream[j] == '.' || (stream[j] >= '0' && stream[j] <= '9')) {
				j++
			}
			if f, err := strconv.ParseFloat(string(stream[i:j]), 64); err == nil {
				nums = append(nums, f)
			}
			i = j
		case isRegular(c):
			j := i + 1
			for j < len(stream) && isRegular(stream[j]) {
				j++
			}
			switch string(stream[i:j]) {
			case "Tj", "TJ":
				show()
			case "'", "\"":
				flush()
				show()
			case "T*", "ET", "Tm":
				flush()
			case "Td", "TD":
				if len(nums) >= 2 && nums[len(nums)-1] != 0 {
					flush()
				} else if line.Len() > 0 {
					line.WriteByte(' ')
				}
			}
			strs = strs[:0]
			nums = nums[:0]
			i = j
		default:
			i++
		}
	}
	flush()

	return strings.TrimRight(out.String(), "\n")
}

// isRegular 判断是否为PDF普通字符（非空白、非分隔符）
func isRegular(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0,
		'(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}

// readLiteralString 读取以括号包围的字面字符串，返回内容和消耗的字节数
func readLiteralString(b []byte) (string, int) {
	var sb strings.Builder
	depth := 0
	i := 0
	for i < len(b) {
		c := b[i]
		switch c {
		case '(':
			if depth > 0 {
				sb.WriteByte(c)
			}
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return sb.String(), i
			}
			sb.WriteByte(c)
		case '\\':
			i++
			if i >= len(b) {
				return sb.String(), i
			}
			e := b[i]
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case '\r', '\n':
				// 行尾续行
				if e == '\r' && i+1 < len(b) && b[i+1] == '\n' {
					i++
				}
			default:
				if e >= '0' && e <= '7' {
					v := 0
					k := 0
					for k < 3 && i < len(b) && b[i] >= '0' && b[i] <= '7' {
						v = v*8 + int(b[i]-'0')
						i++
						k++
					}
					sb.WriteByte(byte(v))
					continue
				}
				sb.WriteByte(e)
			}
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), i
}

// readHexString 读取十六进制字符串，只保留可打印字符
func readHexString(b []byte) (string, int) {
	end := bytes.IndexByte(b, '>')
	if end < 0 {
		return "", len(b)
	}

	var digits []byte
	for _, c := range b[1:end] {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	var sb strings.Builder
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err == nil && v >= 0x20 && v < 0x7f {
			sb.WriteByte(byte(v))
		}
	}
	return sb.String(), end + 1
}
