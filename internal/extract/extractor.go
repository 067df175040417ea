package extract

import (
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// 规则配置错误的诊断日志，提取结果不依赖它
var pkgLogger atomic.Pointer[logrus.Logger]

func init() {
	pkgLogger.Store(logrus.StandardLogger())
}

// SetLogger 替换规则诊断使用的日志记录器
// 应在启动时、开始提取之前调用一次
func SetLogger(l *logrus.Logger) {
	if l != nil {
		pkgLogger.Store(l)
	}
}

func logger() *logrus.Logger {
	return pkgLogger.Load()
}

// TextBlob 一份文档展平后的完整文本
type TextBlob string

// NewTextBlob 按页序拼接页面文本，每页以换行结尾，空页跳过
func NewTextBlob(pages []string) TextBlob {
	var sb strings.Builder
	for _, p := range pages {
		if p == "" {
			continue
		}
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return TextBlob(sb.String())
}

// Extract 在文本中应用单条规则
// 未匹配、捕获为空、模式无效或捕获组越界时都返回规则默认值
func Extract(blob TextBlob, rule FieldRule) string {
	re, err := rule.compiled()
	if err != nil {
		logger().WithFields(logrus.Fields{
			"field": rule.Name,
			"error": err.Error(),
		}).Warn("Invalid pattern for field rule")
		return rule.Default
	}

	m := re.FindStringSubmatch(string(blob))
	if m == nil {
		return rule.Default
	}

	if rule.Group < 0 || rule.Group >= len(m) {
		logger().WithFields(logrus.Fields{
			"field":  rule.Name,
			"group":  rule.Group,
			"groups": len(m) - 1,
		}).Warn("Capture group out of range for field rule")
		return rule.Default
	}

	value := normalize(m[rule.Group])
	if value == "" {
		return rule.Default
	}
	return value
}

// ExtractAll 按规则表顺序提取所有字段
func ExtractAll(blob TextBlob, catalog *Catalog) Fields {
	fields := make(Fields, catalog.Len())
	for _, rule := range catalog.rules {
		fields[rule.Name] = Extract(blob, rule)
	}
	return fields
}

// normalize 去掉首尾空白并把内部换行替换为单个空格
func normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
