package extract

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCatalogs 测试规则表的完整性
func TestCatalogs(t *testing.T) {
	assert.Equal(t, 19, AssetFields.Len())
	assert.Equal(t, 7, SecurityFields.Len())

	for _, catalog := range []*Catalog{AssetFields, SecurityFields} {
		seen := make(map[string]bool)
		for _, rule := range catalog.Rules() {
			assert.False(t, seen[rule.Name], "duplicate field %s in %s", rule.Name, catalog.Name())
			seen[rule.Name] = true
			assert.Equal(t, DefaultValue, rule.Default)
			assert.Equal(t, 1, rule.Group)
		}
	}

	rule, ok := SecurityFields.Rule(FieldDetailsOfCharge)
	require.True(t, ok)
	assert.Contains(t, rule.Pattern, "Details Of Charge")

	_, ok = AssetFields.Rule("unknown")
	assert.False(t, ok)

	assert.Panics(t, func() {
		newCatalog("dup", newRule("a", `a(\d)`), newRule("a", `b(\d)`))
	})
}

// TestExtract_NoMatchReturnsDefault 未匹配时返回默认值
func TestExtract_NoMatchReturnsDefault(t *testing.T) {
	blob := TextBlob("nothing useful in this document")

	for _, catalog := range []*Catalog{AssetFields, SecurityFields} {
		for _, rule := range catalog.Rules() {
			assert.Equal(t, rule.Default, Extract(blob, rule), "field %s", rule.Name)
		}
	}

	custom := newRuleGroup("custom", `Missing Label\s*(\w+)`, 1, "N/A")
	assert.Equal(t, "N/A", Extract(blob, custom))
	assert.Equal(t, DefaultValue, Extract(blob, FieldRule{Name: "zero", Default: DefaultValue}))
}

// TestExtract_Normalization 测试大小写、跨行和空白处理
func TestExtract_Normalization(t *testing.T) {
	t.Run("case insensitive", func(t *testing.T) {
		rule, _ := AssetFields.Rule(FieldPinCode)
		assert.Equal(t, "400013", Extract("PIN CODE / POST CODE 400013", rule))
	})

	t.Run("newlines collapsed", func(t *testing.T) {
		rule, _ := SecurityFields.Rule(FieldChargeHolderName)
		blob := TextBlob("Charge Holder Name Office / Ward / Branch Name\n  BANK OF BARODA\nFort Branch  \nTransaction History")
		assert.Equal(t, "BANK OF BARODA Fort Branch", Extract(blob, rule))
	})

	t.Run("whitespace only capture", func(t *testing.T) {
		rule := newRule("blank", `Label:([ \t]*)end`)
		assert.Equal(t, DefaultValue, Extract("Label:   end", rule))
	})

	t.Run("lookahead boundary", func(t *testing.T) {
		rule, _ := AssetFields.Rule(FieldPlotID)
		assert.Equal(t, "12A", Extract("Plot Number 12A Area 1500", rule))
		assert.Equal(t, "7/B", Extract("Plot Number 7/B\nSomething else", rule))
	})
}

// TestExtract_GroupOutOfRange 捕获组越界时记录警告并返回默认值
func TestExtract_GroupOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	SetLogger(logger)
	defer SetLogger(logrus.StandardLogger())

	rule := newRuleGroup("broken", `Asset ID\s*([0-9]+)`, 3, DefaultValue)
	assert.Equal(t, DefaultValue, Extract("Asset ID 42", rule))
	assert.Contains(t, buf.String(), "Capture group out of range")
	assert.Contains(t, buf.String(), "broken")

	// 未匹配时不记录警告
	buf.Reset()
	assert.Equal(t, DefaultValue, Extract("nothing", rule))
	assert.Empty(t, buf.String())
}

// TestExtract_UserRules 包外构造的规则同样生效
func TestExtract_UserRules(t *testing.T) {
	t.Run("literal", func(t *testing.T) {
		rule := FieldRule{Name: "x", Pattern: `Foo\s*(\d+)`, Group: 1, Default: DefaultValue}
		assert.Equal(t, "42", Extract("foo 42", rule))
	})

	t.Run("constructor", func(t *testing.T) {
		rule, err := NewFieldRule("x", `Foo\s*(\d+)`, 1, "n/a")
		require.NoError(t, err)
		assert.Equal(t, "42", Extract("Foo\n42", rule))
		assert.Equal(t, "n/a", Extract("bar", rule))

		_, err = NewFieldRule("bad", `Foo(`, 1, DefaultValue)
		assert.Error(t, err)
	})

	t.Run("edited copy", func(t *testing.T) {
		rule, ok := AssetFields.Rule(FieldPlotID)
		require.True(t, ok)
		rule.Pattern = `Lot\s*(\w+)`
		assert.Equal(t, "9A", Extract("Lot 9A", rule))

		// 规则表本身不受影响
		original, _ := AssetFields.Rule(FieldPlotID)
		assert.NotEqual(t, rule.Pattern, original.Pattern)
	})
}

// TestExtract_InvalidPattern 无效模式记录警告并返回默认值
func TestExtract_InvalidPattern(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	SetLogger(logger)
	defer SetLogger(logrus.StandardLogger())

	rule := FieldRule{Name: "broken", Pattern: `Asset ID (`, Group: 1, Default: DefaultValue}
	assert.Equal(t, DefaultValue, Extract("Asset ID 42", rule))
	assert.Contains(t, buf.String(), "Invalid pattern for field rule")
	assert.Contains(t, buf.String(), "broken")
}

// TestExtract_NewlinesBecomeSpaces 每个换行替换为一个空格，连续换行不合并
func TestExtract_NewlinesBecomeSpaces(t *testing.T) {
	rule, err := NewFieldRule("x", `Start(.*)End`, 1, DefaultValue)
	require.NoError(t, err)
	assert.Equal(t, "A   B", Extract("Start A\n\n\nB End", rule))
}

// TestNewTextBlob 测试页面拼接
func TestNewTextBlob(t *testing.T) {
	blob := NewTextBlob([]string{"page one", "", "page two"})
	assert.Equal(t, TextBlob("page one\npage two\n"), blob)
	assert.Equal(t, TextBlob(""), NewTextBlob(nil))
}

// TestExtractAll 测试按规则表提取全部字段
func TestExtractAll(t *testing.T) {
	fields := ExtractAll(sampleReport, SecurityFields)
	assert.Len(t, fields, SecurityFields.Len())
	assert.Equal(t, "400012345678", fields[FieldSecurityInterestID])
	assert.Equal(t, "Mortgage by deposit of title deeds", fields[FieldSecurityInterestType])
	assert.Equal(t, "15-03-2019", fields[FieldSICreationDate])
	assert.Equal(t, "STATE BANK OF INDIA Corporate Finance Branch", fields[FieldChargeHolderName])
	assert.Equal(t, "374400000.00", fields[FieldChargeAmount])
	assert.Equal(t, "Company", fields[FieldBorrowerType])
	assert.Equal(t, "First charge", fields[FieldDetailsOfCharge])
}
