package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNoSources 批处理没有任何输入文档
	ErrNoSources = errors.New("No PDF files provided.")

	// ErrConversion 文档转文本失败
	ErrConversion = errors.New("document conversion failed")
)

// Source 待处理的源文档
type Source struct {
	Name    string // 源文档标识，通常是文件名
	Content []byte // 原始文件内容
}

// TextConverter 文档转文本能力，由外部协作方提供
type TextConverter interface {
	// ToText 返回按页序拼接、以换行分隔的文本
	ToText(ctx context.Context, src Source) (TextBlob, error)
}

// TextConverterFunc 函数形式的TextConverter
type TextConverterFunc func(ctx context.Context, src Source) (TextBlob, error)

// ToText 实现TextConverter接口
func (f TextConverterFunc) ToText(ctx context.Context, src Source) (TextBlob, error) {
	return f(ctx, src)
}

// Assembler 记录组装器，把文本转换、字段提取和派生计算串联起来
type Assembler struct {
	converter TextConverter
	logger    *logrus.Logger
}

// Option 组装器配置选项
type Option func(*Assembler)

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAssembler 创建记录组装器
func NewAssembler(converter TextConverter, opts ...Option) *Assembler {
	a := &Assembler{
		converter: converter,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble 从文本组装单份文档记录并解析公司信息
// 对相同输入总是产生相同输出
func Assemble(blob TextBlob, override *HeaderOverride) (DocumentRecord, HeaderInfo) {
	asset := ExtractAll(blob, AssetFields)
	asset[FieldBuildupArea] = ComposeBuildupArea(asset[FieldBuildupArea], Extract(blob, areaUnitRule))

	security := ExtractAll(blob, SecurityFields)
	applySecurityDerivations(blob, security)

	return DocumentRecord{Asset: asset, Security: security}, ResolveHeader(blob, override)
}

// applySecurityDerivations 追加担保权益的派生字段
func applySecurityDerivations(blob TextBlob, security Fields) {
	security[FieldChargeHolderNameAmount] = ChargeHolderAmount(
		security.Get(FieldChargeHolderName),
		security.Get(FieldChargeAmount),
	)

	borrowers, mortgagees := DefaultValue, DefaultValue
	if b := ParseBorrower(blob); b != nil {
		borrowers, mortgagees = b.Name, b.ThirdPartyMortgagees
	}
	security[FieldBorrowers] = borrowers
	security[FieldSubBorrower] = DefaultValue
	security[FieldThirdPartyMortgagees] = mortgagees

	details := DefaultValue
	if rule, ok := SecurityFields.Rule(FieldDetailsOfCharge); ok {
		details = Extract(blob, rule)
	}
	security[FieldChargeStatus] = ChargeStatus(details)

	for _, key := range legacySecurityKeys {
		delete(security, key)
	}

	security[FieldChargeReleaseDate] = ChargeReleaseDatePlaceholder
}

// AssembleSource 转换源文档后组装记录
// 转换失败或组装过程中的panic都作为该文档的错误返回
func (a *Assembler) AssembleSource(ctx context.Context, src Source, override *HeaderOverride) (record DocumentRecord, header HeaderInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extraction panic: %v", r)
		}
	}()

	if a.converter == nil {
		return DocumentRecord{}, HeaderInfo{}, fmt.Errorf("%w: no text converter configured", ErrConversion)
	}

	blob, err := a.converter.ToText(ctx, src)
	if err != nil {
		return DocumentRecord{}, HeaderInfo{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	record, header = Assemble(blob, override)
	return record, header, nil
}
