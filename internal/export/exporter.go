package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/cersai-digest/internal/extract"
)

// ReportTitle 导出文档的标题
const ReportTitle = "CERSAI Report Summary"

// ErrUnsupportedFormat 不支持的导出格式
var ErrUnsupportedFormat = errors.New("Invalid format")

// Format 导出格式
type Format string

const (
	FormatHTML     Format = "html"
	FormatExcel    Format = "excel"
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
)

// ParseFormat 解析导出格式，大小写不敏感
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatHTML, FormatExcel, FormatPDF, FormatMarkdown:
		return f, nil
	}
	return "", ErrUnsupportedFormat
}

// Document 渲染后的导出文档
type Document struct {
	Data        []byte
	ContentType string
	FileName    string // 为空时直接内联返回
}

// Exporter 把批处理结果渲染为各种导出格式
type Exporter struct {
	now    func() time.Time
	logger *logrus.Logger
}

// Option 导出器配置选项
type Option func(*Exporter)

// WithClock 设置生成时间的来源
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter 创建导出器
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		now:    time.Now,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render 按格式渲染批处理结果，id用于生成附件文件名
func (e *Exporter) Render(format Format, result *extract.BatchResult, id string) (*Document, error) {
	if result == nil {
		return nil, fmt.Errorf("nothing to export")
	}

	generatedAt := e.now()
	var (
		doc *Document
		err error
	)

	switch format {
	case FormatHTML:
		var data []byte
		data, err = RenderHTML(result, generatedAt)
		doc = &Document{Data: data, ContentType: "text/html; charset=utf-8"}
	case FormatMarkdown:
		doc = &Document{
			Data:        RenderMarkdown(result, generatedAt),
			ContentType: "text/markdown; charset=utf-8",
			FileName:    fmt.Sprintf("summary_%s.md", id),
		}
	case FormatExcel:
		var data []byte
		data, err = RenderExcel(result)
		doc = &Document{
			Data:        data,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			FileName:    fmt.Sprintf("summary_%s.xlsx", id),
		}
	case FormatPDF:
		var data []byte
		data, err = RenderPDF(result, generatedAt)
		doc = &Document{
			Data:        data,
			ContentType: "application/pdf",
			FileName:    fmt.Sprintf("summary_%s.pdf", id),
		}
	default:
		return nil, ErrUnsupportedFormat
	}

	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"format": format,
			"id":     id,
		}).WithError(err).Error("Failed to render export")
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"format": format,
		"id":     id,
		"bytes":  len(doc.Data),
		"assets": len(result.Assets),
	}).Debug("Summary exported")

	return doc, nil
}

// row 一行键值
type row struct {
	Label string
	Value string
}

type fieldLabel struct {
	Key   string
	Label string
}

// 导出时展示的资产字段及顺序
var assetLabels = []fieldLabel{
	{extract.FieldAssetID, "Asset ID"},
	{extract.FieldPlotID, "Plot ID"},
	{extract.FieldSurveyNo, "Survey Number"},
	{extract.FieldHouseID, "House ID"},
	{extract.FieldFloorNo, "Floor Number"},
	{extract.FieldBuildingNo, "Building Number"},
	{extract.FieldBuildingName, "Building Name"},
	{extract.FieldBuildupArea, "Buildup Area"},
	{extract.FieldStreetName, "Street Name"},
	{extract.FieldLocality, "Locality"},
	{extract.FieldLandmark, "Landmark"},
	{extract.FieldBlockNo, "Block Number"},
	{extract.FieldVillage, "Village/Town"},
	{extract.FieldTaluka, "Taluka"},
	{extract.FieldDistrict, "District"},
	{extract.FieldPinCode, "Pin Code"},
	{extract.FieldState, "State"},
}

// 导出时展示的担保权益字段及顺序
var securityLabels = []fieldLabel{
	{extract.FieldSecurityInterestID, "Security Interest ID"},
	{extract.FieldSecurityInterestType, "Security Interest Type"},
	{extract.FieldSICreationDate, "SI Creation Date"},
	{extract.FieldChargeHolderNameAmount, "Charge Holder & Amount"},
	{extract.FieldChargeStatus, "Is assetUnder Charge?/ Ranking of Charge"},
	{extract.FieldChargeReleaseDate, "Charge Release Date"},
	{extract.FieldBorrowerType, "Borrower Type"},
	{extract.FieldBorrowers, "Borrowers"},
	{extract.FieldSubBorrower, "Sub Borrower"},
	{extract.FieldThirdPartyMortgagees, "Third Party Mortgagees"},
}

func companyRows(h extract.HeaderInfo) []row {
	return []row{
		{"Company Name", h.NameOfCompany},
		{"CIN Number", h.CINNumber},
		{"Search Reference ID", h.SearchReferenceID},
		{"Date of Incorporation", h.DateOfIncorporation},
		{"UDIN", h.UDIN},
		{"Registered Office", h.RegisteredOffice},
	}
}

// fieldRows 按标签表取值，缺失的字段留空
func fieldRows(fields extract.Fields, labels []fieldLabel) []row {
	rows := make([]row, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, row{Label: l.Label, Value: fields[l.Key]})
	}
	return rows
}

func failureRows(f *extract.ErrorRecord) []row {
	return []row{
		{"Error", f.Error},
		{"Details", f.Details},
	}
}

const timeLayout = "2006-01-02 15:04:05"
