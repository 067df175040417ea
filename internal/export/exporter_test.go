package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fyerfyer/cersai-digest/internal/document"
	"github.com/fyerfyer/cersai-digest/internal/extract"
)

var fixedTime = time.Date(2024, 5, 6, 10, 30, 0, 0, time.UTC)

func sampleResult() *extract.BatchResult {
	return &extract.BatchResult{
		Company: extract.HeaderInfo{
			NameOfCompany:       "APRN ENTERPRISES PRIVATE LIMITED",
			CINNumber:           "U21000MH1994PTC084095",
			SearchReferenceID:   "202400123456",
			DateOfIncorporation: "28.12.1994",
			UDIN:                "-",
			RegisteredOffice:    "LOWER PAREL MUMBAI, 400013.",
		},
		Assets: []extract.AssetEntry{
			{Record: &extract.DocumentRecord{
				Asset: extract.Fields{
					extract.FieldAssetID:     "200045678901",
					extract.FieldPlotID:      "12A",
					extract.FieldBuildupArea: "1500.00 Square Feet",
					extract.FieldPinCode:     "400013",
				},
				Security: extract.Fields{
					extract.FieldSecurityInterestID:     "400012345678",
					extract.FieldChargeHolderNameAmount: "STATE BANK OF INDIA Rs. 3744.00 Lakhs",
					extract.FieldChargeStatus:           "Yes First charge",
					extract.FieldBorrowers:              "ACME | PARTNERS (Maharashtra, PIN: 400013)",
				},
			}},
			{Failure: &extract.ErrorRecord{
				Error:   "Failed to process file: bad.pdf",
				Details: "document conversion failed: no text content found in PDF",
			}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"html", "excel", "pdf", "markdown", " PDF "} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, "Invalid format", err.Error())
}

func TestRenderMarkdown(t *testing.T) {
	md := string(RenderMarkdown(sampleResult(), fixedTime))

	assert.True(t, strings.HasPrefix(md, "# CERSAI Report Summary\n"))
	assert.Contains(t, md, "Generated on 2024-05-06 10:30:00")
	assert.Contains(t, md, "| Company Name | APRN ENTERPRISES PRIVATE LIMITED |")
	assert.Contains(t, md, "| Asset ID | 200045678901 |")
	assert.Contains(t, md, "| Buildup Area | 1500.00 Square Feet |")
	// 缺失的字段留空
	assert.Contains(t, md, "| House ID |  |")
	// 表格分隔符需要转义
	assert.Contains(t, md, `ACME \| PARTNERS`)
	assert.Contains(t, md, "### Asset 2")
	assert.Contains(t, md, "| Error | Failed to process file: bad.pdf |")
}

func TestRenderHTML(t *testing.T) {
	result := sampleResult()
	result.Company.RegisteredOffice = "<script>alert(1)</script>"

	out, err := RenderHTML(result, fixedTime)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<title>CERSAI Report Summary</title>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "200045678901")
	assert.Contains(t, html, "PARTNERS")
	assert.Contains(t, html, "Failed to process file: bad.pdf")
	assert.NotContains(t, html, "<script>")
}

func TestRenderExcel(t *testing.T) {
	data, err := RenderExcel(sampleResult())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{companySheet, assetSheet}, f.GetSheetList())

	company, err := f.GetRows(companySheet)
	require.NoError(t, err)
	require.Len(t, company, 2)
	assert.Equal(t, companyColumns, company[0])
	assert.Equal(t, "202400123456", company[1][2])

	assets, err := f.GetRows(assetSheet)
	require.NoError(t, err)
	require.Len(t, assets, 3)
	assert.Equal(t, "Asset_Index", assets[0][0])
	assert.Equal(t, "Asset_ID", assets[0][1])
	assert.Equal(t, "Third_Party_Mortgagees", assets[0][len(assetColumns)])
	assert.Equal(t, "1", assets[1][0])
	assert.Equal(t, "200045678901", assets[1][1])
	assert.Contains(t, assets[1], "Yes First charge")
	// 失败条目只有序号
	assert.Equal(t, []string{"2"}, assets[2])
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF(sampleResult(), fixedTime)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	pages, err := document.NewPDFParser().ParseReader(bytes.NewReader(data), "summary.pdf")
	require.NoError(t, err)
	text := strings.Join(pages, "\n")
	assert.Contains(t, text, "CERSAI Report Summary")
	assert.Contains(t, text, "200045678901")
	assert.Contains(t, text, "Security Interest Details")
	assert.Contains(t, text, "Failed to process file: bad.pdf")
}

func TestExporter_Render(t *testing.T) {
	e := NewExporter(WithClock(func() time.Time { return fixedTime }))

	tests := []struct {
		format      Format
		contentType string
		fileName    string
	}{
		{FormatHTML, "text/html; charset=utf-8", ""},
		{FormatMarkdown, "text/markdown; charset=utf-8", "summary_r1.md"},
		{FormatExcel, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "summary_r1.xlsx"},
		{FormatPDF, "application/pdf", "summary_r1.pdf"},
	}
	for _, tt := range tests {
		doc, err := e.Render(tt.format, sampleResult(), "r1")
		require.NoError(t, err, tt.format)
		assert.Equal(t, tt.contentType, doc.ContentType)
		assert.Equal(t, tt.fileName, doc.FileName)
		assert.NotEmpty(t, doc.Data)
	}

	_, err := e.Render(Format("docx"), sampleResult(), "r1")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = e.Render(FormatHTML, nil, "r1")
	assert.Error(t, err)
}
