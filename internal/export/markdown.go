package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/fyerfyer/cersai-digest/internal/extract"
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	`|`, `\|`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
	`<`, `&lt;`,
	`>`, `&gt;`,
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// RenderMarkdown 把批处理结果渲染为Markdown
func RenderMarkdown(result *extract.BatchResult, generatedAt time.Time) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", ReportTitle)
	fmt.Fprintf(&buf, "Generated on %s\n\n", generatedAt.Format(timeLayout))

	buf.WriteString("## Company Details\n\n")
	writeTable(&buf, companyRows(result.Company))

	if len(result.Assets) == 0 {
		return buf.Bytes()
	}

	buf.WriteString("## Asset Details\n\n")
	for i, entry := range result.Assets {
		fmt.Fprintf(&buf, "### Asset %d\n\n", i+1)
		if entry.Failed() {
			writeTable(&buf, failureRows(entry.Failure))
			continue
		}
		buf.WriteString("#### Asset Details\n\n")
		writeTable(&buf, fieldRows(entry.Record.Asset, assetLabels))
		buf.WriteString("#### Security Interest Details\n\n")
		writeTable(&buf, fieldRows(entry.Record.Security, securityLabels))
	}

	return buf.Bytes()
}

func writeTable(buf *bytes.Buffer, rows []row) {
	buf.WriteString("| Field | Value |\n")
	buf.WriteString("| --- | --- |\n")
	for _, r := range rows {
		fmt.Fprintf(buf, "| %s | %s |\n", mdEscaper.Replace(r.Label), mdEscaper.Replace(r.Value))
	}
	buf.WriteString("\n")
}
