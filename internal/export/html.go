package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/fyerfyer/cersai-digest/internal/extract"
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; margin: 0; padding: 20px; background-color: #f5f5f5; }
.container { max-width: 1200px; margin: 0 auto; background: white; padding: 30px; border-radius: 10px; box-shadow: 0 0 20px rgba(0,0,0,0.1); }
h1 { color: #2c3e50; text-align: center; border-bottom: 3px solid #2c3e50; padding-bottom: 20px; }
h2 { background: #34495e; color: white; padding: 10px 20px; border-radius: 6px; }
h4 { color: #34495e; border-bottom: 2px solid #3498db; padding-bottom: 5px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
th, td { border: 1px solid #ddd; padding: 8px 12px; text-align: left; word-break: break-word; }
td:first-child { font-weight: bold; color: #2c3e50; width: 30%; background: #f8f9fa; }
@media print { body { background: white; } .container { box-shadow: none; } }
</style>
</head>
<body>
<div class="container">
{{.Body}}
</div>
</body>
</html>
`))

// RenderHTML 把批处理结果渲染为独立的HTML页面
// 正文由Markdown转换而来
func RenderHTML(result *extract.BatchResult, generatedAt time.Time) ([]byte, error) {
	md := RenderMarkdown(result, generatedAt)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	body := markdown.Render(p.Parse(md), renderer)

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: ReportTitle,
		Body:  template.HTML(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render html: %w", err)
	}
	return buf.Bytes(), nil
}
