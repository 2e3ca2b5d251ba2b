package analysis

import (
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/model"
)

// RenderReport formats a structured analysis as a Markdown document.
func RenderReport(title string, r *model.AnalysisResult) (string, error) {
	if r == nil {
		return "", eris.New("analysis: nothing to render")
	}

	var buf strings.Builder
	md := markdown.NewMarkdown(&buf)

	md.H1(title)
	md.PlainText("")

	md.H2("Summary")
	md.PlainText("")
	md.PlainText(orNone(r.Summary))
	md.PlainText("")

	md.H2("Key Points")
	md.PlainText("")
	writeList(md, r.KeyPoints)

	md.H2("Entities")
	md.PlainText("")
	writeList(md, r.Entities)

	md.H2("Sentiment")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Label", "Key Points", "Entities"},
		Rows: [][]string{{
			string(r.Sentiment),
			strconv.Itoa(len(r.KeyPoints)),
			strconv.Itoa(len(r.Entities)),
		}},
	})

	if err := md.Build(); err != nil {
		return "", eris.Wrap(err, "analysis: render report")
	}
	return buf.String(), nil
}

func writeList(md *markdown.Markdown, items []string) {
	if len(items) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}
	md.BulletList(items...)
	md.PlainText("")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None."
	}
	return s
}
