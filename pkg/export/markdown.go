package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/user/trimcrop-cli/db"
)

// Markdown renders subs as a GFM document: a summary table followed by failures.
func Markdown(subs []db.Submission) string {
	var b strings.Builder
	b.WriteString("# Submissions\n\n")
	if len(subs) == 0 {
		b.WriteString("No submissions.\n")
		return b.String()
	}

	counts := map[string]int{}
	for _, s := range subs {
		counts[s.Status]++
	}
	fmt.Fprintf(&b, "%d total: %d pending, %d submitted, %d failed.\n\n",
		len(subs), counts[db.StatusPending], counts[db.StatusSubmitted], counts[db.StatusFailed])

	b.WriteString("| " + strings.Join(Header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(Header)) + "\n")
	for _, s := range subs {
		cells := NewRow(s).Cells()
		for i, c := range cells {
			cells[i] = escapeCell(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	var failed []db.Submission
	for _, s := range subs {
		if s.Status == db.StatusFailed && s.Error != "" {
			failed = append(failed, s)
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, s := range failed {
			fmt.Fprintf(&b, "### #%d %s\n\n```\n%s\n```\n\n", s.ID, s.Title, s.Error)
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Submissions</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; line-height: 1.6; }
pre { background: #f4f4f4; padding: 16px; border-radius: 8px; overflow-x: auto; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
th { background: #f8f8f8; }
</style>
</head>
<body>
`

func writeHTML(w io.Writer, subs []db.Submission) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Table),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)

	var buf bytes.Buffer
	buf.WriteString(htmlHead)
	if err := md.Convert([]byte(Markdown(subs)), &buf); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	buf.WriteString("</body>\n</html>\n")
	_, err := buf.WriteTo(w)
	return err
}
