// Package export writes submission reports as JSON, CSV, Markdown, HTML or PDF.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/user/trimcrop-cli/db"
	"github.com/user/trimcrop-cli/pkg/timeutil"
)

// Format is a report file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

// Formats lists the supported formats in the order help text shows them.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatHTML, FormatPDF}
}

// ParseFormat accepts a format name or a file extension, with or without the dot.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported report format %q", s)
}

// unsafeChars matches characters not safe for filenames: / \ : * ? < > | and spaces
var unsafeChars = regexp.MustCompile(`[/\\:*?<>|\s]`)

// sanitize replaces unsafe filename characters with underscores.
func sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}

// BuildReportPath returns the output path for a report.
// Format: {dir}/submissions-{status|all}-{yyyymmdd-hhmmss}.{ext}
func BuildReportPath(dir, status string, at time.Time, format Format) string {
	if status == "" {
		status = "all"
	}
	name := fmt.Sprintf("submissions-%s-%s.%s", sanitize(status), at.Format("20060102-150405"), format)
	return filepath.Join(dir, name)
}

// Row is one submission flattened for tabular formats.
type Row struct {
	ID        string
	Status    string
	Title     string
	Source    string
	Range     string
	Length    string
	Ratio     string
	Crop      string
	Created   string
	Locator   string
	Error     string
	Submitted string
}

// Header is the column header for tabular formats.
var Header = []string{"ID", "Status", "Title", "Source", "Range", "Length", "Ratio", "Crop", "Created"}

// NewRow flattens s.
func NewRow(s db.Submission) Row {
	r := Row{
		ID:      strconv.FormatInt(s.ID, 10),
		Status:  s.Status,
		Title:   s.Title,
		Source:  s.SourceType,
		Range:   timeutil.FormatTime(s.StartTime) + " - " + timeutil.FormatTime(s.EndTime),
		Length:  timeutil.FormatTime(s.EndTime - s.StartTime),
		Ratio:   s.AspectRatio,
		Crop:    "none",
		Created: s.CreatedAt.Format("2006-01-02 15:04"),
		Locator: s.Locator,
		Error:   s.Error,
	}
	if s.Crop != nil {
		r.Crop = s.Crop.Filter()
	}
	if s.SubmittedAt != nil {
		r.Submitted = s.SubmittedAt.Format("2006-01-02 15:04")
	}
	return r
}

// Cells returns the values under Header.
func (r Row) Cells() []string {
	return []string{r.ID, r.Status, r.Title, r.Source, r.Range, r.Length, r.Ratio, r.Crop, r.Created}
}

// Write renders subs to w in format.
func Write(w io.Writer, subs []db.Submission, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if subs == nil {
			subs = []db.Submission{}
		}
		return enc.Encode(subs)
	case FormatCSV:
		return writeCSV(w, subs)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(subs))
		return err
	case FormatHTML:
		return writeHTML(w, subs)
	case FormatPDF:
		return writePDF(w, subs)
	}
	return fmt.Errorf("unsupported report format %q", format)
}

// WriteFile writes a report to path, creating parent directories.
func WriteFile(path string, subs []db.Submission, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := Write(f, subs, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, subs []db.Submission) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, Header...), "Locator", "Submitted", "Error")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range subs {
		r := NewRow(s)
		if err := cw.Write(append(r.Cells(), r.Locator, r.Submitted, r.Error)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
