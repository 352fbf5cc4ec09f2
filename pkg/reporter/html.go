package reporter

import (
	"bufio"
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yaklabco/wrapfix/pkg/analysis"
)

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>wrapfix report</title>
<style>
body { font-family: sans-serif; max-width: 72rem; margin: 2rem auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.5rem; }
pre { background: #f6f8fa; padding: 0.5rem; overflow-x: auto; }
</style>
</head>
<body>
`

const htmlTail = `</body>
</html>
`

// HTMLRenderer writes a standalone HTML page converted from the Markdown
// report.
type HTMLRenderer struct {
	opts     Options
	markdown *MarkdownRenderer
	md       goldmark.Markdown
}

// NewHTMLRenderer creates a new HTML renderer.
func NewHTMLRenderer(opts Options) *HTMLRenderer {
	return &HTMLRenderer{
		opts:     opts,
		markdown: NewMarkdownRenderer(opts),
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(_ context.Context, report *analysis.Report) (err error) {
	var src bytes.Buffer
	r.markdown.write(&src, report)

	bw := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if _, err := bw.WriteString(htmlHead); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	if err := r.md.Convert(src.Bytes(), bw); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	if _, err := bw.WriteString(htmlTail); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}
