// Package analysis aggregates a run into the views every reporter draws
// from: a flat site list, per-file and per-template tables, and totals.
package analysis

import (
	"cmp"
	"path/filepath"
	"slices"
	"time"

	"github.com/yaklabco/wrapfix/pkg/rewrite"
	"github.com/yaklabco/wrapfix/pkg/runner"
)

// ReportVersion is the version of the JSON report format.
const ReportVersion = "1.0.0"

// makeRelativePath converts an absolute path to a path relative to workDir.
// If workDir is empty or the conversion fails, returns the original path.
func makeRelativePath(absPath, workDir string) string {
	if workDir == "" {
		return absPath
	}
	relPath, err := filepath.Rel(workDir, absPath)
	if err != nil {
		return absPath
	}
	return relPath
}

// analysisContext holds intermediate state during analysis.
type analysisContext struct {
	templateMap   map[string]*TemplateAnalysis
	templateFiles map[string]map[string]bool
	files         []*FileAnalysis
	fileTemplates map[*FileAnalysis]map[string]bool
}

func newAnalysisContext() *analysisContext {
	return &analysisContext{
		templateMap:   make(map[string]*TemplateAnalysis),
		templateFiles: make(map[string]map[string]bool),
		fileTemplates: make(map[*FileAnalysis]map[string]bool),
	}
}

func (ctx *analysisContext) getOrCreateTemplate(name string) *TemplateAnalysis {
	if _, ok := ctx.templateMap[name]; !ok {
		ctx.templateMap[name] = &TemplateAnalysis{Template: name}
		ctx.templateFiles[name] = make(map[string]bool)
	}
	return ctx.templateMap[name]
}

func countStatus(status rewrite.Status, totals *Totals) {
	totals.Sites++
	switch status {
	case rewrite.StatusRewritten:
		totals.Rewritten++
	case rewrite.StatusAlreadyWrapped:
		totals.AlreadyWrapped++
	case rewrite.StatusUnresolved:
		totals.Unresolved++
	case rewrite.StatusAmbiguousType:
		totals.AmbiguousType++
	case rewrite.StatusConflict:
		totals.Conflict++
	}
}

// Analyze computes the report for a run result.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{
		Version:   ReportVersion,
		Timestamp: time.Now(),
	}
	if result == nil {
		return report
	}

	ctx := newAnalysisContext()
	for _, file := range result.Files {
		report.Totals.Files++
		displayPath := makeRelativePath(file.Path, opts.WorkingDir)

		if file.Error != nil {
			report.Totals.FilesErrored++
			report.Errors = append(report.Errors, FileError{FilePath: displayPath, Message: file.Error.Error()})
			continue
		}
		pr := file.Result
		if pr == nil {
			continue
		}
		if pr.Filtered != "" {
			report.Totals.FilesFiltered++
			if opts.IncludeQuiet {
				ctx.files = append(ctx.files, &FileAnalysis{Path: displayPath, Outcome: pr.Summary()})
			}
			continue
		}

		fa := &FileAnalysis{
			Path:    displayPath,
			Outcome: pr.Summary(),
			Written: pr.Written,
			Backup:  pr.Backup,
		}
		switch {
		case pr.Skipped:
			report.Totals.FilesSkipped++
		case pr.Changed():
			report.Totals.FilesChanged++
		}
		if pr.Written {
			report.Totals.FilesWritten++
		}
		if opts.IncludeDiffs && pr.Diff != nil {
			fa.Diff = pr.Diff.String()
		}
		ctx.fileTemplates[fa] = make(map[string]bool)

		for _, site := range pr.Sites {
			entry := SiteEntry{
				FilePath: displayPath,
				Template: site.Template,
				Status:   site.Status,
				Line:     site.Line,
				Subject:  site.Subject,
				Type:     site.TypeText,
				Renamed:  site.Renamed,
				Wrapper:  site.Wrapper,
				Reason:   site.Reason,
			}
			countStatus(site.Status, &report.Totals)

			fa.Sites++
			ta := ctx.getOrCreateTemplate(site.Template)
			ta.Sites++
			switch {
			case site.Status == rewrite.StatusRewritten:
				fa.Rewritten++
				ta.Rewritten++
			case site.Status == rewrite.StatusAlreadyWrapped:
				ta.AlreadyWrapped++
			default:
				fa.Skipped++
				ta.Skipped++
			}
			ctx.fileTemplates[fa][site.Template] = true
			ctx.templateFiles[site.Template][displayPath] = true

			if opts.IncludeSites {
				report.Sites = append(report.Sites, entry)
			}
		}

		if fa.Sites > 0 || opts.IncludeQuiet {
			ctx.files = append(ctx.files, fa)
		}
	}

	if opts.IncludeByTemplate {
		report.ByTemplate = ctx.buildByTemplate(opts)
	}
	if opts.IncludeByFile {
		report.ByFile = ctx.buildByFile(opts)
	}
	return report
}

func (ctx *analysisContext) buildByTemplate(opts Options) []TemplateAnalysis {
	result := make([]TemplateAnalysis, 0, len(ctx.templateMap))
	for name, ta := range ctx.templateMap {
		for f := range ctx.templateFiles[name] {
			ta.Files = append(ta.Files, f)
		}
		slices.Sort(ta.Files)
		result = append(result, *ta)
	}
	sortBy(result, opts, func(t TemplateAnalysis) (string, int, int) { return t.Template, t.Sites, t.Skipped })
	return result
}

func (ctx *analysisContext) buildByFile(opts Options) []FileAnalysis {
	result := make([]FileAnalysis, 0, len(ctx.files))
	for _, fa := range ctx.files {
		for name := range ctx.fileTemplates[fa] {
			fa.Templates = append(fa.Templates, name)
		}
		slices.Sort(fa.Templates)
		result = append(result, *fa)
	}
	sortBy(result, opts, func(f FileAnalysis) (string, int, int) { return f.Path, f.Sites, f.Skipped })
	return result
}

// sortBy orders rows by the configured field. key returns the row's name,
// site count and skipped count; ties always fall back to the name.
func sortBy[T any](rows []T, opts Options, key func(T) (string, int, int)) {
	slices.SortStableFunc(rows, func(left, right T) int {
		ln, lc, ls := key(left)
		rn, rc, rs := key(right)
		var result int
		switch opts.SortBy {
		case SortByAlpha:
			return cmp.Compare(ln, rn)
		case SortBySkipped:
			result = cmp.Compare(rs, ls)
		default: // SortByCount
			result = cmp.Compare(lc, rc)
			if opts.SortDesc {
				result = -result
			}
		}
		if result == 0 {
			result = cmp.Compare(ln, rn)
		}
		return result
	})
}
