package fix

import (
	"fmt"
	"strings"
)

// Diff is a line-oriented unified diff between two versions of a file.
type Diff struct {
	// Path is the file path for the diff header.
	Path string

	// Hunks contains the diff hunks.
	Hunks []DiffHunk

	// Additions is the number of lines added.
	Additions int

	// Deletions is the number of lines deleted.
	Deletions int
}

// DiffHunk represents a single hunk in a unified diff.
type DiffHunk struct {
	// OriginalStart is the 1-based line number where the hunk starts in the original.
	OriginalStart int

	// OriginalCount is the number of lines from the original in this hunk.
	OriginalCount int

	// ModifiedStart is the 1-based line number where the hunk starts in the modified.
	ModifiedStart int

	// ModifiedCount is the number of lines from the modified in this hunk.
	ModifiedCount int

	// Lines contains the diff lines in this hunk.
	Lines []DiffLine
}

// DiffLine represents a single line in a diff hunk.
type DiffLine struct {
	Kind    DiffLineKind
	Content string
}

// DiffLineKind indicates the type of diff line.
type DiffLineKind int

const (
	// DiffLineContext is an unchanged context line.
	DiffLineContext DiffLineKind = iota

	// DiffLineAdd is a line added in the modified version.
	DiffLineAdd

	// DiffLineRemove is a line removed from the original version.
	DiffLineRemove
)

// contextLines is the number of unchanged lines shown around a change.
const contextLines = 3

// GenerateDiff creates a unified diff between original and modified.
// Returns nil when the contents are identical.
func GenerateDiff(path, original, modified string) *Diff {
	if original == modified {
		return nil
	}

	ops := diffLines(splitLines(original), splitLines(modified))
	hunks := buildHunks(ops)
	if len(hunks) == 0 {
		return nil
	}

	diff := &Diff{Path: path, Hunks: hunks}
	for _, op := range ops {
		switch op.kind {
		case DiffLineAdd:
			diff.Additions++
		case DiffLineRemove:
			diff.Deletions++
		}
	}
	return diff
}

// GitHeader returns the "diff --git" header line.
func (d *Diff) GitHeader() string {
	if d == nil {
		return ""
	}
	path := strings.TrimPrefix(d.Path, "/")
	return fmt.Sprintf("diff --git a/%s b/%s", path, path)
}

// String returns the diff in unified format without the git header.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range d.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OriginalStart, h.OriginalCount, h.ModifiedStart, h.ModifiedCount)
		for _, line := range h.Lines {
			b.WriteByte(" +-"[line.Kind])
			b.WriteString(line.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// FullString returns the complete diff including the git header.
func (d *Diff) FullString() string {
	if !d.HasChanges() {
		return ""
	}
	return d.GitHeader() + "\n" + d.String()
}

// HasChanges returns true if the diff contains any changes.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// splitLines splits on "\n", dropping the empty element after a final newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// diffOp is one line of the edit script. orig and mod are 0-based line
// indexes into the respective inputs, or -1 when not applicable.
type diffOp struct {
	kind DiffLineKind
	text string
	orig int
	mod  int
}

// diffLines computes an edit script. The common prefix and suffix are
// stripped first so the quadratic LCS table only covers the changed middle.
func diffLines(a, b []string) []diffOp {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	ops := make([]diffOp, 0, len(a)+len(b))
	for i := range prefix {
		ops = append(ops, diffOp{kind: DiffLineContext, text: a[i], orig: i, mod: i})
	}

	midA, midB := a[prefix:len(a)-suffix], b[prefix:len(b)-suffix]
	n, m := len(midA), len(midB)

	// lcs[i][j] is the LCS length of midA[i:] and midB[j:].
	lcs := make([][]int32, n+1)
	for i := range lcs {
		lcs[i] = make([]int32, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if midA[i] == midB[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && midA[i] == midB[j]:
			ops = append(ops, diffOp{kind: DiffLineContext, text: midA[i], orig: prefix + i, mod: prefix + j})
			i++
			j++
		case i < n && (j == m || lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, diffOp{kind: DiffLineRemove, text: midA[i], orig: prefix + i, mod: -1})
			i++
		default:
			ops = append(ops, diffOp{kind: DiffLineAdd, text: midB[j], orig: -1, mod: prefix + j})
			j++
		}
	}

	for k := range suffix {
		oi, mi := len(a)-suffix+k, len(b)-suffix+k
		ops = append(ops, diffOp{kind: DiffLineContext, text: a[oi], orig: oi, mod: mi})
	}
	return ops
}

// buildHunks groups changed lines with up to contextLines of context,
// merging changes whose context would touch.
func buildHunks(ops []diffOp) []DiffHunk {
	var hunks []DiffHunk
	for i := 0; i < len(ops); {
		if ops[i].kind == DiffLineContext {
			i++
			continue
		}

		start := max(0, i-contextLines)
		end := i
		for end < len(ops) {
			if ops[end].kind != DiffLineContext {
				end++
				continue
			}
			run := end
			for run < len(ops) && ops[run].kind == DiffLineContext {
				run++
			}
			if run == len(ops) || run-end > 2*contextLines {
				end = min(len(ops), end+contextLines)
				break
			}
			end = run
		}

		hunks = append(hunks, makeHunk(ops[start:end]))
		i = end
	}
	return hunks
}

// makeHunk derives line ranges from the ops. A side with no lines keeps
// start 0, which only happens when that side of the file is empty.
func makeHunk(ops []diffOp) DiffHunk {
	var h DiffHunk
	for _, op := range ops {
		h.Lines = append(h.Lines, DiffLine{Kind: op.kind, Content: op.text})
		if op.orig >= 0 {
			if h.OriginalCount == 0 {
				h.OriginalStart = op.orig + 1
			}
			h.OriginalCount++
		}
		if op.mod >= 0 {
			if h.ModifiedCount == 0 {
				h.ModifiedStart = op.mod + 1
			}
			h.ModifiedCount++
		}
	}
	return h
}
