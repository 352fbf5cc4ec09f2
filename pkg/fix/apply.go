package fix

import "strings"

// ApplyEdits materializes edits over content in a single forward pass.
// Edits must be sorted and non-overlapping (see PrepareEdits and
// PrepareGroups). Every offset refers to the original content, so the
// result equals splicing the edits in descending offset order.
func ApplyEdits(content string, edits []TextEdit) string {
	if len(edits) == 0 {
		return content
	}

	size := len(content)
	for _, e := range edits {
		size += len(e.NewText) - (e.EndOffset - e.StartOffset)
	}

	var out strings.Builder
	out.Grow(size)

	cursor := 0
	for _, e := range edits {
		out.WriteString(content[cursor:e.StartOffset])
		out.WriteString(e.NewText)
		cursor = e.EndOffset
	}
	out.WriteString(content[cursor:])

	return out.String()
}
