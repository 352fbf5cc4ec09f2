package fix

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ValidationError describes an invalid edit.
type ValidationError struct {
	Label   string
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s: invalid edit [%d:%d]: %s", e.Label, e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
	}
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
}

// ConflictError describes a group whose span overlaps an accepted one.
type ConflictError struct {
	Group    Group
	Accepted Group
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s [%d:%d] overlaps %s [%d:%d]",
		e.Group.Label, e.Group.Start, e.Group.End,
		e.Accepted.Label, e.Accepted.Start, e.Accepted.End)
}

// Rejected pairs a group that will not be applied with the reason.
type Rejected struct {
	Group Group
	Err   error
}

// ValidateEdits checks that all edits have valid ranges for the given content length.
func ValidateEdits(edits []TextEdit, contentLen int) error {
	for _, edit := range edits {
		switch {
		case edit.StartOffset < 0:
			return &ValidationError{Edit: edit, Message: "start offset is negative"}
		case edit.EndOffset < edit.StartOffset:
			return &ValidationError{Edit: edit, Message: "end offset is before start offset"}
		case edit.EndOffset > contentLen:
			return &ValidationError{
				Edit:    edit,
				Message: fmt.Sprintf("end offset %d exceeds content length %d", edit.EndOffset, contentLen),
			}
		}
	}
	return nil
}

// SortEdits orders edits by start offset, then end offset. Inserts sort
// before a replacement that starts at the same offset.
func SortEdits(edits []TextEdit) {
	slices.SortStableFunc(edits, func(a, b TextEdit) int {
		return cmp.Or(
			cmp.Compare(a.StartOffset, b.StartOffset),
			cmp.Compare(a.EndOffset, b.EndOffset),
		)
	})
}

// DetectConflicts checks a sorted slice for overlapping edits. Two inserts
// at the same offset also conflict, since their order would be ambiguous.
func DetectConflicts(edits []TextEdit) error {
	for i := 1; i < len(edits); i++ {
		prev, curr := edits[i-1], edits[i]
		if curr.StartOffset < prev.EndOffset || (prev.IsInsert() && curr.IsInsert() && prev.StartOffset == curr.StartOffset) {
			return &ValidationError{
				Edit:    curr,
				Message: fmt.Sprintf("overlaps edit [%d:%d]", prev.StartOffset, prev.EndOffset),
			}
		}
	}
	return nil
}

// PrepareEdits validates, sorts, and checks for conflicts.
func PrepareEdits(edits []TextEdit, contentLen int) ([]TextEdit, error) {
	if len(edits) == 0 {
		return nil, nil
	}
	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, err
	}

	sorted := slices.Clone(edits)
	SortEdits(sorted)
	if err := DetectConflicts(sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}

// ValidateGroup checks a group's edits against the content length, its
// own span, and each other.
func ValidateGroup(g Group, contentLen int) error {
	if g.Start < 0 || g.End < g.Start || g.End > contentLen {
		return &ValidationError{
			Label:   g.Label,
			Edit:    TextEdit{StartOffset: g.Start, EndOffset: g.End},
			Message: "span out of range",
		}
	}
	for _, edit := range g.Edits {
		if edit.StartOffset < g.Start || edit.EndOffset > g.End {
			return &ValidationError{Label: g.Label, Edit: edit, Message: "edit outside its site span"}
		}
	}
	if _, err := PrepareEdits(g.Edits, contentLen); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Label = g.Label
		}
		return err
	}
	return nil
}

// PrepareGroups validates groups and resolves overlaps first-wins by span
// start. It returns the accepted edits, sorted and ready for ApplyEdits,
// together with the groups that were rejected.
func PrepareGroups(groups []Group, contentLen int) ([]TextEdit, []Rejected) {
	ordered := slices.Clone(groups)
	slices.SortStableFunc(ordered, func(a, b Group) int {
		return cmp.Compare(a.Start, b.Start)
	})

	var (
		edits    []TextEdit
		rejected []Rejected
		last     *Group
	)
	for i := range ordered {
		g := ordered[i]
		if err := ValidateGroup(g, contentLen); err != nil {
			rejected = append(rejected, Rejected{Group: g, Err: err})
			continue
		}
		if last != nil && g.Overlaps(*last) {
			rejected = append(rejected, Rejected{Group: g, Err: &ConflictError{Group: g, Accepted: *last}})
			continue
		}
		edits = append(edits, g.Edits...)
		last = &ordered[i]
	}

	SortEdits(edits)
	return edits, rejected
}
