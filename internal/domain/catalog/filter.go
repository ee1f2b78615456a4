package catalog

import (
	"slices"
	"sort"
	"strings"
)

// FilterAll is the sentinel value that disables a type or department filter.
const FilterAll = "all"

// EventFilter narrows the event listing.
// Type is "all" (or empty) or an EventType. Search matches title, description,
// committee, and location case-insensitively.
type EventFilter struct {
	Type   string
	Search string
}

// Match reports whether e passes the filter.
func (f EventFilter) Match(e Event) bool {
	if t := normalizeSelector(f.Type); t != FilterAll && string(e.Type) != t {
		return false
	}
	return containsFold(strings.TrimSpace(f.Search), e.Title, e.Description, e.Committee, e.Location)
}

// Apply returns the events passing the filter, preserving order.
func (f EventFilter) Apply(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// ExamFileFilter narrows the exam file listing.
// Type and Department are "all" (or empty) or an exact value. Search matches
// title, department, and semester case-insensitively.
type ExamFileFilter struct {
	Type       string
	Department string
	Search     string
}

// Match reports whether f passes the filter.
func (f ExamFileFilter) Match(file ExamFile) bool {
	if t := normalizeSelector(f.Type); t != FilterAll && string(file.Type) != t {
		return false
	}
	if d := strings.TrimSpace(f.Department); d != "" && d != FilterAll && file.Department != d {
		return false
	}
	return containsFold(strings.TrimSpace(f.Search), file.Title, file.Department, file.Semester)
}

// Apply returns the files passing the filter, preserving order.
func (f ExamFileFilter) Apply(files []ExamFile) []ExamFile {
	out := make([]ExamFile, 0, len(files))
	for _, file := range files {
		if f.Match(file) {
			out = append(out, file)
		}
	}
	return out
}

// DepartmentsOf returns the sorted unique departments present in files.
func DepartmentsOf(files []ExamFile) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f.Department]; ok {
			continue
		}
		seen[f.Department] = struct{}{}
		out = append(out, f.Department)
	}
	sort.Strings(out)
	return out
}

// FeaturedEvents returns the most recently created event of each type, in display order.
func FeaturedEvents(events []Event) []Event {
	out := make([]Event, 0, len(EventTypes()))
	for _, t := range EventTypes() {
		var (
			best  Event
			found bool
		)
		for _, e := range events {
			if e.Type != t {
				continue
			}
			if !found || e.CreatedAt.After(best.CreatedAt) {
				best, found = e, true
			}
		}
		if found {
			out = append(out, best)
		}
	}
	return out
}

// RecentExamFiles returns up to n files, newest upload first.
func RecentExamFiles(files []ExamFile, n int) []ExamFile {
	sorted := slices.Clone(files)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UploadedAt.After(sorted[j].UploadedAt)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func normalizeSelector(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return FilterAll
	}
	return v
}

func containsFold(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
