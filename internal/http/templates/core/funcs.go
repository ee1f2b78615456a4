package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/domain/catalog"
	"github.com/kjsce/kj-connect/internal/http/uiutil"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
	Now                func() time.Time
}

// Funcs returns the helpers available to every template.
func Funcs(deps Deps) template.FuncMap {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	funcs := template.FuncMap{
		"sectionTmpl":  deps.ContentTemplateFor,
		"friendlyTime": func(t time.Time) string { return uiutil.FriendlyRelativeTime(t, now()) },
		"timeTag":      timeTag,
		"eventDate":    uiutil.FormatEventDate,
		"truncateText": uiutil.TruncateWithEllipsis,
		"typeTitle":    typeTitle,
		"typeBadge":    typeBadge,
		"roleLabel":    func(r auth.Role) string { return r.Label() },
		"fieldError":   fieldError,
		"contains":     strings.Contains,
		"add":          func(a, b int) int { return a + b },
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - rendered by our own html/template set; values were escaped during execution.
		return template.HTML(buf.String()), nil
	}

	funcs["toJSON"] = func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func timeTag(t time.Time) template.HTML {
	if t.IsZero() {
		return ""
	}
	// #nosec G203 - every interpolated value is escaped
	return template.HTML(fmt.Sprintf(
		"<time datetime=\"%s\" title=\"%s\">%s</time>",
		t.UTC().Format(time.RFC3339),
		template.HTMLEscapeString(t.Local().Format(time.RFC1123)),
		template.HTMLEscapeString(uiutil.FormatFriendlyDateTime(t)),
	))
}

// typeTitle capitalizes event and exam file type values for display.
func typeTitle(v any) string {
	switch t := v.(type) {
	case catalog.EventType:
		return t.Title()
	case catalog.ExamFileType:
		return catalog.EventType(t).Title()
	case string:
		return catalog.EventType(t).Title()
	default:
		return fmt.Sprint(v)
	}
}

// typeBadge maps a listing type to its badge class.
func typeBadge(v any) string {
	switch fmt.Sprint(v) {
	case string(catalog.EventTypeHackathon):
		return "badge-hackathon"
	case string(catalog.EventTypeWorkshop):
		return "badge-workshop"
	case string(catalog.EventTypeInternship):
		return "badge-internship"
	case string(catalog.ExamFileTimetable):
		return "badge-timetable"
	case string(catalog.ExamFileResult):
		return "badge-result"
	default:
		return "badge-light"
	}
}

// fieldError looks up the message for field in a map of field errors.
func fieldError(errs map[string]string, field string) string {
	if errs == nil {
		return ""
	}
	return errs[field]
}
