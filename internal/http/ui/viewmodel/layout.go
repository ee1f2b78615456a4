package viewmodel

import "github.com/kjsce/kj-connect/internal/domain/notify"

// User represents the logged-in identity exposed to templates.
type User struct {
	Name      string
	Email     string
	Role      string
	RoleLabel string
}

// Toast is one queued notification rendered on the page.
type Toast struct {
	Severity string
	Message  string
}

// ToastsFrom converts drained notifications into toasts, oldest first.
func ToastsFrom(ns []notify.Notification) []Toast {
	if len(ns) == 0 {
		return nil
	}
	out := make([]Toast, 0, len(ns))
	for _, n := range ns {
		out = append(out, Toast{Severity: string(n.Severity), Message: n.Message})
	}
	return out
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	CanPostEvent    bool
	CanPostExamFile bool
	User            *User
	Toasts          []Toast
}
