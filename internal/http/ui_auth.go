package httpx

import (
	"net/http"
	"strings"
)

const msgSessionUnavailable = "Your session is unavailable. Please reload the page."

// DemoAccount is one row of the demo credentials listed under the login form.
type DemoAccount struct {
	Role   string
	Email  string
	Secret string
}

func (h *UIHandlers) demoAccounts() []DemoAccount {
	if h.DemoSecret == "" {
		return nil
	}
	out := make([]DemoAccount, 0, len(h.Accounts))
	for _, a := range h.Accounts {
		out = append(out, DemoAccount{Role: a.Role.Label(), Email: a.Email, Secret: h.DemoSecret})
	}
	return out
}

// LoginPage renders the login form. Clients that are already logged in go home.
// GET /login.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := CurrentIdentity(r.Context()); ok {
		http.Redirect(w, r, PathHome, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, "")
}

func (h *UIHandlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, email string) {
	data := NewTemplateData(r, PageMeta{
		Title:       "Login - KJ Connect",
		PageTitle:   "Login to KJ CONNECT",
		CurrentPage: PageLogin,
	}).
		With("Email", email).
		With("DemoAccounts", h.demoAccounts()).
		Build()
	h.render(w, r, status, data)
}

// Login checks the submitted credentials against the credential table. Success goes
// home; failure re-renders the form with the failure toast.
// POST /login.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	manager := GetSessionManager(r.Context())
	if manager == nil {
		http.Error(w, msgSessionUnavailable, http.StatusServiceUnavailable)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	secret := r.PostFormValue("password")

	ok, err := manager.LoginAsync(r.Context(), email, secret).Await(r.Context())
	if err != nil {
		// The client went away; the login may still apply to its slot.
		h.logger().DebugContext(r.Context(), "login request abandoned", "error", err)
		return
	}
	if !ok {
		h.renderLogin(w, r, http.StatusUnauthorized, email)
		return
	}
	http.Redirect(w, r, PathHome, http.StatusSeeOther)
}

// Logout ends the client's session and returns to the login page.
// POST /logout.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if manager := GetSessionManager(r.Context()); manager != nil {
		manager.Logout(r.Context())
	}
	http.Redirect(w, r, PathLogin, http.StatusSeeOther)
}
