package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/SchoolClinic/internal/view"
)

// AuthService defines the authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Login records username as the logged-in user when the credentials match.
	Login(ctx context.Context, username, password string) error
	// Signup creates a new account without logging it in.
	Signup(ctx context.Context, username, password, confirmPassword string) error
	// Logout clears the current session.
	Logout(ctx context.Context) error
}

// AuthHandler handles the login, signup and logout forms.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	Views       Renderer
	Logger      *zap.Logger
}

// Login handles POST /login. On success the user lands on the dashboard;
// otherwise the login form is shown again with the reason.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")

	if err := h.AuthService.Login(r.Context(), username, r.PostFormValue("password")); err != nil {
		status, msg, ok := userError(err)
		if !ok {
			logger(h.Logger).Error("login failed", zap.Error(err))
		}
		h.render(w, status, view.Login, view.LoginView{
			Layout:   view.Layout{Title: "Login", Notice: view.ErrorNotice(msg)},
			Username: username,
		})
		return
	}
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// Signup handles POST /signup. A new account is sent to the login page.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")

	err := h.AuthService.Signup(r.Context(), username, r.PostFormValue("password"), r.PostFormValue("confirmPassword"))
	if err != nil {
		status, msg, ok := userError(err)
		if !ok {
			logger(h.Logger).Error("signup failed", zap.Error(err))
		}
		h.render(w, status, view.Signup, view.SignupView{
			Layout:   view.Layout{Title: "Sign Up", Notice: view.ErrorNotice(msg)},
			Username: username,
		})
		return
	}
	http.Redirect(w, r, "/login?notice="+view.NoticeSignedUp, http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context()); err != nil {
		logger(h.Logger).Error("logout failed", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) render(w http.ResponseWriter, status int, page view.Page, data any) {
	if err := h.Views.Render(w, status, page, data); err != nil {
		logger(h.Logger).Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
