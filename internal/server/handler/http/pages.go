// Package http serves the clinic's pages and form submissions.
package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/SchoolClinic/internal/middleware"
	"github.com/atinyakov/SchoolClinic/internal/models"
	"github.com/atinyakov/SchoolClinic/internal/view"
)

// ClinicService defines the catalog and dispensing operations the
// handlers need.
type ClinicService interface {
	Dashboard(ctx context.Context) (models.Dashboard, error)
	Students(ctx context.Context, query string) ([]models.Student, error)
	Student(ctx context.Context, id int) (models.Student, bool, error)
	Inventory(ctx context.Context) ([]models.InventoryItem, error)
	Dispense(ctx context.Context, req models.DispenseRequest) (models.HistoryEntry, error)
}

// Renderer writes a full page.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page view.Page, data any) error
}

// PageHandler renders the routable pages.
type PageHandler struct {
	Clinic ClinicService
	Views  Renderer
	Logger *zap.Logger
}

// Index sends a logged-in user to the dashboard and everyone else to login.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Page handles GET /page/{name}. Unknown names show the login page.
func (h *PageHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.Navigate(w, r, view.ParsePage(chi.URLParam(r, "name")))
}

// Show returns a handler that always navigates to page.
func (h *PageHandler) Show(page view.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.Navigate(w, r, page)
	}
}

// Navigate renders page. Pages behind login redirect to the login page when
// no user is logged in at the moment of rendering.
func (h *PageHandler) Navigate(w http.ResponseWriter, r *http.Request, page view.Page) {
	user, ok := middleware.UserFromContext(r.Context())
	if page.RequiresLogin() && !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	layout := view.Layout{User: user, Notice: view.NoticeFor(r.URL.Query().Get("notice"))}

	switch page {
	case view.Signup:
		layout.Title, layout.User = "Sign Up", ""
		h.render(w, r, http.StatusOK, page, view.SignupView{Layout: layout})
	case view.Home:
		h.renderHome(w, r, layout)
	case view.StudentList:
		h.renderStudentList(w, r, layout)
	case view.Inventory:
		h.renderInventory(w, r, layout)
	case view.Request:
		h.renderRequest(w, r, http.StatusOK, layout, view.RequestForm{})
	default:
		layout.Title, layout.User = "Login", ""
		h.render(w, r, http.StatusOK, view.Login, view.LoginView{Layout: layout})
	}
}

func (h *PageHandler) renderHome(w http.ResponseWriter, r *http.Request, layout view.Layout) {
	d, err := h.Clinic.Dashboard(r.Context())
	if err != nil {
		h.fail(w, "load dashboard", err)
		return
	}
	layout.Title = "Dashboard"
	h.render(w, r, http.StatusOK, view.Home, view.HomeView{Layout: layout, Dashboard: d})
}

func (h *PageHandler) renderStudentList(w http.ResponseWriter, r *http.Request, layout view.Layout) {
	ctx := r.Context()
	q := r.URL.Query()

	students, err := h.Clinic.Students(ctx, q.Get("q"))
	if err != nil {
		h.fail(w, "load students", err)
		return
	}
	data := view.StudentListView{Query: q.Get("q"), Students: students}

	// An unknown or malformed id leaves the profile region empty.
	if id, err := strconv.Atoi(q.Get("student")); err == nil {
		st, found, err := h.Clinic.Student(ctx, id)
		if err != nil {
			h.fail(w, "load student", err)
			return
		}
		if found {
			data.Profile = &st
		}
	}

	layout.Title = "Student List"
	data.Layout = layout
	h.render(w, r, http.StatusOK, view.StudentList, data)
}

func (h *PageHandler) renderInventory(w http.ResponseWriter, r *http.Request, layout view.Layout) {
	items, err := h.Clinic.Inventory(r.Context())
	if err != nil {
		h.fail(w, "load inventory", err)
		return
	}
	layout.Title = "Inventory"
	h.render(w, r, http.StatusOK, view.Inventory, view.InventoryView{Layout: layout, Items: items})
}

func (h *PageHandler) renderRequest(w http.ResponseWriter, r *http.Request, status int, layout view.Layout, form view.RequestForm) {
	ctx := r.Context()
	students, err := h.Clinic.Students(ctx, "")
	if err != nil {
		h.fail(w, "load students", err)
		return
	}
	items, err := h.Clinic.Inventory(ctx)
	if err != nil {
		h.fail(w, "load inventory", err)
		return
	}
	layout.Title = "Request for Medicine"
	h.render(w, r, status, view.Request, view.RequestView{
		Layout:   layout,
		Students: students,
		Items:    items,
		Form:     form,
	})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, page view.Page, data any) {
	if err := h.Views.Render(w, status, page, data); err != nil {
		h.fail(w, "render page", err)
	}
}

func (h *PageHandler) fail(w http.ResponseWriter, what string, err error) {
	logger(h.Logger).Error(what, zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
