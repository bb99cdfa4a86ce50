// Package view turns view models into HTML documents. Every page shares the
// layout template and defines its own "content" block.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/atinyakov/SchoolClinic/internal/models"
)

// Page names a full-document view.
type Page string

// Routable pages.
const (
	Login       Page = "login"
	Signup      Page = "signup"
	Home        Page = "home"
	StudentList Page = "studentList"
	Inventory   Page = "inventory"
	Request     Page = "request"
)

// Pages lists every routable page.
var Pages = []Page{Login, Signup, Home, StudentList, Inventory, Request}

// ParsePage maps a page name to a Page. Unknown or empty names give Login.
func ParsePage(name string) Page {
	for _, p := range Pages {
		if string(p) == name {
			return p
		}
	}
	return Login
}

// RequiresLogin reports whether p may only be shown to a logged-in user.
func (p Page) RequiresLogin() bool {
	return p != Login && p != Signup
}

//go:embed templates/*.html
var templateFS embed.FS

var templateFiles = map[Page]string{
	Login:       "templates/login.html",
	Signup:      "templates/signup.html",
	Home:        "templates/home.html",
	StudentList: "templates/students.html",
	Inventory:   "templates/inventory.html",
	Request:     "templates/request.html",
}

// Renderer executes the page templates.
type Renderer struct {
	pages map[Page]*template.Template
}

// New parses every page template.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[Page]*template.Template, len(templateFiles))}
	for page, file := range templateFiles {
		t, err := template.ParseFS(templateFS, "templates/layout.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render writes page with the given status. The document is built in memory
// first so a template error never produces a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page Page, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Notice is a one-off message shown above the page content.
type Notice struct {
	// Kind is "error" or "success".
	Kind    string
	Message string
}

// ErrorNotice builds an error notice.
func ErrorNotice(msg string) *Notice { return &Notice{Kind: "error", Message: msg} }

// SuccessNotice builds a success notice.
func SuccessNotice(msg string) *Notice { return &Notice{Kind: "success", Message: msg} }

// Notice codes passed across redirects.
const (
	NoticeSignedUp  = "signed-up"
	NoticeDispensed = "dispensed"
)

// NoticeFor returns the notice for a redirect code, or nil for unknown codes.
func NoticeFor(code string) *Notice {
	switch code {
	case NoticeSignedUp:
		return SuccessNotice("Account created successfully! You can now log in.")
	case NoticeDispensed:
		return SuccessNotice("Medicine request successful. Inventory has been updated.")
	}
	return nil
}

// Layout is embedded in every page view.
type Layout struct {
	Title string
	// User is empty on the login and signup pages; the navigation bar is
	// only drawn when it is set.
	User   string
	Notice *Notice
}

// LoginView feeds the login form.
type LoginView struct {
	Layout
	Username string
}

// SignupView feeds the signup form.
type SignupView struct {
	Layout
	Username string
}

// HomeView feeds the dashboard.
type HomeView struct {
	Layout
	models.Dashboard
}

// StudentListView feeds the student list and, when Profile is set, the
// student detail region below it.
type StudentListView struct {
	Layout
	Query    string
	Students []models.Student
	Profile  *models.Student
}

// InventoryView feeds the inventory table.
type InventoryView struct {
	Layout
	Items []models.InventoryItem
}

// RequestForm holds the submitted values so a rejected form can be redrawn.
type RequestForm struct {
	StudentID  int
	MedicineID int
	Quantity   string
	Reason     string
}

// RequestView feeds the medicine request form.
type RequestView struct {
	Layout
	Students []models.Student
	Items    []models.InventoryItem
	Form     RequestForm
}
