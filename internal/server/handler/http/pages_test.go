package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/SchoolClinic/internal/middleware"
	"github.com/atinyakov/SchoolClinic/internal/view"
)

func getAs(user, target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if user != "" {
		req = req.WithContext(middleware.ContextWithUser(req.Context(), user))
	}
	return req
}

func TestNavigate_ProtectedPagesRedirectWhenLoggedOut(t *testing.T) {
	h := &PageHandler{Clinic: seededClinic(), Views: newViews(t)}

	for _, page := range []view.Page{view.Home, view.StudentList, view.Inventory, view.Request} {
		t.Run(string(page), func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Navigate(rec, getAs("", "/"), page)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
		})
	}
}

func TestNavigate_PublicPages(t *testing.T) {
	h := &PageHandler{Clinic: seededClinic(), Views: newViews(t)}

	tests := []struct {
		page view.Page
		want string
	}{
		{view.Login, `action="/login"`},
		{view.Signup, `action="/signup"`},
	}
	for _, tt := range tests {
		t.Run(string(tt.page), func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Navigate(rec, getAs("", "/"), tt.page)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.NotContains(t, rec.Body.String(), `class="nav-bar"`)
		})
	}
}

func TestNavigate_LoggedIn(t *testing.T) {
	h := &PageHandler{Clinic: seededClinic(), Views: newViews(t)}

	tests := []struct {
		page view.Page
		want string
	}{
		{view.Home, `id="student-count"`},
		{view.StudentList, "Jane Smith"},
		{view.Inventory, "Paracetamol"},
		{view.Request, `name="studentId"`},
	}
	for _, tt := range tests {
		t.Run(string(tt.page), func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Navigate(rec, getAs("nurse", "/"), tt.page)

			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, tt.want)
			assert.Contains(t, body, `class="nav-bar"`)
			assert.Contains(t, body, "nurse")
		})
	}
}

func TestPage_UnknownNameShowsLogin(t *testing.T) {
	h := &PageHandler{Clinic: seededClinic(), Views: newViews(t)}
	router := NewRouter(&AuthHandler{AuthService: &mockAuth{}, Views: newViews(t)}, h, staticIdentity("nurse"), nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page/nowhere", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)
}

func TestStudentList_Profile(t *testing.T) {
	h := &PageHandler{Clinic: seededClinic(), Views: newViews(t)}

	t.Run("known student", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Navigate(rec, getAs("nurse", "/students?student=2"), view.StudentList)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Headache")
	})

	t.Run("unknown student leaves profile empty", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Navigate(rec, getAs("nurse", "/students?student=99"), view.StudentList)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "Headache")
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Navigate(rec, getAs("nurse", "/students?student=abc"), view.StudentList)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestNavigate_NoticeFromQuery(t *testing.T) {
	h := &PageHandler{Clinic: seededClinic(), Views: newViews(t)}

	rec := httptest.NewRecorder()
	h.Navigate(rec, getAs("", "/login?notice="+view.NoticeSignedUp), view.Login)
	assert.Contains(t, rec.Body.String(), "Account created successfully!")

	rec = httptest.NewRecorder()
	h.Navigate(rec, getAs("", "/login?notice=bogus"), view.Login)
	assert.NotContains(t, rec.Body.String(), `role="alert"`)
}

func TestNavigate_LoadError(t *testing.T) {
	clinic := seededClinic()
	clinic.err = errors.New("disk gone")
	h := &PageHandler{Clinic: clinic, Views: newViews(t)}

	rec := httptest.NewRecorder()
	h.Navigate(rec, getAs("nurse", "/home"), view.Home)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIndex(t *testing.T) {
	h := &PageHandler{Clinic: seededClinic(), Views: newViews(t)}

	rec := httptest.NewRecorder()
	h.Index(rec, getAs("nurse", "/"))
	assert.Equal(t, "/home", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.Index(rec, getAs("", "/"))
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
