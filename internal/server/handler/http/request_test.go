package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/SchoolClinic/internal/middleware"
	"github.com/atinyakov/SchoolClinic/internal/models"
	"github.com/atinyakov/SchoolClinic/internal/service"
)

func postAs(user, target string, form url.Values) *http.Request {
	req := postForm(target, form)
	if user != "" {
		req = req.WithContext(middleware.ContextWithUser(req.Context(), user))
	}
	return req
}

func TestSubmitRequest_Success(t *testing.T) {
	clinic := seededClinic()
	h := &PageHandler{Clinic: clinic, Views: newViews(t)}

	rec := httptest.NewRecorder()
	h.SubmitRequest(rec, postAs("nurse", "/request", url.Values{
		"studentId":  {"1"},
		"medicineId": {"104"},
		"quantity":   {" 3 "},
		"reason":     {"Scraped knee"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/home?notice=dispensed", rec.Header().Get("Location"))
	require.Len(t, clinic.dispensed, 1)
	assert.Equal(t, models.DispenseRequest{
		StudentID:  1,
		MedicineID: 104,
		Quantity:   3,
		Reason:     "Scraped knee",
	}, clinic.dispensed[0])
}

func TestSubmitRequest_RequiresLogin(t *testing.T) {
	clinic := seededClinic()
	h := &PageHandler{Clinic: clinic, Views: newViews(t)}

	rec := httptest.NewRecorder()
	h.SubmitRequest(rec, postAs("", "/request", url.Values{"studentId": {"1"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, clinic.dispensed)
}

func TestSubmitRequest_Rejections(t *testing.T) {
	tests := []struct {
		name         string
		form         url.Values
		dispenseErr  error
		wantStatus   int
		wantBody     string
		wantDispense bool
	}{
		{
			name:       "student id not a number",
			form:       url.Values{"studentId": {""}, "medicineId": {"101"}, "quantity": {"1"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "Please choose a student from the list.",
		},
		{
			name:       "quantity not a number",
			form:       url.Values{"studentId": {"1"}, "medicineId": {"101"}, "quantity": {"two"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `value="two"`,
		},
		{
			name:         "not enough stock",
			form:         url.Values{"studentId": {"2"}, "medicineId": {"104"}, "quantity": {"6"}, "reason": {"Cuts"}},
			dispenseErr:  service.ErrInsufficientStock,
			wantStatus:   http.StatusUnprocessableEntity,
			wantBody:     "Error: Not enough stock available for this medicine.",
			wantDispense: true,
		},
		{
			name:         "storage failure",
			form:         url.Values{"studentId": {"2"}, "medicineId": {"104"}, "quantity": {"1"}},
			dispenseErr:  errors.New("disk full"),
			wantStatus:   http.StatusInternalServerError,
			wantBody:     "Something went wrong. Please try again.",
			wantDispense: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clinic := seededClinic()
			clinic.dispense = func(models.DispenseRequest) (models.HistoryEntry, error) {
				return models.HistoryEntry{}, tt.dispenseErr
			}
			h := &PageHandler{Clinic: clinic, Views: newViews(t)}

			rec := httptest.NewRecorder()
			h.SubmitRequest(rec, postAs("nurse", "/request", tt.form))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Equal(t, tt.wantDispense, len(clinic.dispensed) == 1)
		})
	}
}

func TestSubmitRequest_KeepsSelection(t *testing.T) {
	clinic := seededClinic()
	clinic.dispense = func(models.DispenseRequest) (models.HistoryEntry, error) {
		return models.HistoryEntry{}, service.ErrInsufficientStock
	}
	h := &PageHandler{Clinic: clinic, Views: newViews(t)}

	rec := httptest.NewRecorder()
	h.SubmitRequest(rec, postAs("nurse", "/request", url.Values{
		"studentId":  {"2"},
		"medicineId": {"104"},
		"quantity":   {"6"},
		"reason":     {"Cuts"},
	}))

	body := rec.Body.String()
	assert.Contains(t, body, `<option value="2" selected>Jane Smith`)
	assert.Contains(t, body, `<option value="104" selected>Band-aid`)
	assert.Contains(t, body, ">Cuts</textarea>")
}
