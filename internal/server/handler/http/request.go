package http

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/SchoolClinic/internal/middleware"
	"github.com/atinyakov/SchoolClinic/internal/models"
	"github.com/atinyakov/SchoolClinic/internal/service"
	"github.com/atinyakov/SchoolClinic/internal/view"
)

// SubmitRequest handles POST /request: it dispenses the medicine and sends
// the user to the dashboard, or redraws the form with the reason it failed.
func (h *PageHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := view.RequestForm{
		Quantity: r.PostFormValue("quantity"),
		Reason:   r.PostFormValue("reason"),
	}
	req, err := parseDispense(r, &form)
	if err == nil {
		_, err = h.Clinic.Dispense(r.Context(), req)
	}
	if err != nil {
		status, msg, known := userError(err)
		if !known {
			logger(h.Logger).Error("dispense failed", zap.Error(err))
		}
		layout := view.Layout{User: user, Notice: view.ErrorNotice(msg)}
		h.renderRequest(w, r, status, layout, form)
		return
	}

	http.Redirect(w, r, "/home?notice="+view.NoticeDispensed, http.StatusSeeOther)
}

// parseDispense reads the request form. Ids that are not numbers cannot name
// a record, so they are reported as not found.
func parseDispense(r *http.Request, form *view.RequestForm) (models.DispenseRequest, error) {
	studentID, err := strconv.Atoi(r.PostFormValue("studentId"))
	if err != nil {
		return models.DispenseRequest{}, service.ErrStudentNotFound
	}
	form.StudentID = studentID

	medicineID, err := strconv.Atoi(r.PostFormValue("medicineId"))
	if err != nil {
		return models.DispenseRequest{}, service.ErrMedicineNotFound
	}
	form.MedicineID = medicineID

	quantity, err := strconv.Atoi(strings.TrimSpace(form.Quantity))
	if err != nil {
		return models.DispenseRequest{}, service.ErrInvalidQuantity
	}

	return models.DispenseRequest{
		StudentID:  studentID,
		MedicineID: medicineID,
		Quantity:   quantity,
		Reason:     form.Reason,
	}, nil
}
