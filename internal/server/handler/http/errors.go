package http

import (
	"errors"
	"net/http"

	"github.com/atinyakov/SchoolClinic/internal/service"
)

// userError maps a service validation error to the status code and message
// shown on the form. ok is false for errors that are not the user's to fix.
func userError(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		return http.StatusUnprocessableEntity, "Username and password are required.", true
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password.", true
	case errors.Is(err, service.ErrPasswordMismatch):
		return http.StatusUnprocessableEntity, "Passwords do not match.", true
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, "Username already exists.", true
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, "Error: Not enough stock available for this medicine.", true
	case errors.Is(err, service.ErrStudentNotFound):
		return http.StatusUnprocessableEntity, "Please choose a student from the list.", true
	case errors.Is(err, service.ErrMedicineNotFound):
		return http.StatusUnprocessableEntity, "Please choose a medicine from the list.", true
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity, "Quantity must be a positive whole number.", true
	}
	return http.StatusInternalServerError, "Something went wrong. Please try again.", false
}
