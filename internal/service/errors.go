package service

import "errors"

// Validation errors. They are reported to the user and never change state.
var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameTaken      = errors.New("username already exists")

	ErrStudentNotFound   = errors.New("student not found")
	ErrMedicineNotFound  = errors.New("medicine not found")
	ErrInvalidQuantity   = errors.New("quantity must be a positive whole number")
	ErrInsufficientStock = errors.New("not enough stock available for this medicine")
)
