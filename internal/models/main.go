// Package models defines the clinic's persisted records and the read models
// built from them.
package models

// LowStockThreshold is the stock level at or below which an item is flagged.
const LowStockThreshold = 10

// HistoryDateLayout is the en-US short date format used for HistoryEntry.Date.
const HistoryDateLayout = "1/2/2006"

// Account is a login for the clinic. Passwords are stored as entered.
type Account struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Student is a pupil who may receive medicine from the clinic.
type Student struct {
	// ID is stable and unique across the students collection.
	ID         int    `json:"id"`
	Name       string `json:"name"`
	YearCourse string `json:"yearCourse"`
	// History is append-only, oldest first.
	History []HistoryEntry `json:"history"`
}

// InventoryItem is a stocked medicine.
type InventoryItem struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// Low reports whether the item is at or below LowStockThreshold.
func (i InventoryItem) Low() bool {
	return i.Stock <= LowStockThreshold
}

// HistoryEntry records one dispensing event. MedicineName is copied from the
// inventory item at dispense time and is not a reference.
type HistoryEntry struct {
	Date         string `json:"date"`
	MedicineName string `json:"medicineName"`
	Quantity     int    `json:"quantity"`
	Reason       string `json:"reason"`
}

// RecentRequest is a history entry paired with the student who received it.
type RecentRequest struct {
	StudentName string
	HistoryEntry
}

// Dashboard summarises the clinic state for the home page.
type Dashboard struct {
	StudentCount  int
	ItemCount     int
	LowStockCount int
	Recent        []RecentRequest
}

// DispenseRequest asks to give Quantity units of a medicine to a student.
type DispenseRequest struct {
	StudentID  int
	MedicineID int
	Quantity   int
	Reason     string
}
