package models

import "time"

// Table statuses describe current occupancy, which is deliberately kept
// separate from reservation data.
const (
	TableFree     = "free"
	TableOccupied = "occupied"
)

// Table represents a physical restaurant table.
type Table struct {
	ID           string    `json:"id"`
	Number       int       `json:"number"`
	Status       string    `json:"status"` // free, occupied
	CustomerName string    `json:"customer_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidTableStatus reports whether s is a known table status.
func ValidTableStatus(s string) bool {
	return s == TableFree || s == TableOccupied
}
