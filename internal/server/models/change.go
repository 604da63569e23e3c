package models

// Change is a row-level change notification published by the database
// trigger: which table, whose row, and the operation (INSERT, UPDATE,
// DELETE).
type Change struct {
	Table  string `json:"table"`
	UserID string `json:"user_id"`
	Op     string `json:"op"`
}
