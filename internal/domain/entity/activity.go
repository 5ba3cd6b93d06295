package entity

import "time"

// Activity entrada del registro de actividad (auditoría).
type Activity struct {
	ID          string
	CauserID    string
	Action      string // created, updated, deleted, stock_changed, login, logout
	SubjectType string // item, transaction, category, supplier, user
	SubjectID   string
	Description string
	CreatedAt   time.Time
}
