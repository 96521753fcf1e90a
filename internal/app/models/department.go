package models

import "time"

// Department is an academic department. Name is unique and is the key the
// importers match listing labels against.
type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}
