package models

import "time"

// Template is a prebuilt workflow definition users instantiate from, and the
// corpus the builder's keyword matcher scores prompts against.
type Template struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Keywords    string    `json:"keywords" db:"keywords"` // Comma-separated match terms
	JSONConfig  string    `json:"json_config" db:"json_config"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
