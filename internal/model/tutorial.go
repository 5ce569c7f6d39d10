package model

// Tutorial represents a tutorial row in the tutorials table
type Tutorial struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
}
