package domain

import "time"

// DefaultDisplayName is given to every new account until it is renamed.
const DefaultDisplayName = "Anonymous Player"

// MaxDisplayNameLength caps profile names, in runes.
const MaxDisplayNameLength = 40

type User struct {
	ID          string    `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
