package domain

import "time"

// User is the identity issued by the hosted auth service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the row in the users table keyed by the identity id.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Telegram  string    `db:"telegram" json:"telegram,omitempty"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at,omitempty"`
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
