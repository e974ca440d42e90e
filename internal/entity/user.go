package entity

import "time"

const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
	RoleReader = "reader"
)

type User struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Password  string    `db:"password"`
	Role      string    `db:"role"`
	Bio       string    `db:"bio"`
	AvatarURL string    `db:"avatar_url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UserLoginData is the identity carried inside an access token and through
// fiber locals after authentication.
type UserLoginData struct {
	ID    string
	Email string
	Role  string
}

// ValidRole reports whether the value is one of the known account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAuthor, RoleReader:
		return true
	}
	return false
}
