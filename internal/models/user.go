package models

// Role is the authorization role of a user.
type Role string

const (
	RoleInvestor Role = "investor"
	RoleAdmin    Role = "admin"
	RoleAnalyst  Role = "analyst"
)

// User represents an account holder
type User struct {
	Base
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Role      Role   `json:"role" validate:"required,user_role"`
	IsActive  bool   `json:"isActive"`
}

// Field implements store.Document.
func (u *User) Field(name string) (any, bool) {
	switch name {
	case "email":
		return u.Email, true
	case "role":
		return u.Role, true
	case "isActive":
		return u.IsActive, true
	}
	return u.baseField(name)
}

// PublicUser is the view of a user that leaves the core; it never carries the credential hash.
type PublicUser struct {
	Base
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	IsActive  bool   `json:"isActive"`
}

// Public strips the credential hash.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		Base:      u.Base,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
	}
}

// UserPatch holds the user fields an update may change. Password is plain text
// and is hashed by the user service before it is stored.
type UserPatch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *Role   `json:"role"`
	IsActive  *bool   `json:"isActive"`
	Password  *string `json:"password"`
}
