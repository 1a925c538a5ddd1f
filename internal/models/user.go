package models

import (
	"encoding/json"
	"time"
)

// Role distinguishes the owner of a billing group from the accounts that joined it.
type Role string

const (
	RolePrimary Role = "primary"
	RoleMember  Role = "member"
)

// ParseRole maps stored role strings, including the legacy "main_user" and
// "shared_user" values, to a Role.
func ParseRole(s string) Role {
	switch s {
	case "main_user":
		return RolePrimary
	case "shared_user":
		return RoleMember
	default:
		return Role(s)
	}
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`

	// Username is unique across all users and used for login.
	Username string `json:"username"`

	// PhoneNumber is unique across all users.
	PhoneNumber string `json:"phone_number"`

	FullName string `json:"full_name"`

	// Password is stored as produced by the configured auth.PasswordVerifier.
	// With the default verifier this is the plain password.
	Password string `json:"password"`

	Role Role `json:"role"`

	// GroupCode is the code a primary user hands out, or the code a member
	// joined with. For a primary it always equals the code of a GroupCode
	// record owned by the user.
	GroupCode string `json:"group_code,omitempty"`

	// Active is false for deactivated accounts, which cannot log in.
	Active bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UnmarshalJSON also reads the legacy "shared_code" field when
// "group_code" is absent.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var aux struct {
		plain
		LegacyGroupCode string `json:"shared_code"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.GroupCode == "" {
		u.GroupCode = aux.LegacyGroupCode
	}
	return nil
}

// Membership is the role-specific part of a user: Primary or Member.
type Membership interface {
	membership()
}

// Primary owns a billing group and the codes that grant access to it.
type Primary struct {
	GroupCode string
}

// Member joined a billing group with JoinedCode.
type Member struct {
	JoinedCode string
}

func (Primary) membership() {}
func (Member) membership()  {}

// Membership resolves the user's role into its variant. Users with an
// unrecognised role are treated as primaries of their own data.
func (u *User) Membership() Membership {
	if u.Role == RoleMember {
		return Member{JoinedCode: u.GroupCode}
	}
	return Primary{GroupCode: u.GroupCode}
}

// Profile is the public view of a user. It never carries the password.
type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	PhoneNumber string    `json:"phone_number"`
	FullName    string    `json:"full_name"`
	Role        Role      `json:"role"`
	GroupCode   string    `json:"group_code,omitempty"`
	Active      bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		PhoneNumber: u.PhoneNumber,
		FullName:    u.FullName,
		Role:        u.Role,
		GroupCode:   u.GroupCode,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
	}
}

// UserUpdate is a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Username    *string
	PhoneNumber *string
	FullName    *string
	Password    *string
	GroupCode   *string
	Active      *bool
}

// Registration carries the fields supplied when creating an account.
type Registration struct {
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	FullName    string `json:"full_name"`
	Password    string `json:"password"`
}

// CodeRegistration is a Registration that joins an existing group.
type CodeRegistration struct {
	Registration
	Code string `json:"group_code"`
}
