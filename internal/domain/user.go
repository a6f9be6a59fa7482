package domain

import "time"

// Address is a postal address attached to a user.
type Address struct {
	Address string
	City    string
	State   string
	Zip     string
	Country string
}

// User is an identity record. Email addresses are unique across all users.
type User struct {
	ID             int
	Username       string
	Surname        string
	Name           string
	Organisation   string
	Kind           string
	Profile        Profile
	PasswordHash   string
	AuthType       string
	EmailAddresses []string
	Addresses      []Address
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PrimaryEmail returns the first registered email address, or "".
func (u *User) PrimaryEmail() string {
	if u == nil || len(u.EmailAddresses) == 0 {
		return ""
	}
	return u.EmailAddresses[0]
}

// Group is a set of users sharing catalog privileges.
type Group struct {
	ID          int
	Name        string
	Description string
	Email       string
}

// ReservedGroup is a group with a fixed, well-known identifier that exists in
// every deployment.
type ReservedGroup int

const (
	ReservedGroupAll      ReservedGroup = 1
	ReservedGroupIntranet ReservedGroup = 0
	ReservedGroupGuest    ReservedGroup = -1
)

func (g ReservedGroup) ID() int { return int(g) }

func (g ReservedGroup) String() string {
	switch g {
	case ReservedGroupAll:
		return "all"
	case ReservedGroupIntranet:
		return "intranet"
	case ReservedGroupGuest:
		return "guest"
	}
	return "unknown"
}

// UserGroup links a user to a group with the profile the user holds there.
type UserGroup struct {
	UserID  int
	GroupID int
	Profile Profile
}
