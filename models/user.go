package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User roles
const (
	RoleAdmin     = "admin"
	RoleDoctor    = "doctor"
	RoleReception = "reception"
	RolePharmacy  = "pharmacy"
)

// User holds the structure for the users collection
type User struct {
	ID           string             `json:"id" bson:"_id"`
	Username     string             `json:"username" bson:"username"`
	FullName     string             `json:"full_name,omitempty" bson:"full_name,omitempty"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	Role         string             `json:"role" bson:"role"`
	CreatedAt    primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// Info returns the user fields safe to hand to clients.
func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role}
}

// UserInfo is the client-facing subset of a user row
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
}

// Session is the result of a successful login
type Session struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expiresAt"`
	User      UserInfo `json:"user"`
}

// ValidRole reports whether r is one of the known user roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReception, RolePharmacy:
		return true
	}
	return false
}
