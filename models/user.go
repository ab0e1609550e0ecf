package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User holds the structure for the users collection in mongo. Passwords are
// stored as bcrypt hashes and never serialized back out.
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Name      string             `json:"name" bson:"name,omitempty"`
	Roles     []string           `json:"roles" bson:"roles,omitempty"`
	CreatedAt primitive.DateTime `json:"created_at" bson:"created_at"`
}

// HasRole reports whether the user carries the named role
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
