package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleUser   UserRole = "user"
	RoleGrower UserRole = "grower"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleGrower, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email              string             `bson:"email" json:"email"`
	PasswordHash       string             `bson:"password_hash" json:"-"`
	FirstName          string             `bson:"first_name" json:"first_name"`
	LastName           string             `bson:"last_name" json:"last_name"`
	Role               UserRole           `bson:"role" json:"role"`
	IsEmailVerified    bool               `bson:"is_email_verified" json:"is_email_verified"`
	IsIdentityVerified bool               `bson:"is_identity_verified" json:"is_identity_verified"`
	Location           string             `bson:"location,omitempty" json:"location,omitempty"`
	Phone              string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}
