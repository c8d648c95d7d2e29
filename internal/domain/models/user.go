package models

import "time"

// RoleAdmin is the only role the shop knows about.
const RoleAdmin = "admin"

// AdminUser is a shop operator account.
type AdminUser struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password" json:"-"`
	Role         string    `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
