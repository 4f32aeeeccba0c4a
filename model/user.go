package model

import "time"

type User struct {
	UserID    string    `bson:"user_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Password  string    `bson:"password" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Public returns the fields safe to embed in API responses.
func (u *User) Public() map[string]any {
	return map[string]any{
		"id":    u.UserID,
		"name":  u.Name,
		"email": u.Email,
	}
}
