package model

import "time"

// Contact is a message submitted through the public contact form.
type Contact struct {
	ID        int64     `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	Email     string    `db:"email" json:"email"`
	Contact   string    `db:"contact" json:"contact"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
