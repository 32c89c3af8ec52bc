package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
)

// CreateContact stores a contact form submission.
func CreateContact(ctx context.Context, db *sqlx.DB, c *model.Contact) (int64, error) {
	result, err := db.NamedExecContext(ctx,
		`INSERT INTO contacts (first_name, last_name, email, contact, message)
		 VALUES (:first_name, :last_name, :email, :contact, :message)`,
		c,
	)
	if err != nil {
		return 0, fmt.Errorf("creating contact: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting contact id: %w", err)
	}
	return id, nil
}

// ListContacts returns all contact submissions, newest first.
func ListContacts(ctx context.Context, db *sqlx.DB) ([]model.Contact, error) {
	var contacts []model.Contact
	err := db.SelectContext(ctx, &contacts,
		`SELECT id, first_name, last_name, email, contact, message, created_at
		 FROM contacts ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return contacts, nil
}
