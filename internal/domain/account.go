package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Account is the ledger account transactions are imported into.
// Accounts are owned by the CRUD layer; this system only reads them.
type Account struct {
	ID       uuid.UUID
	Name     string
	Currency string
}

// Validate ensures the account adheres to domain rules
func (a *Account) Validate() error {
	if a.Name == "" {
		return errors.New("account name cannot be empty")
	}
	if len(a.Currency) != 3 {
		return errors.New("account currency must be a 3-letter code")
	}
	return nil
}

// Category is the classification target of categorization rules.
type Category struct {
	ID   uuid.UUID
	Name string
}
