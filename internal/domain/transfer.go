package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a TransferCandidate.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusConfirmed TransferStatus = "confirmed"
	TransferStatusDismissed TransferStatus = "dismissed"
)

// Valid reports whether s is a known status
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferStatusPending, TransferStatusConfirmed, TransferStatusDismissed:
		return true
	}
	return false
}

// TransferCandidate proposes that two transactions in different accounts
// are the two legs of one internal transfer.
// The (FromTransactionID, ToTransactionID) pair is unique across all statuses.
type TransferCandidate struct {
	ID                uuid.UUID
	FromTransactionID uuid.UUID // negative leg
	ToTransactionID   uuid.UUID // positive leg
	Confidence        decimal.Decimal
	Status            TransferStatus
	CreatedAt         time.Time
}

// Pair returns the leg pair identifying the candidate.
func (c *TransferCandidate) Pair() TransferPair {
	return TransferPair{From: c.FromTransactionID, To: c.ToTransactionID}
}

// Confirm moves a pending candidate to confirmed.
func (c *TransferCandidate) Confirm() error {
	return c.transition(TransferStatusConfirmed)
}

// Dismiss moves a pending candidate to dismissed.
func (c *TransferCandidate) Dismiss() error {
	return c.transition(TransferStatusDismissed)
}

// Both confirmed and dismissed are terminal.
func (c *TransferCandidate) transition(to TransferStatus) error {
	if c.Status != TransferStatusPending {
		return fmt.Errorf("transfer candidate %s is %s, not pending: %w", c.ID, c.Status, ErrConflict)
	}
	c.Status = to
	return nil
}

// TransferPair identifies a (negative leg, positive leg) combination.
type TransferPair struct {
	From uuid.UUID
	To   uuid.UUID
}
