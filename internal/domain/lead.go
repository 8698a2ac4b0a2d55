package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the delivery state recorded for a lead.
type Status string

const (
	StatusSent Status = "SENT"
)

func (s Status) String() string { return string(s) }

// Lead is one contact entry pending a message, as read from the lead file.
type Lead struct {
	Name  string
	Phone string
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(l.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	return nil
}

// DispatchRecord is the append-only row written after a successful send.
// Phone uniqueness is enforced at the storage layer.
type DispatchRecord struct {
	Name   string
	Phone  string
	Status Status
	SentAt time.Time
}
