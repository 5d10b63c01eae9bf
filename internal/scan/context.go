package scan

import (
	"errors"
	"strings"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

// Context is where and why the operator is scanning.
type Context struct {
	Event    types.ScanEvent
	Location string
	ClientID string
}

// Reason is one way a Context can be unusable.
type Reason string

const (
	ReasonMissingEvent    Reason = "scan event is required"
	ReasonUnknownEvent    Reason = "scan event is not recognised"
	ReasonMissingLocation Reason = "location is required"
	ReasonMissingClient   Reason = "a B2B client is required for deliveries"
)

type Validation struct {
	Reasons []Reason
}

func (v Validation) Valid() bool { return len(v.Reasons) == 0 }

// Has reports whether r is among the reasons.
func (v Validation) Has(r Reason) bool {
	for _, got := range v.Reasons {
		if got == r {
			return true
		}
	}
	return false
}

var ErrInvalidContext = errors.New("invalid scan context")

// ValidationError is returned by Start when the context is incomplete.
type ValidationError struct {
	Reasons []Reason
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = string(r)
	}
	return ErrInvalidContext.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidContext }

// Validate checks c. Every event needs a location; DELIVERY_B2B also
// needs a client.
func Validate(c Context) Validation {
	var v Validation
	switch {
	case c.Event == "":
		v.Reasons = append(v.Reasons, ReasonMissingEvent)
	case !c.Event.Valid():
		v.Reasons = append(v.Reasons, ReasonUnknownEvent)
	}
	if strings.TrimSpace(c.Location) == "" {
		v.Reasons = append(v.Reasons, ReasonMissingLocation)
	}
	if c.Event.RequiresClient() && strings.TrimSpace(c.ClientID) == "" {
		v.Reasons = append(v.Reasons, ReasonMissingClient)
	}
	return v
}

// isoMillis matches JavaScript's Date.toISOString, which is what the
// ledger sheets already hold.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Entry builds the log entry for serial scanned at now. The client id is
// carried only for events that require one.
func (c Context) Entry(serial string, now time.Time) types.ScanLog {
	e := types.ScanLog{
		SerialNumber: strings.TrimSpace(serial),
		Timestamp:    now.UTC().Format(isoMillis),
		ScanEvent:    c.Event,
		Location:     strings.TrimSpace(c.Location),
	}
	if c.Event.RequiresClient() {
		e.ClientID = strings.TrimSpace(c.ClientID)
	}
	return e
}
