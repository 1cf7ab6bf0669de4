package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Date is a calendar day. The time-of-day part is always midnight UTC.
	Date struct {
		time.Time
	}

	// Money is a signed amount in cents. Negative values are outflows, which
	// is what bank exports use for recurring charges.
	Money struct {
		Cents int64
	}

	// Transaction is one financial movement. Instances are created by the
	// store at load time and never mutated afterwards; sequences reference
	// them by ID.
	Transaction struct {
		ID          string
		Date        Date
		Description string
		Amount      Money
	}

	// Sequence is a cluster of transactions believed to represent the same
	// recurring obligation. Members are ordered by date ascending. A
	// single-member sequence means no repetition was detected for that
	// transaction, which is a valid terminal state.
	Sequence struct {
		Members        []Transaction
		Representative string
		// Frequency is the mean interval between consecutive members, in
		// days. Zero for singletons.
		Frequency float64
	}
)

var (
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrMalformedRecord    = errors.New("malformed record")
	ErrUnknownTransaction = errors.New("unknown transaction")
	ErrDuplicateID        = errors.New("duplicate transaction id")
)

// MalformedRecordError reports a record that failed validation during load,
// with its zero-based position in the input so the caller can point at the
// offending line.
type MalformedRecordError struct {
	Pos int
	Err error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Pos, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedRecord) match any record error.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

// Before reports whether d is an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	return nil
}

// Size returns the number of members in the sequence.
func (s Sequence) Size() int {
	return len(s.Members)
}

// IsSingleton reports whether the sequence has exactly one member.
func (s Sequence) IsSingleton() bool {
	return len(s.Members) == 1
}

// First returns the earliest member. Callers must not invoke it on an empty
// sequence; the builder never produces one.
func (s Sequence) First() Transaction {
	return s.Members[0]
}

// MemberIDs returns the member IDs in date order.
func (s Sequence) MemberIDs() []string {
	ids := make([]string, len(s.Members))
	for i, t := range s.Members {
		ids[i] = t.ID
	}
	return ids
}

// MeanIntervalDays computes the mean gap in days between consecutive
// transactions, which must be ordered by date. Returns 0 for fewer than two
// transactions.
func MeanIntervalDays(transactions []Transaction) float64 {
	if len(transactions) < 2 {
		return 0
	}
	total := 0
	for i := 1; i < len(transactions); i++ {
		total += transactions[i-1].Date.DaysUntil(transactions[i].Date)
	}
	return float64(total) / float64(len(transactions)-1)
}
