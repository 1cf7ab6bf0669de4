package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	if err := NewDate(2023, 1, 1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{Time: time.Time{}}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestDateDaysUntil(t *testing.T) {
	cases := []struct {
		a, b Date
		want int
	}{
		{NewDate(2023, 1, 1), NewDate(2023, 1, 31), 30},
		{NewDate(2023, 1, 1), NewDate(2023, 2, 1), 31},
		{NewDate(2023, 2, 1), NewDate(2023, 1, 1), -31},
		{NewDate(2023, 1, 1), NewDate(2023, 1, 1), 0},
	}
	for i, tc := range cases {
		if got := tc.a.DaysUntil(tc.b); got != tc.want {
			t.Fatalf("case %d expected %d, got %d", i, tc.want, got)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2023, 1, 1),
		Description: "Netflix 01",
		Amount:      Money{Cents: -999},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{}, Description: "a", Amount: Money{Cents: 1}},
		{Date: NewDate(2023, 1, 1), Description: "", Amount: Money{Cents: 1}},
		{Date: NewDate(2023, 1, 1), Description: "   ", Amount: Money{Cents: 1}},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMalformedRecordError(t *testing.T) {
	inner := &MalformedRecordError{Pos: 2, Err: ErrInvalidAmount}
	if !errors.Is(inner, ErrMalformedRecord) {
		t.Fatalf("expected match with ErrMalformedRecord")
	}
	if !errors.Is(inner, ErrInvalidAmount) {
		t.Fatalf("expected unwrap to ErrInvalidAmount")
	}
	if got := inner.Error(); got != "record 2: invalid amount" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestMeanIntervalDays(t *testing.T) {
	txs := []Transaction{
		{Date: NewDate(2023, 1, 1)},
		{Date: NewDate(2023, 1, 31)},
		{Date: NewDate(2023, 3, 2)},
	}
	if got := MeanIntervalDays(txs); got != 30 {
		t.Fatalf("expected 30, got %v", got)
	}
	if got := MeanIntervalDays(txs[:1]); got != 0 {
		t.Fatalf("expected 0 for single transaction, got %v", got)
	}
}

func TestSequenceMemberIDs(t *testing.T) {
	seq := Sequence{Members: []Transaction{{ID: "a"}, {ID: "b"}}}
	ids := seq.MemberIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected ids %v", ids)
	}
	if seq.IsSingleton() {
		t.Fatalf("two-member sequence reported singleton")
	}
}
