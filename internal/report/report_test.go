package report

import (
	"strings"
	"testing"

	"sequenze/internal/core"
)

func tx(id string, date core.Date, desc string, cents int64) core.Transaction {
	return core.Transaction{ID: id, Date: date, Description: desc, Amount: core.Money{Cents: cents}}
}

func TestWriteSequences(t *testing.T) {
	sequences := []core.Sequence{
		{
			Members: []core.Transaction{
				tx("a", core.NewDate(2023, 1, 1), "Netflix 01", -999),
				tx("b", core.NewDate(2023, 2, 1), "Netflix 02", -999),
			},
			Representative: "Netflix 01",
			Frequency:      31,
		},
		{
			Members:        []core.Transaction{tx("c", core.NewDate(2023, 1, 5), "Coffee Shop", -450)},
			Representative: "Coffee Shop",
		},
	}

	var sb strings.Builder
	if err := WriteSequences(&sb, sequences); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"Found 1 recurring sequence(s), 1 singleton(s)",
		`Sequence 1: "Netflix 01", every ~31.0 days, 2 members`,
		"2023-01-01",
		"-9.99",
		"(+31d)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Sequence 2") {
		t.Fatalf("singletons must not be listed as sequences:\n%s", out)
	}
}

func TestWriteSequencesEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WriteSequences(&sb, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(sb.String(), "Found 0 recurring sequence(s), 0 singleton(s)") {
		t.Fatalf("unexpected output: %s", sb.String())
	}
}

func TestWriteRestOfSequence(t *testing.T) {
	rest := []core.Transaction{
		tx("b", core.NewDate(2023, 2, 1), "Netflix 02", -999),
		tx("c", core.NewDate(2023, 3, 1), "Netflix 03", -999),
	}

	var sb strings.Builder
	if err := WriteRestOfSequence(&sb, "a", rest); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(sb.String(), "shares a sequence with 2 other transaction(s)") {
		t.Fatalf("unexpected output: %s", sb.String())
	}

	sb.Reset()
	if err := WriteRestOfSequence(&sb, "z", nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(sb.String(), "no other occurrences") {
		t.Fatalf("unexpected output: %s", sb.String())
	}
}
