// Package report renders detection results as plain text for the CLI.
package report

import (
	"fmt"
	"io"

	"sequenze/internal/core"
)

const dateLayout = "2006-01-02"

// WriteSequences writes a human readable summary of a partition. Recurring
// sequences come first, sorted as produced by the builder; singletons are
// summarized with a single count line at the end.
func WriteSequences(w io.Writer, sequences []core.Sequence) error {
	recurring := 0
	singletons := 0
	for _, s := range sequences {
		if s.IsSingleton() {
			singletons++
		} else {
			recurring++
		}
	}

	if _, err := fmt.Fprintf(w, "Found %d recurring sequence(s), %d singleton(s)\n", recurring, singletons); err != nil {
		return err
	}

	n := 0
	for _, s := range sequences {
		if s.IsSingleton() {
			continue
		}
		n++
		if err := writeSequence(w, n, s); err != nil {
			return err
		}
	}
	return nil
}

func writeSequence(w io.Writer, n int, s core.Sequence) error {
	if _, err := fmt.Fprintf(w, "\nSequence %d: %q, every ~%.1f days, %d members\n",
		n, s.Representative, s.Frequency, s.Size()); err != nil {
		return err
	}
	for i, m := range s.Members {
		interval := ""
		if i > 0 {
			interval = fmt.Sprintf("  (+%dd)", s.Members[i-1].Date.DaysUntil(m.Date))
		}
		if _, err := fmt.Fprintf(w, "  %s  %10s  %s%s\n",
			m.Date.Format(dateLayout), m.Amount.String(), m.Description, interval); err != nil {
			return err
		}
	}
	return nil
}

// WriteRestOfSequence writes the remaining members of one transaction's
// sequence, the answer to the "what else belongs with this" question.
func WriteRestOfSequence(w io.Writer, id string, rest []core.Transaction) error {
	if len(rest) == 0 {
		_, err := fmt.Fprintf(w, "Transaction %s has no other occurrences\n", id)
		return err
	}
	if _, err := fmt.Fprintf(w, "Transaction %s shares a sequence with %d other transaction(s):\n", id, len(rest)); err != nil {
		return err
	}
	for _, t := range rest {
		if _, err := fmt.Fprintf(w, "  %s  %10s  %s\n",
			t.Date.Format(dateLayout), t.Amount.String(), t.Description); err != nil {
			return err
		}
	}
	return nil
}
