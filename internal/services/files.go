package services

import (
	"encoding/json"
	"fmt"
	"os"

	"sequenze/internal/store"
)

// LoadTransactionsFile reads a JSON array of raw transaction records.
func LoadTransactionsFile(path string) ([]store.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transactions file: %w", err)
	}
	var records []store.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse transactions file %s: %w", path, err)
	}
	return records, nil
}

// LoadDistancesFile reads a precomputed distance table: a JSON object from
// canonical pair key to score, as written by WriteDistancesFile.
func LoadDistancesFile(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read distances file: %w", err)
	}
	var table map[string]float64
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse distances file %s: %w", path, err)
	}
	return table, nil
}

// WriteDistancesFile persists a distance table for reuse by a later run.
func WriteDistancesFile(path string, table map[string]float64) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal distances: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write distances file: %w", err)
	}
	return nil
}
