package amqp

import (
	"encoding/json"
	"time"
)

// DetectJobMessage asks the worker to run sequence detection over a
// transactions file. The worker reads the file, runs the detector and
// persists the result under RunID. DistancesPath optionally points at a
// precomputed distance table; Threshold 0 means use the configured default.
type DetectJobMessage struct {
	RunID            string    `json:"run_id"`
	TransactionsPath string    `json:"transactions_path"`
	DistancesPath    string    `json:"distances_path,omitempty"`
	Threshold        float64   `json:"threshold,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewDetectJobMessage creates a job message for the given run.
func NewDetectJobMessage(runID, transactionsPath, distancesPath string, threshold float64) *DetectJobMessage {
	return &DetectJobMessage{
		RunID:            runID,
		TransactionsPath: transactionsPath,
		DistancesPath:    distancesPath,
		Threshold:        threshold,
		Timestamp:        time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DetectJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DetectJobMessageFromJSON creates a message from JSON bytes
func DetectJobMessageFromJSON(data []byte) (*DetectJobMessage, error) {
	var msg DetectJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
