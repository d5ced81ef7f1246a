package models

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Payload is the JSON form of a Record shared by the redis sink and the
// generation event stream. Value is decimal text since primes outgrow int64.
type Payload struct {
	ID         string  `json:"id"`
	Value      string  `json:"value"`
	Bits       int     `json:"bits"`
	Algorithm  string  `json:"algorithm"`
	Attempts   int     `json:"attempts"`
	ElapsedNS  int64   `json:"elapsed_ns"`
	TestTimeNS int64   `json:"test_time_ns"`
	Speed      float64 `json:"speed"`
	CreatedAt  string  `json:"created_at"`
}

// Marshal encodes the record as a Payload.
func (r *Record) Marshal() ([]byte, error) {
	return json.Marshal(Payload{
		ID:         r.ID.String(),
		Value:      r.Value.String(),
		Bits:       r.Bits,
		Algorithm:  string(r.Algorithm),
		Attempts:   r.Attempts,
		ElapsedNS:  r.Elapsed.Nanoseconds(),
		TestTimeNS: r.TestTime.Nanoseconds(),
		Speed:      r.Speed(),
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// UnmarshalRecord decodes a Payload and re-validates the record invariants.
func UnmarshalRecord(data []byte) (*Record, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode record payload: %w", err)
	}
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("decode record id: %w", err)
	}
	value, ok := new(big.Int).SetString(p.Value, 10)
	if !ok {
		return nil, fmt.Errorf("decode record value %q", p.Value)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("decode record timestamp: %w", err)
	}
	return NewRecord(id, value, p.Bits, Algorithm(p.Algorithm), p.Attempts,
		time.Duration(p.ElapsedNS), time.Duration(p.TestTimeNS), createdAt)
}
