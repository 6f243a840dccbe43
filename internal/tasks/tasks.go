// Package tasks submits work to the asynq broker, answers result lookups, and
// holds the handlers the worker process runs.
package tasks

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// TypeAdd sums two integers.
const TypeAdd = "add"

// State is the externally visible lifecycle of a task.
type State string

const (
	StatePending State = "PENDING"
	StateSuccess State = "SUCCESS"
	StateRetry   State = "RETRY"
	StateFailure State = "FAILURE"
)

// Result is a snapshot of a task. Value is set only when State is SUCCESS.
type Result struct {
	ID    string
	State State
	Value *int64
}

type AddPayload struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// ProcessAdd decodes an add payload and returns the encoded sum.
func ProcessAdd(payload []byte) ([]byte, error) {
	var p AddPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode add payload: %w", err)
	}
	return encodeResult(p.X + p.Y)
}

// Results are stored as a protobuf Int64Value so the backend holds a typed
// value rather than free-form text.
func encodeResult(v int64) ([]byte, error) {
	return proto.Marshal(wrapperspb.Int64(v))
}

func decodeResult(data []byte) (int64, error) {
	var v wrapperspb.Int64Value
	if err := proto.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("decode result: %w", err)
	}
	return v.GetValue(), nil
}
