package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Envelope is the response shape shared by the proxy and the ledger.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

var ErrMalformedEnvelope = errors.New("malformed response envelope")

// DecodeEnvelope reads one envelope from r. A body that is not JSON, or
// JSON without a success flag, is reported as ErrMalformedEnvelope.
func DecodeEnvelope(r io.Reader) (Envelope, error) {
	var raw struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if raw.Success == nil {
		return Envelope{}, fmt.Errorf("%w: missing success flag", ErrMalformedEnvelope)
	}
	env := Envelope{Success: *raw.Success, Data: raw.Data, Error: raw.Error}
	if string(env.Data) == "null" {
		env.Data = nil
	}
	return env, nil
}

// DecodeData unmarshals the envelope payload into out. An absent payload
// leaves out untouched.
func (e Envelope) DecodeData(out any) error {
	if len(e.Data) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("%w: data: %v", ErrMalformedEnvelope, err)
	}
	return nil
}
