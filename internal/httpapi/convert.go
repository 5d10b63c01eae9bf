package httpapi

import (
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

// ── Envelope ↔ google.protobuf.Struct ───────────────────────────────────────

// envelopeToStruct re-encodes the JSON envelope as a Struct so protobuf
// clients get the same fields: success, data, error.
func envelopeToStruct(env types.Envelope) (*structpb.Struct, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	msg := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// structBytesToJSON turns a binary Struct into the equivalent JSON object.
func structBytesToJSON(b []byte) ([]byte, error) {
	msg := &structpb.Struct{}
	if err := proto.Unmarshal(b, msg); err != nil {
		return nil, err
	}
	return protojson.Marshal(msg)
}
