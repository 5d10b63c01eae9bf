package httpapi

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"google.golang.org/protobuf/proto"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

// maxRequestBody caps request bodies. A product with every optional
// field filled is well under 1 KiB, so 64 KiB is generous.
const maxRequestBody = 64 << 10

const protobufContentType = "application/x-protobuf"

func isProtobufType(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mt == "application/x-protobuf" || mt == "application/protobuf"
}

// isProtobuf returns true if the request body is a protobuf-encoded
// google.protobuf.Struct rather than JSON.
func isProtobuf(r *http.Request) bool {
	return isProtobufType(r.Header.Get("Content-Type"))
}

// wantsProtobuf returns true if the caller asked for a protobuf envelope.
func wantsProtobuf(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if isProtobufType(strings.TrimSpace(part)) {
			return true
		}
	}
	return false
}

// readBody decodes a JSON or protobuf Struct body into v.
func readBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return err
	}
	if isProtobuf(r) {
		body, err = structBytesToJSON(body)
		if err != nil {
			return err
		}
	}
	return json.Unmarshal(body, v)
}

// writeProto marshals msg and writes it with the given HTTP status.
func writeProto(w http.ResponseWriter, status int, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		// Fall back to a plain-text error if marshalling fails.
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", protobufContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeEnvelope answers in the format the caller accepts.
func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env types.Envelope) {
	if wantsProtobuf(r) {
		msg, err := envelopeToStruct(env)
		if err == nil {
			writeProto(w, status, msg)
			return
		}
		// Data that cannot be expressed as a Struct still goes out as JSON.
	}
	writeJSON(w, status, env)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeEnvelope(w, r, status, types.Envelope{Success: false, Error: message})
}
