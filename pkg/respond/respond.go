// Package respond writes the standard {data, metadata} API envelope as JSON or
// MessagePack, depending on what the client accepts.
package respond

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
)

// maxBodyBytes bounds decoded request bodies
const maxBodyBytes = 1 << 20

// Envelope wraps data in the standard response shape
func Envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// WantsMsgpack reports whether the Accept header prefers MessagePack
func WantsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case ContentTypeMsgpack, "application/x-msgpack":
			return true
		case ContentTypeJSON:
			return false
		}
	}
	return false
}

// Write encodes payload with the negotiated content type
func Write(w http.ResponseWriter, r *http.Request, status int, payload interface{}, log zerolog.Logger) {
	if r != nil && WantsMsgpack(r) {
		w.Header().Set("Content-Type", ContentTypeMsgpack)
		w.WriteHeader(status)

		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(payload); err != nil {
			log.Error().Err(err).Msg("Failed to encode msgpack response")
		}
		return
	}

	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// Data writes data inside the standard envelope with status 200
func Data(w http.ResponseWriter, r *http.Request, data interface{}, log zerolog.Logger) {
	Write(w, r, http.StatusOK, Envelope(data), log)
}

// Decode reads the request body as MessagePack when the client sent that,
// JSON otherwise. An empty body leaves v untouched.
func Decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	body := io.LimitReader(r.Body, maxBodyBytes)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == ContentTypeMsgpack || mt == "application/x-msgpack" {
		dec := msgpack.NewDecoder(body)
		dec.SetCustomStructTag("json")
		if err := dec.Decode(v); err != nil && err != io.EOF {
			return fmt.Errorf("invalid msgpack body: %w", err)
		}
		return nil
	}

	if err := json.NewDecoder(body).Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
