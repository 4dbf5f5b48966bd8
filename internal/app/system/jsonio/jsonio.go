// internal/app/system/jsonio/jsonio.go
package jsonio

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/apperr"
)

// MaxBodyBytes bounds request bodies read by Decode.
const MaxBodyBytes = 1 << 20

// Message is the body of every error response.
type Message struct {
	Msg string `json:"msg"`
}

// Write sends v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error sends {"msg": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, Message{Msg: msg})
}

// Decode reads a JSON object from the request body into v. A malformed or
// oversized body is a Validation error. An empty body leaves v untouched.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return apperr.ValidationErr("request body too large")
		}
		return apperr.ValidationErr("invalid JSON body")
	}
	return nil
}
