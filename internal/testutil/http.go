package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithUser injects userID as the authenticated caller, bypassing the
// bearer middleware.
func WithUser(r *http.Request, userID primitive.ObjectID) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), userID))
}

// NewJSONRequest builds a request whose body is body marshalled as JSON.
// A string body is sent verbatim; nil sends no body.
func NewJSONRequest(method, target string, body any) *http.Request {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest is NewJSONRequest with userID in context.
func NewAuthenticatedRequest(method, target string, body any, userID primitive.ObjectID) *http.Request {
	return WithUser(NewJSONRequest(method, target, body), userID)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t testing.TB, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertMsg checks the {"msg": ...} error body.
func (r *ResponseRecorder) AssertMsg(t testing.TB, expected string) {
	t.Helper()
	var body struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &body); err != nil {
		t.Errorf("response is not a msg body: %v (%s)", err, r.Body.String())
		return
	}
	if body.Msg != expected {
		t.Errorf("msg: got %q, want %q", body.Msg, expected)
	}
}

// Decode unmarshals the JSON body into v or fails the test.
func (r *ResponseRecorder) Decode(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, r.Body.String())
	}
}
