package responseformat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

type sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestWantsMsgPack(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
		want   bool
	}{
		{name: "default", target: "/api/frame", want: false},
		{name: "query parameter", target: "/api/frame?format=msgpack", want: true},
		{name: "other format", target: "/api/frame?format=json", want: false},
		{name: "accept header", target: "/api/frame", accept: "application/x-msgpack", want: true},
		{name: "accept json", target: "/api/frame", accept: "application/json", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if got := WantsMsgPack(req); got != tt.want {
				t.Errorf("WantsMsgPack = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestWriteResponse(t *testing.T) {
	f := NewFormatter()
	data := sample{Name: "A", Value: 1.5}

	rec := httptest.NewRecorder()
	if err := f.WriteResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, data); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusCreated || rec.Header().Get("Content-Type") != ContentTypeJSON {
		t.Errorf("JSON response: status %d, content type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	var fromJSON sample
	if err := json.Unmarshal(rec.Body.Bytes(), &fromJSON); err != nil || fromJSON != data {
		t.Errorf("JSON body = %+v, %v", fromJSON, err)
	}

	rec = httptest.NewRecorder()
	if err := f.WriteResponse(rec, httptest.NewRequest(http.MethodGet, "/?format=msgpack", nil), http.StatusOK, data); err != nil {
		t.Fatal(err)
	}
	if rec.Header().Get("Content-Type") != ContentTypeMsgPack {
		t.Errorf("MessagePack content type %q", rec.Header().Get("Content-Type"))
	}
	var fromMsgPack map[string]any
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &fromMsgPack); err != nil {
		t.Fatal(err)
	}
	if fromMsgPack["name"] != "A" {
		t.Errorf("MessagePack keys do not follow json tags: %v", fromMsgPack)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := NewFormatter().WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNotFound, "unknown greenhouse"); err != nil {
		t.Fatal(err)
	}

	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound || body.Error != "unknown greenhouse" {
		t.Errorf("status %d, body %+v", rec.Code, body)
	}
}
