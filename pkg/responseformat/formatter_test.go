package responseformat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

type payload struct {
	Site string    `json:"site"`
	ET   []float64 `json:"et"`
}

func TestWriteResponse(t *testing.T) {
	f := NewFormatter()
	data := payload{Site: "orchard", ET: []float64{4.1, 3.9}}

	tests := []struct {
		name        string
		target      string
		accept      string
		contentType string
	}{
		{"default json", "/x", "", ContentTypeJSON},
		{"query msgpack", "/x?format=msgpack", "", ContentTypeMsgPack},
		{"accept msgpack", "/x", ContentTypeMsgPack, ContentTypeMsgPack},
		{"accept registered msgpack type", "/x", "application/msgpack", ContentTypeMsgPack},
		{"accept msgpack with parameters", "/x", "Application/MsgPack; q=1", ContentTypeMsgPack},
		{"unknown format", "/x?format=xml", "", ContentTypeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()

			if err := f.WriteResponse(rec, req, data, map[string]string{"Cache-Control": "no-cache"}); err != nil {
				t.Fatalf("WriteResponse: %v", err)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Fatalf("content type = %q, want %q", ct, tt.contentType)
			}
			if rec.Header().Get("Cache-Control") != "no-cache" {
				t.Error("extra header not set")
			}

			var got payload
			var err error
			if tt.contentType == ContentTypeMsgPack {
				dec := msgpack.NewDecoder(rec.Body)
				dec.SetCustomStructTag("json")
				err = dec.Decode(&got)
			} else {
				err = json.NewDecoder(rec.Body).Decode(&got)
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Site != data.Site || len(got.ET) != 2 || got.ET[1] != 3.9 {
				t.Errorf("decoded %+v", got)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	f := NewFormatter()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	body := ErrorBody{Error: "missing input solar", Kind: "missing_input", Detail: map[string]any{"input": "solar"}}
	if err := f.WriteError(rec, req, http.StatusUnprocessableEntity, body); err != nil {
		t.Fatalf("WriteError: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"kind":"missing_input"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestDecodeRequest(t *testing.T) {
	f := NewFormatter()

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"site":"meadow","et":[1]}`))
	var got payload
	if err := f.DecodeRequest(req, &got); err != nil || got.Site != "meadow" {
		t.Fatalf("json decode = %+v, %v", got, err)
	}

	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"site":"meadow","bogus":1}`))
	if err := f.DecodeRequest(req, &got); err == nil {
		t.Error("unknown fields should be rejected")
	}

	enc, err := msgpack.Marshal(map[string]any{"site": "orchard", "et": []float64{2}})
	if err != nil {
		t.Fatal(err)
	}
	for _, ct := range []string{ContentTypeMsgPack, "application/msgpack"} {
		req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(string(enc)))
		req.Header.Set("Content-Type", ct)
		got = payload{}
		if err := f.DecodeRequest(req, &got); err != nil || got.Site != "orchard" || got.ET[0] != 2 {
			t.Fatalf("msgpack decode with %s = %+v, %v", ct, got, err)
		}
	}
}
