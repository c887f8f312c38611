package presign

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type fakePresigner struct {
	key, contentType string
	expiry           time.Duration
	err              error
}

func (f *fakePresigner) PresignPut(_ context.Context, key, contentType string, expiry time.Duration) (string, error) {
	f.key, f.contentType, f.expiry = key, contentType, expiry
	if f.err != nil {
		return "", f.err
	}
	return "https://r2.example.com/bucket/" + key + "?X-Amz-Expires=300", nil
}

func newRouter(p Presigner) *chi.Mux {
	r := chi.NewRouter()
	h := &Handler{Presigner: p, Expiry: 300 * time.Second, NotConfigured: "missing R2 configuration"}
	h.Register(r)
	return r
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	h := rec.Header()
	if got := h.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin: got %q, want *", got)
	}
	if got := h.Get("Access-Control-Allow-Headers"); got != "authorization, x-client-info, apikey, content-type" {
		t.Errorf("Allow-Headers: got %q", got)
	}
	if got := h.Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Errorf("Allow-Methods: got %q", got)
	}
}

func TestPreflight(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newRouter(&fakePresigner{}).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body: got %q, want ok", rec.Body.String())
	}
	assertCORS(t, rec)
}

func TestPresignSuccess(t *testing.T) {
	t.Parallel()

	fake := &fakePresigner{}
	body := `{"fileName":"profiles/designers/jane.jpg","contentType":"image/jpeg"}`
	rec := httptest.NewRecorder()
	newRouter(fake).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/functions/v1/r2-presigned-upload", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	assertCORS(t, rec)

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(resp["presignedUrl"], "https://r2.example.com/bucket/profiles/designers/jane.jpg") {
		t.Errorf("presignedUrl: got %q", resp["presignedUrl"])
	}
	if fake.key != "profiles/designers/jane.jpg" || fake.contentType != "image/jpeg" {
		t.Errorf("presigner args: got %q %q", fake.key, fake.contentType)
	}
	if fake.expiry != 300*time.Second {
		t.Errorf("expiry: got %v, want 5m", fake.expiry)
	}
}

func TestPresignWithoutContentType(t *testing.T) {
	t.Parallel()

	fake := &fakePresigner{}
	rec := httptest.NewRecorder()
	newRouter(fake).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"fileName":"rooms/a.bin"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if fake.key != "rooms/a.bin" || fake.contentType != "" {
		t.Errorf("presigner args: got %q %q", fake.key, fake.contentType)
	}
}

func TestPresignFailuresAre400(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		presigner Presigner
		body      string
		wantError string
	}{
		{"invalid json", &fakePresigner{}, `{`, "invalid JSON body"},
		{"missing file name", &fakePresigner{}, `{"contentType":"image/jpeg"}`, "fileName is required"},
		{"not configured", nil, `{"fileName":"a.jpg","contentType":"image/jpeg"}`, "missing R2 configuration"},
		{"presign error", &fakePresigner{err: errors.New("boom")}, `{"fileName":"a.jpg","contentType":"image/jpeg"}`, "boom"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		newRouter(tt.presigner).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status got %d, want 400", tt.name, rec.Code)
		}
		assertCORS(t, rec)
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", tt.name, err)
		}
		if resp["error"] != tt.wantError {
			t.Errorf("%s: error got %q, want %q", tt.name, resp["error"], tt.wantError)
		}
	}
}
