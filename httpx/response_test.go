package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusForbidden, "forbidden", map[string]string{"permission": "quote:edit"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	want := `{"error":"forbidden","details":{"permission":"quote:edit"}}`
	if got := rec.Body.String(); got != want {
		t.Fatalf("body = %s, want %s", got, want)
	}
}

func TestMessageOmitsEmptySkipped(t *testing.T) {
	rec := httptest.NewRecorder()
	Message(rec, http.StatusOK, "Email sent", nil)
	if got := rec.Body.String(); got != `{"message":"Email sent"}` {
		t.Fatalf("body = %s", got)
	}
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	Attachment(rec, "application/pdf", "QUO-2026-0001.pdf", []byte("%PDF-1.4"))
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="QUO-2026-0001.pdf"` {
		t.Fatalf("Content-Disposition = %s", cd)
	}
	if rec.Header().Get("Content-Length") != "8" || rec.Body.String() != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		IDs []uint `json:"ids"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ids":[1,2],"extra":true}`))
	if err := DecodeJSON(req, &dst); err == nil {
		t.Fatal("expected error for unknown field")
	}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ids":[1,2]}`))
	if err := DecodeJSON(req, &dst); err != nil || len(dst.IDs) != 2 {
		t.Fatalf("DecodeJSON = %v, %v", dst.IDs, err)
	}
}
