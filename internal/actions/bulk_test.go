package actions

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/diewo77/go-quotes/internal/models"
)

func ids(docs ...*models.Document) []uint {
	out := make([]uint, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestBulkEmptySet(t *testing.T) {
	e := newEngine(t)
	for _, token := range []string{"delete", "download", "convert"} {
		res, err := e.bulk.Run(context.Background(), owner, []uint{404, 405}, token)
		if err != nil {
			t.Fatal(err)
		}
		if res.Kind != ResultNotification || res.Message != "No documents found" || res.StatusCode != http.StatusOK {
			t.Errorf("%s: expected notification, got %+v", token, res)
		}
	}
}

func TestBulkUnknownAction(t *testing.T) {
	e := newEngine(t)
	q := e.quote(models.StatusSent)

	res, err := e.bulk.Run(context.Background(), owner, ids(q), "frobnicate")
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.Reason, ErrUnknownAction) || res.StatusCode != http.StatusBadRequest || !strings.Contains(res.Message, "frobnicate") {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestBulkSkipsUnauthorized(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	allowed := e.quote(models.StatusDraft)
	denied := e.quote(models.StatusDraft)
	e.auth.deny(CapabilityEdit, denied.ID)

	res, err := e.bulk.Run(ctx, owner, ids(allowed, denied), "mark_sent")
	if err != nil {
		t.Fatalf("bulk must not fail on unauthorized items: %v", err)
	}
	if res.Kind != ResultCollection || len(res.Documents) != 2 {
		t.Fatalf("expected collection of both ids, got %+v", res)
	}
	if allowed.Status != models.StatusSent {
		t.Errorf("authorized item not mutated: %s", allowed.Status)
	}
	if denied.Status != models.StatusDraft {
		t.Errorf("unauthorized item mutated: %s", denied.Status)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != denied.ID {
		t.Errorf("expected denied item in skipped list, got %+v", res.Skipped)
	}
}

func TestBulkDeleteIdempotent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	a, b := e.quote(models.StatusDraft), e.quote(models.StatusSent)

	for round := 1; round <= 2; round++ {
		res, err := e.bulk.Run(ctx, owner, ids(a, b), "delete")
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if res.Kind != ResultCollection || len(res.Documents) != 2 || len(res.Skipped) != 0 {
			t.Fatalf("round %d: unexpected %+v", round, res)
		}
		for _, d := range res.Documents {
			if !d.IsDeleted() {
				t.Errorf("round %d: %s not deleted", round, d.Number)
			}
		}
	}
}

func TestBulkArchiveIncludesDeleted(t *testing.T) {
	e := newEngine(t)
	live := e.quote(models.StatusDraft)
	gone := e.quote(models.StatusDeleted)

	res, err := e.bulk.Run(context.Background(), owner, ids(live, gone), "archive")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Documents) != 2 || len(res.Skipped) != 0 {
		t.Fatalf("unexpected %+v", res)
	}
	if !live.IsArchived() || gone.IsArchived() {
		t.Errorf("archive flags: live=%v deleted=%v", live.IsArchived(), gone.IsArchived())
	}
}

func TestBulkConvert(t *testing.T) {
	e := newEngine(t)
	q1 := e.quote(models.StatusSent)
	q2 := e.quote(models.StatusConverted)
	q3 := e.quote(models.StatusApproved)

	res, err := e.bulk.Run(context.Background(), owner, ids(q1, q2, q3), "convert")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultCollection {
		t.Fatalf("expected collection, got %+v", res)
	}
	got := ids(res.Documents...)
	want := ids(q1, q2, q3)
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("collection ids = %v, want %v", got, want)
	}
	if n := e.repo.count(models.TypeInvoice); n != 2 {
		t.Errorf("expected 2 invoices, got %d", n)
	}
	for _, q := range []*models.Document{q1, q3} {
		if q.Status != models.StatusConverted || q.ConvertedToID == nil {
			t.Errorf("%s not marked converted", q.Number)
		}
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != q2.ID {
		t.Errorf("expected q2 skipped, got %+v", res.Skipped)
	}
}

func TestBulkConvertChecksEdit(t *testing.T) {
	e := newEngine(t)
	q := e.quote(models.StatusSent)
	e.auth.deny(CapabilityEdit, q.ID)

	if _, err := e.bulk.Run(context.Background(), owner, ids(q), "convert"); err != nil {
		t.Fatal(err)
	}
	if n := e.repo.count(models.TypeInvoice); n != 0 {
		t.Errorf("unauthorized convert created %d invoices", n)
	}
}

func TestBulkDownload(t *testing.T) {
	e := newEngine(t)
	visible := e.quote(models.StatusSent)
	hidden := e.quote(models.StatusSent)
	e.auth.deny(CapabilityView, hidden.ID)

	res, err := e.bulk.Run(context.Background(), owner, ids(visible, hidden), "download")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultNotification || res.Message != "Email sent" || res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(e.queue.zips) != 1 || len(e.queue.zips[0]) != 1 || e.queue.zips[0][0] != visible.ID {
		t.Errorf("zip should hold only the visible document: %v", e.queue.zips)
	}
	if e.queue.to != owner.Email {
		t.Errorf("archive mailed to %q", e.queue.to)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != hidden.ID || res.Skipped[0].Reason != "insufficient privileges" {
		t.Errorf("hidden document should be reported, got %+v", res.Skipped)
	}
}

func TestBulkDownloadSkipsNonConvertible(t *testing.T) {
	e := newEngine(t)
	pending := e.quote(models.StatusSent)
	converted := e.quote(models.StatusConverted)

	res, err := e.bulk.Run(context.Background(), owner, ids(pending, converted), "download")
	if err != nil {
		t.Fatal(err)
	}
	if res.Message != "Email sent" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(e.queue.zips) != 1 || len(e.queue.zips[0]) != 1 || e.queue.zips[0][0] != pending.ID {
		t.Errorf("zip should hold only the convertible document: %v", e.queue.zips)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != converted.ID || res.Skipped[0].Reason != "not convertible" {
		t.Errorf("converted document should be reported, got %+v", res.Skipped)
	}
}

func TestBulkDownloadNothingConvertible(t *testing.T) {
	e := newEngine(t)
	converted := e.quote(models.StatusConverted)

	res, err := e.bulk.Run(context.Background(), owner, ids(converted), "download")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultNotification || res.Message != "No documents found" || res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(e.queue.zips) != 0 {
		t.Error("nothing should be enqueued")
	}
}

func TestBulkDownloadNothingVisible(t *testing.T) {
	e := newEngine(t)
	q := e.quote(models.StatusSent)
	e.auth.deny(CapabilityView, q.ID)

	res, err := e.bulk.Run(context.Background(), owner, ids(q), "download")
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.Reason, ErrAuthorizationDenied) || res.StatusCode != http.StatusForbidden {
		t.Errorf("unexpected result %+v", res)
	}
	if len(e.queue.zips) != 0 {
		t.Error("nothing should be enqueued")
	}
}

func TestBulkReportsPreconditionFailures(t *testing.T) {
	e := newEngine(t)
	sent := e.quote(models.StatusSent)
	draft := e.quote(models.StatusDraft)

	res, err := e.bulk.Run(context.Background(), owner, ids(sent, draft), "approve")
	if err != nil {
		t.Fatal(err)
	}
	if sent.Status != models.StatusApproved || draft.Status != models.StatusDraft {
		t.Errorf("statuses: sent=%s draft=%s", sent.Status, draft.Status)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != draft.ID {
		t.Errorf("expected draft skipped, got %+v", res.Skipped)
	}
}

func TestBulkStaysInTenant(t *testing.T) {
	e := newEngine(t)
	foreign := e.repo.add(&models.Document{CompanyID: 2, Type: models.TypeQuote, Status: models.StatusDraft})

	res, err := e.bulk.Run(context.Background(), owner, ids(foreign), "delete")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultNotification || foreign.IsDeleted() {
		t.Errorf("foreign document touched: %+v", res)
	}
}
