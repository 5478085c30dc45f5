package actions

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParse(t *testing.T) {
	for token, want := range kindTokens {
		got, ok := Parse(token)
		if !ok || got != want {
			t.Errorf("Parse(%q) = %v, %v", token, got, ok)
		}
		if got.String() != token {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), token)
		}
	}
	if k, ok := Parse("frobnicate"); ok || k != KindUnknown {
		t.Errorf("expected unknown, got %v %v", k, ok)
	}
}

func TestKindCapability(t *testing.T) {
	tests := []struct {
		kind Kind
		want Capability
	}{
		{KindDownload, CapabilityView},
		{KindHistory, CapabilityView},
		{KindApprove, CapabilityEdit},
		{KindEmail, CapabilityEdit},
		{KindCloneToInvoice, CapabilityEdit},
		{KindDelete, CapabilityEdit},
	}
	for _, tt := range tests {
		if got := tt.kind.Capability(); got != tt.want {
			t.Errorf("%s: Capability() = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestApproveRequiresSent(t *testing.T) {
	for _, status := range []models.Status{
		models.StatusDraft, models.StatusApproved, models.StatusExpired,
		models.StatusConverted, models.StatusDeleted,
	} {
		t.Run(string(status), func(t *testing.T) {
			e := newEngine(t)
			doc := e.quote(status)

			res, err := e.dispatcher.Perform(context.Background(), owner, doc, "approve")
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsRejected() || !errors.Is(res.Reason, ErrPreconditionViolation) || res.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected precondition rejection, got %+v", res)
			}
			if res.Message != "Unable to approve this quote as it has expired." {
				t.Errorf("unexpected message %q", res.Message)
			}
			if doc.Status != status || e.repo.saves != 0 {
				t.Errorf("document changed: status=%s saves=%d", doc.Status, e.repo.saves)
			}
		})
	}
}

func TestApproveSentOnce(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	doc := e.quote(models.StatusSent)

	res, err := e.dispatcher.Perform(ctx, owner, doc, "approve")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultItem || res.Document.Status != models.StatusApproved || res.Document.ApprovedAt == nil {
		t.Fatalf("expected approved item, got %+v", res)
	}
	if e.repo.saves != 1 {
		t.Errorf("expected one save, got %d", e.repo.saves)
	}

	again, err := e.dispatcher.Perform(ctx, owner, res.Document, "approve")
	if err != nil {
		t.Fatal(err)
	}
	if !again.IsRejected() || !errors.Is(again.Reason, ErrPreconditionViolation) {
		t.Errorf("second approve should be rejected, got %+v", again)
	}
	if e.repo.saves != 1 {
		t.Errorf("rejected approve must not save")
	}
}

func TestCloneToInvoiceRejectsNonConvertible(t *testing.T) {
	for _, status := range []models.Status{models.StatusConverted, models.StatusDeleted} {
		t.Run(string(status), func(t *testing.T) {
			e := newEngine(t)
			doc := e.quote(status)

			res, err := e.dispatcher.Perform(context.Background(), owner, doc, "clone_to_invoice")
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsRejected() || !errors.Is(res.Reason, ErrConversion) || res.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected conversion rejection, got %+v", res)
			}
			if n := e.repo.count(models.TypeInvoice); n != 0 {
				t.Errorf("no invoice should be created, got %d", n)
			}
		})
	}
}

func TestCloneToInvoice(t *testing.T) {
	e := newEngine(t)
	doc := e.quote(models.StatusSent)

	res, err := e.dispatcher.Perform(context.Background(), owner, doc, "clone_to_invoice")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultItem {
		t.Fatalf("expected item, got %+v", res)
	}
	inv := res.Document
	if inv.Type != models.TypeInvoice || inv.Status != models.StatusDraft || inv.ID == doc.ID {
		t.Errorf("unexpected invoice %+v", inv)
	}
	opts := cmpopts.IgnoreFields(models.LineItem{}, "ID", "DocumentID", "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(doc.Items, inv.Items, opts); diff != "" {
		t.Errorf("items differ (-quote +invoice):\n%s", diff)
	}
	if n := e.repo.count(models.TypeInvoice); n != 1 {
		t.Errorf("expected exactly one invoice, got %d", n)
	}
	if doc.Status != models.StatusSent {
		t.Errorf("source status changed to %s", doc.Status)
	}
}

func TestCloneToQuote(t *testing.T) {
	e := newEngine(t)
	doc := e.quote(models.StatusApproved)

	res, err := e.dispatcher.Perform(context.Background(), owner, doc, "clone_to_quote")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultItem || res.Document.Type != models.TypeQuote || res.Document.Status != models.StatusDraft {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Document.ID == doc.ID || res.Document.Total != doc.Total {
		t.Errorf("clone should have a new id and the same total")
	}
}

func TestMarkSent(t *testing.T) {
	ctx := context.Background()

	t.Run("single returns item", func(t *testing.T) {
		e := newEngine(t)
		doc := e.quote(models.StatusDraft)
		res, err := e.dispatcher.Dispatch(ctx, owner, doc, KindMarkSent, ModeSingle)
		if err != nil {
			t.Fatal(err)
		}
		if res.Kind != ResultItem || doc.Status != models.StatusSent || doc.SentAt == nil {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("bulk returns nothing", func(t *testing.T) {
		e := newEngine(t)
		doc := e.quote(models.StatusDraft)
		res, err := e.dispatcher.Dispatch(ctx, owner, doc, KindMarkSent, ModeBulk)
		if err != nil {
			t.Fatal(err)
		}
		if res.Kind != ResultNone || res.IsRejected() {
			t.Errorf("expected no item, got %+v", res)
		}
		if doc.Status != models.StatusSent {
			t.Errorf("status = %s", doc.Status)
		}
	})

	t.Run("already approved is refused", func(t *testing.T) {
		e := newEngine(t)
		doc := e.quote(models.StatusApproved)
		res, err := e.dispatcher.Perform(ctx, owner, doc, "mark_sent")
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsRejected() || !errors.Is(res.Reason, ErrPreconditionViolation) {
			t.Errorf("expected rejection, got %+v", res)
		}
		if doc.Status != models.StatusApproved {
			t.Errorf("status changed to %s", doc.Status)
		}
	})
}

func TestArchiveAndDelete(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	doc := e.quote(models.StatusDraft)
	res, err := e.dispatcher.Perform(ctx, owner, doc, "archive")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultCollection || len(res.Documents) != 1 || !doc.IsArchived() || doc.IsDeleted() {
		t.Errorf("archive: unexpected %+v", res)
	}

	res, err = e.dispatcher.Perform(ctx, owner, doc, "delete")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultCollection || !res.Documents[0].IsDeleted() || doc.Status != models.StatusDeleted {
		t.Errorf("delete: unexpected %+v", res)
	}
}

func TestDownload(t *testing.T) {
	e := newEngine(t)
	doc := e.quote(models.StatusSent)
	contact := &models.Contact{ID: 4, Email: "c@example.com"}
	doc.Invitations = []models.Invitation{{Key: "k", Contact: contact}}

	res, err := e.dispatcher.Perform(context.Background(), owner, doc, "download")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultBinary || res.Filename != doc.Number+".pdf" || !strings.HasPrefix(string(res.Body), "%PDF") {
		t.Errorf("unexpected download %+v", res)
	}
	if len(e.renderer.contacts) != 1 || e.renderer.contacts[0] != contact {
		t.Errorf("renderer should receive the invitation contact")
	}
}

func TestDownloadAllowedWithViewOnly(t *testing.T) {
	e := newEngine(t)
	doc := e.quote(models.StatusDeleted)
	e.auth.deny(CapabilityEdit, doc.ID)

	res, err := e.dispatcher.Perform(context.Background(), owner, doc, "download")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultBinary {
		t.Errorf("download needs only view, got %+v", res)
	}
}

func TestEmail(t *testing.T) {
	e := newEngine(t)
	doc := e.quote(models.StatusSent)

	res, err := e.dispatcher.Perform(context.Background(), owner, doc, "email")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultNotification || res.Message != "email sent" || res.StatusCode != http.StatusOK {
		t.Errorf("unexpected result %+v", res)
	}
	if len(e.queue.emails) != 1 || e.queue.emails[0] != doc.ID {
		t.Errorf("email not enqueued: %v", e.queue.emails)
	}
}

func TestEmailQueueFailureIsError(t *testing.T) {
	e := newEngine(t)
	e.queue.err = errors.New("queue full")
	doc := e.quote(models.StatusSent)

	if _, err := e.dispatcher.Perform(context.Background(), owner, doc, "email"); err == nil {
		t.Fatal("expected infrastructure error")
	}
}

func TestHistoryNotImplemented(t *testing.T) {
	e := newEngine(t)
	res, err := e.dispatcher.Perform(context.Background(), owner, e.quote(models.StatusSent), "history")
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.Reason, ErrNotImplemented) || res.StatusCode != http.StatusNotImplemented {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestUnknownActionSingle(t *testing.T) {
	for _, token := range []string{"frobnicate", "convert", ""} {
		e := newEngine(t)
		res, err := e.dispatcher.Perform(context.Background(), owner, e.quote(models.StatusSent), token)
		if err != nil {
			t.Fatal(err)
		}
		want := "The requested action `" + token + "` is not available."
		if !errors.Is(res.Reason, ErrUnknownAction) || res.StatusCode != http.StatusBadRequest || res.Message != want {
			t.Errorf("%q: unexpected result %+v", token, res)
		}
	}
}

func TestMissingDocumentBeforeToken(t *testing.T) {
	e := newEngine(t)
	for _, token := range []string{"frobnicate", "convert", "approve"} {
		res, err := e.dispatcher.Perform(context.Background(), owner, nil, token)
		if err != nil {
			t.Fatal(err)
		}
		if !errors.Is(res.Reason, ErrNotFound) || res.StatusCode != http.StatusNotFound {
			t.Errorf("%q: unexpected result %+v", token, res)
		}
	}
}

func TestUnauthorizedSingle(t *testing.T) {
	e := newEngine(t)
	doc := e.quote(models.StatusSent)
	e.auth.deny(CapabilityEdit, doc.ID)

	res, err := e.dispatcher.Perform(context.Background(), owner, doc, "approve")
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.Reason, ErrAuthorizationDenied) || res.StatusCode != http.StatusForbidden || res.Message != "insufficient privileges" {
		t.Errorf("unexpected result %+v", res)
	}
	if doc.Status != models.StatusSent || e.repo.saves != 0 {
		t.Errorf("unauthorized action mutated the document")
	}

	stranger := models.Actor{UserID: 99, CompanyID: 2}
	res, _ = e.dispatcher.Perform(context.Background(), stranger, doc, "download")
	if !errors.Is(res.Reason, ErrAuthorizationDenied) {
		t.Errorf("other tenant must be denied, got %+v", res)
	}
}

func TestMetricsCountSuccessOnly(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	doc := e.quote(models.StatusSent)

	e.dispatcher.Perform(ctx, owner, doc, "approve")
	e.dispatcher.Perform(ctx, owner, doc, "approve")

	if diff := cmp.Diff([]string{"document.approve"}, e.metrics.names); diff != "" {
		t.Errorf("metrics mismatch:\n%s", diff)
	}
}

func TestPublicDownload(t *testing.T) {
	e := newEngine(t)
	doc := e.quote(models.StatusSent)
	contact := &models.Contact{ID: 3, Email: "viewer@example.com"}
	resolver := invitationMap{"abc": {Key: "abc", Document: doc, Contact: contact}}
	p := NewPublicDownloader(resolver, e.renderer)

	res, err := p.Download(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultBinary || e.renderer.contacts[0] != contact {
		t.Errorf("unexpected result %+v", res)
	}

	res, err = p.Download(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.Reason, ErrNotFound) || res.StatusCode != http.StatusNotFound {
		t.Errorf("expected not found, got %+v", res)
	}
}

type invitationMap map[string]*models.Invitation

func (m invitationMap) ResolveInvitation(_ context.Context, key string) (*models.Invitation, error) {
	if inv, ok := m[key]; ok {
		return inv, nil
	}
	return nil, ErrNotFound
}
