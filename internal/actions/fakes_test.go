package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/go-quotes/internal/models"
)

const testCompany = 1

var owner = models.Actor{UserID: 10, CompanyID: testCompany, Email: "owner@acme.test"}

// memRepo is an in-memory Repository.
type memRepo struct {
	mu      sync.Mutex
	docs    map[uint]*models.Document
	nextID  uint
	saves   int
	company *models.Company
}

func newMemRepo() *memRepo {
	return &memRepo{
		docs:    make(map[uint]*models.Document),
		nextID:  100,
		company: &models.Company{ID: testCompany, Name: "Acme"},
	}
}

func (r *memRepo) add(doc *models.Document) *models.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID == 0 {
		r.nextID++
		doc.ID = r.nextID
	}
	if doc.CompanyID == 0 {
		doc.CompanyID = testCompany
	}
	if doc.Number == "" {
		doc.Number = fmt.Sprintf("%s-%d", doc.Type, doc.ID)
	}
	r.docs[doc.ID] = doc
	return doc
}

func (r *memRepo) Save(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.docs[doc.ID] = doc
	return nil
}

func (r *memRepo) Delete(ctx context.Context, doc *models.Document) error {
	doc.SoftDelete(time.Now())
	return r.Save(ctx, doc)
}

func (r *memRepo) FindByIDs(_ context.Context, companyID uint, ids []uint, includeDeleted bool) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Document
	for _, id := range ids {
		d, ok := r.docs[id]
		if !ok || d.CompanyID != companyID {
			continue
		}
		if d.IsDeleted() && !includeDeleted {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *memRepo) Company(_ context.Context, id uint) (*models.Company, error) {
	if id != r.company.ID {
		return nil, errors.New("no such company")
	}
	return r.company, nil
}

func (r *memRepo) count(t models.DocumentType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.docs {
		if d.Type == t {
			n++
		}
	}
	return n
}

// memFactory mirrors the real factory rules on top of memRepo.
type memFactory struct {
	repo *memRepo
}

func (f *memFactory) copyOf(source *models.Document, t models.DocumentType, userID uint) *models.Document {
	doc := &models.Document{
		CompanyID: source.CompanyID,
		UserID:    userID,
		ClientID:  source.ClientID,
		Type:      t,
		Status:    models.StatusDraft,
		Total:     source.Total,
		Balance:   source.Total,
	}
	for _, item := range source.Items {
		doc.Items = append(doc.Items, item.Copy())
	}
	return f.repo.add(doc)
}

func (f *memFactory) CloneSameType(_ context.Context, source *models.Document, userID uint) (*models.Document, error) {
	return f.copyOf(source, source.Type, userID), nil
}

func (f *memFactory) ConvertToOtherType(_ context.Context, source *models.Document, userID uint) (*models.Document, error) {
	if !source.IsConvertible() {
		return nil, ErrConversion
	}
	doc := f.copyOf(source, source.Type.Counterpart(), userID)
	doc.ConvertedFromID = &source.ID
	return doc, nil
}

func (f *memFactory) MarkConverted(ctx context.Context, source, target *models.Document) error {
	if err := source.Transition(models.StatusConverted, time.Now()); err != nil {
		return err
	}
	source.ConvertedToID = &target.ID
	return f.repo.Save(ctx, source)
}

// denyAuth allows everything except the listed (capability, document) pairs.
type denyAuth struct {
	denied map[Capability]map[uint]bool
}

func newDenyAuth() *denyAuth {
	return &denyAuth{denied: map[Capability]map[uint]bool{}}
}

func (a *denyAuth) deny(c Capability, ids ...uint) {
	if a.denied[c] == nil {
		a.denied[c] = map[uint]bool{}
	}
	for _, id := range ids {
		a.denied[c][id] = true
	}
}

func (a *denyAuth) Can(_ context.Context, actor models.Actor, c Capability, doc *models.Document) bool {
	if actor.IsZero() || actor.CompanyID != doc.CompanyID {
		return false
	}
	return !a.denied[c][doc.ID]
}

type fileRenderer struct {
	dir      string
	contacts []*models.Contact
}

func (r *fileRenderer) RenderPDF(_ context.Context, doc *models.Document, contact *models.Contact) (string, error) {
	r.contacts = append(r.contacts, contact)
	path := filepath.Join(r.dir, doc.Number+".pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 "+doc.Number), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type recordQueue struct {
	emails []uint
	zips   [][]uint
	to     string
	err    error
}

func (q *recordQueue) EnqueueZipAndEmail(_ context.Context, docs []*models.Document, _ *models.Company, address string) error {
	if q.err != nil {
		return q.err
	}
	var ids []uint
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	q.zips = append(q.zips, ids)
	q.to = address
	return nil
}

func (q *recordQueue) EnqueueEmail(_ context.Context, doc *models.Document) error {
	if q.err != nil {
		return q.err
	}
	q.emails = append(q.emails, doc.ID)
	return nil
}

type countMetrics struct {
	names []string
}

func (m *countMetrics) Increment(_ context.Context, name string, _ uint) {
	m.names = append(m.names, name)
}

type engine struct {
	repo       *memRepo
	auth       *denyAuth
	renderer   *fileRenderer
	queue      *recordQueue
	metrics    *countMetrics
	dispatcher *Dispatcher
	bulk       *Coordinator
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	e := &engine{
		repo:     newMemRepo(),
		auth:     newDenyAuth(),
		renderer: &fileRenderer{dir: t.TempDir()},
		queue:    &recordQueue{},
		metrics:  &countMetrics{},
	}
	e.dispatcher = NewDispatcher(Deps{
		Auth:     e.auth,
		Repo:     e.repo,
		Factory:  &memFactory{repo: e.repo},
		Renderer: e.renderer,
		Queue:    e.queue,
		Metrics:  e.metrics,
	})
	e.bulk = NewCoordinator(e.dispatcher)
	return e
}

func (e *engine) quote(status models.Status) *models.Document {
	return e.repo.add(&models.Document{
		UserID:   owner.UserID,
		ClientID: 1,
		Type:     models.TypeQuote,
		Status:   status,
		Total:    120,
		Items: []models.LineItem{
			{ID: 1, Description: "Design", Quantity: 1, UnitPrice: 100, TaxRate: 0.2, Position: 1},
		},
	})
}
