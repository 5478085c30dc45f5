// Package store is the GORM persistence layer for documents and their
// supporting records. Every query is scoped to one company.
package store

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist inside the caller's company.
var ErrNotFound = errors.New("record not found")

// Store persists documents, sequences and invitations.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// New creates a store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB exposes the underlying connection for callers that run their own queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
