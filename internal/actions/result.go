package actions

import (
	"fmt"
	"net/http"

	"github.com/diewo77/go-quotes/internal/models"
)

// ResultKind tags the variant held by a Result.
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultItem
	ResultCollection
	ResultBinary
	ResultNotification
	ResultRejected
)

// Skip records a batch item that was left out and why.
type Skip struct {
	ID     uint   `json:"id"`
	Number string `json:"number"`
	Reason string `json:"reason"`
}

// Result is the outcome of one dispatcher or coordinator call.
// Only the fields of the variant named by Kind are set.
type Result struct {
	Kind ResultKind

	Document  *models.Document
	Documents []*models.Document

	Body     []byte
	Filename string

	Message    string
	StatusCode int
	Reason     error

	Skipped []Skip
}

// Item wraps a single document.
func Item(doc *models.Document) Result {
	return Result{Kind: ResultItem, Document: doc, StatusCode: http.StatusOK}
}

// Collection wraps a list of documents.
func Collection(docs []*models.Document) Result {
	return Result{Kind: ResultCollection, Documents: docs, StatusCode: http.StatusOK}
}

// BinaryStream wraps a downloadable file.
func BinaryStream(body []byte, filename string) Result {
	return Result{Kind: ResultBinary, Body: body, Filename: filename, StatusCode: http.StatusOK}
}

// Notification is a plain message with a status code.
func Notification(message string, status int) Result {
	return Result{Kind: ResultNotification, Message: message, StatusCode: status}
}

// Rejected reports a refused action. reason is one of the package errors.
func Rejected(reason error, message string, status int) Result {
	return Result{Kind: ResultRejected, Reason: reason, Message: message, StatusCode: status}
}

// None is returned by bulk-mode branches that produce no per-item output.
func None() Result {
	return Result{Kind: ResultNone}
}

// IsRejected reports whether the result is a rejection.
func (r Result) IsRejected() bool {
	return r.Kind == ResultRejected
}

func unknownAction(token string) Result {
	return Rejected(ErrUnknownAction,
		fmt.Sprintf("The requested action `%s` is not available.", token),
		http.StatusBadRequest)
}

func insufficientPrivileges() Result {
	return Rejected(ErrAuthorizationDenied, "insufficient privileges", http.StatusForbidden)
}
