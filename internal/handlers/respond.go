package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/i18n"
	"github.com/diewo77/go-quotes/internal/actions"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/policy"
	"github.com/diewo77/go-quotes/validation"
)

type documentList struct {
	Data    []*models.Document `json:"data"`
	Skipped []actions.Skip     `json:"skipped,omitempty"`
	Meta    *pageMeta          `json:"meta,omitempty"`
}

type pageMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// writeResult turns an engine Result into an HTTP response.
func writeResult(w http.ResponseWriter, res actions.Result) {
	status := res.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	switch res.Kind {
	case actions.ResultItem:
		httpx.JSON(w, status, res.Document)
	case actions.ResultCollection:
		docs := res.Documents
		if docs == nil {
			docs = []*models.Document{}
		}
		httpx.JSON(w, status, documentList{Data: docs, Skipped: res.Skipped})
	case actions.ResultBinary:
		httpx.Attachment(w, "application/pdf", res.Filename, res.Body)
	case actions.ResultNotification, actions.ResultRejected:
		var skipped any
		if len(res.Skipped) > 0 {
			skipped = res.Skipped
		}
		httpx.Message(w, status, res.Message, skipped)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeInternal logs err and answers a generic 500.
func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}

func writeViolations(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	lang := i18n.LangFromContext(r.Context())
	httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v.Localized(func(code string) string {
		return i18n.T(lang, code)
	}))
}

// requireActor returns the request actor or answers 401.
func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := policy.ActorFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	}
	return actor, ok
}

// pathID parses the {id} wildcard, answering 400 when it is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func itoa(i int) string { return strconv.Itoa(i) }
