package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-quotes/internal/config"
)

func TestBuildMultipart(t *testing.T) {
	pdf := bytes.Repeat([]byte("%PDF-1.4 "), 20)
	raw, err := Build("billing@acme.test", Message{
		To:          []string{"ada@globex.test"},
		Subject:     "Devis n° QUO-2026-0001",
		Body:        "Bonjour",
		Attachments: []Attachment{{Filename: "QUO-2026-0001.pdf", ContentType: "application/pdf", Data: pdf}},
	}, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	if err != nil || subject != "Devis n° QUO-2026-0001" {
		t.Fatalf("subject = %q (%v)", subject, err)
	}
	_, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("content type: %v", err)
	}
	mr := multipart.NewReader(msg.Body, params["boundary"])

	text, err := mr.NextPart()
	if err != nil {
		t.Fatalf("text part: %v", err)
	}
	if b, _ := io.ReadAll(text); string(b) != "Bonjour" {
		t.Fatalf("body = %q", b)
	}

	att, err := mr.NextPart()
	if err != nil {
		t.Fatalf("attachment part: %v", err)
	}
	if att.FileName() != "QUO-2026-0001.pdf" {
		t.Fatalf("filename = %q", att.FileName())
	}
	// multipart.Reader does not decode base64 for us.
	encoded, _ := io.ReadAll(att)
	for _, line := range strings.Split(strings.TrimSpace(string(encoded)), "\r\n") {
		if len(line) > 76 {
			t.Fatalf("base64 line longer than 76: %d", len(line))
		}
	}
}

func TestSMTPMailerSend(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "smtp.acme.test", Port: 2525, Username: "u", Password: "p", From: "billing@acme.test"})
	var gotAddr, gotFrom string
	var gotTo []string
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		if a == nil {
			t.Error("expected auth")
		}
		gotAddr, gotFrom, gotTo = addr, from, to
		return nil
	}
	if err := m.Send(context.Background(), Message{To: []string{"ada@globex.test"}, Subject: "hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.acme.test:2525" || gotFrom != "billing@acme.test" || len(gotTo) != 1 {
		t.Fatalf("send called with %s %s %v", gotAddr, gotFrom, gotTo)
	}

	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("550") }
	if err := m.Send(context.Background(), Message{To: []string{"x@y.test"}}); err == nil {
		t.Fatal("expected relay error")
	}
	if err := m.Send(context.Background(), Message{}); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
}

func TestNewSelectsMailer(t *testing.T) {
	if _, ok := New(config.MailConfig{}).(LogMailer); !ok {
		t.Fatal("expected LogMailer without host")
	}
	if _, ok := New(config.MailConfig{Host: "smtp"}).(*SMTPMailer); !ok {
		t.Fatal("expected SMTPMailer with host")
	}
	if err := (LogMailer{}).Send(context.Background(), Message{To: []string{"a@b.test"}}); err != nil {
		t.Fatalf("LogMailer: %v", err)
	}
}
