package notify

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
)

func TestSMTPNotifier_SendsToRecipientWithLoginName(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	n := NewSMTPNotifier(SMTPConfig{Host: "mail.internal", Port: 587, From: "no-reply@insightdesk.io"})
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	if err := n.Notify(context.Background(), "alice@example.com", "alice"); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	if gotAddr != "mail.internal:587" {
		t.Fatalf("unexpected relay address %q", gotAddr)
	}
	if gotFrom != "no-reply@insightdesk.io" {
		t.Fatalf("unexpected sender %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Fatalf("unexpected recipients %v", gotTo)
	}

	body := string(gotMsg)
	if !strings.Contains(body, "To: alice@example.com") {
		t.Fatalf("missing To header in %q", body)
	}
	if !strings.Contains(body, "Your login name is: alice") {
		t.Fatalf("login name missing from body: %q", body)
	}
	if strings.Contains(body, "password:") {
		t.Fatal("the mail must never carry a password")
	}
}

func TestSMTPNotifier_AuthOnlyWithUsername(t *testing.T) {
	var gotAuth smtp.Auth
	n := NewSMTPNotifier(SMTPConfig{Host: "mail.internal", Port: 25, From: "x@y.z"})
	n.send = func(_ string, a smtp.Auth, _ string, _ []string, _ []byte) error {
		gotAuth = a
		return nil
	}

	if err := n.Notify(context.Background(), "a@b.c", "a"); err != nil {
		t.Fatal(err)
	}
	if gotAuth != nil {
		t.Fatal("expected anonymous relay when no username configured")
	}

	n = NewSMTPNotifier(SMTPConfig{Host: "mail.internal", Port: 25, From: "x@y.z", Username: "u", Password: "p"})
	n.send = func(_ string, a smtp.Auth, _ string, _ []string, _ []byte) error {
		gotAuth = a
		return nil
	}
	if err := n.Notify(context.Background(), "a@b.c", "a"); err != nil {
		t.Fatal(err)
	}
	if gotAuth == nil {
		t.Fatal("expected PLAIN auth when credentials configured")
	}
}
