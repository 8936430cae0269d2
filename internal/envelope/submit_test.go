package envelope_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"signline/internal/envelope"
	"signline/internal/gateway"
	"signline/internal/session"
)

func sessionFor(srv *httptest.Server) *session.Session {
	return &session.Session{
		AccountID: "acct-1",
		BaseURL:   srv.URL,
		Client:    gateway.New(srv.URL),
	}
}

func completeEnvelope() *envelope.Envelope {
	env := envelope.NewDraft("subject", "subject")
	env.AddDocument(envelope.Document{Name: "nda.pdf", DocumentBase64: "aGk="})
	env.SetRecipients(envelope.RecipientInput{
		Signers: []envelope.SignerInput{{Role: "Client", Name: "Ana", Email: "ana@example.com"}},
	})
	return env
}

func TestSendMissingRecipients(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	env := envelope.NewDraft("s", "s")
	env.AddDocument(envelope.Document{Name: "nda.pdf", DocumentBase64: "aGk="})
	sub := envelope.Submitter{Session: sessionFor(srv), CallbackURL: "https://cb.example.com"}
	_, err := sub.Send(context.Background(), env, true)
	var verr *envelope.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Reason != "missing recipients" {
		t.Fatalf("reason: %s", verr.Reason)
	}
	if called {
		t.Fatal("validation must run before any network call")
	}
}

func TestSendMissingDocuments(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	env := envelope.NewDraft("s", "s")
	env.SetRecipients(envelope.RecipientInput{
		Signers: []envelope.SignerInput{{Role: "Client", Name: "Ana", Email: "ana@example.com"}},
	})
	sub := envelope.Submitter{Session: sessionFor(srv)}
	_, err := sub.Send(context.Background(), env, false)
	var verr *envelope.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Reason != "missing documents" {
		t.Fatalf("reason: %s", verr.Reason)
	}
	if called {
		t.Fatal("validation must run before any network call")
	}
}

func TestSendSubmitsSentEnvelope(t *testing.T) {
	var gotPath string
	var gotEnv envelope.Envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotEnv)
		_ = json.NewEncoder(w).Encode(envelope.Summary{
			EnvelopeID:     "env-1",
			Status:         "sent",
			StatusDateTime: "2024-01-01T00:00:00Z",
		})
	}))
	defer srv.Close()

	sub := envelope.Submitter{Session: sessionFor(srv), CallbackURL: "https://cb.example.com/hook"}
	summary, err := sub.Send(context.Background(), completeEnvelope(), true)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotPath != "/v2/accounts/acct-1/envelopes" {
		t.Fatalf("path: %s", gotPath)
	}
	if gotEnv.Status != envelope.StatusSent {
		t.Fatalf("wire status: %s", gotEnv.Status)
	}
	if gotEnv.EventNotification == nil || gotEnv.EventNotification.URL != "https://cb.example.com/hook" {
		t.Fatalf("notification: %+v", gotEnv.EventNotification)
	}
	if summary.EnvelopeID != "env-1" || summary.Status != "sent" {
		t.Fatalf("summary: %+v", summary)
	}
}

func TestSendWithoutNotification(t *testing.T) {
	var gotEnv envelope.Envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotEnv)
		_ = json.NewEncoder(w).Encode(envelope.Summary{EnvelopeID: "env-2", Status: "sent"})
	}))
	defer srv.Close()

	sub := envelope.Submitter{Session: sessionFor(srv)}
	if _, err := sub.Send(context.Background(), completeEnvelope(), false); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotEnv.EventNotification != nil {
		t.Fatal("notification attached despite withNotification=false")
	}
}

func TestSendFlattensProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorCode":"ENVELOPE_IS_INCOMPLETE","message":"The envelope is not complete."}`))
	}))
	defer srv.Close()

	sub := envelope.Submitter{Session: sessionFor(srv)}
	_, err := sub.Send(context.Background(), completeEnvelope(), false)
	var serr *envelope.SubmissionError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if serr.Message != "ENVELOPE_IS_INCOMPLETE - The envelope is not complete." {
		t.Fatalf("flattened message: %s", serr.Message)
	}
	var apiErr *gateway.APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("gateway error not wrapped")
	}
}

func TestVoid(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	sub := envelope.Submitter{Session: sessionFor(srv)}
	if err := sub.Void(context.Background(), "env-1", "duplicate request"); err != nil {
		t.Fatalf("void: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/v2/accounts/acct-1/envelopes/env-1" {
		t.Fatalf("request: %s %s", gotMethod, gotPath)
	}
	if gotBody["status"] != "voided" || gotBody["voidedReason"] != "duplicate request" {
		t.Fatalf("body: %v", gotBody)
	}
}

func TestFlattenErrorBody(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"sorted fields", `{"errorCode":"X","message":"Y"}`, "X - Y"},
		{"single field", `{"message":"broken"}`, "broken"},
		{"not json", "plain failure", "plain failure"},
		{"empty object", `{}`, "{}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := envelope.FlattenErrorBody(tc.in); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
