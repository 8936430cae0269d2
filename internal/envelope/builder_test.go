package envelope_test

import (
	"encoding/base64"
	"testing"

	"signline/internal/envelope"
)

func TestNewDraftSubjectFallback(t *testing.T) {
	env := envelope.NewDraft("", "Portal - Signature Request")
	if env.EmailSubject != "Portal - Signature Request" {
		t.Fatalf("subject: %s", env.EmailSubject)
	}
	if env.Status != envelope.StatusCreated {
		t.Fatalf("status: %s", env.Status)
	}
	if env.Recipients != nil || len(env.Documents) != 0 {
		t.Fatal("draft must start empty")
	}

	env = envelope.NewDraft("Custom subject", "fallback")
	if env.EmailSubject != "Custom subject" {
		t.Fatalf("explicit subject lost: %s", env.EmailSubject)
	}
}

func TestSetRecipientsPreservesOrderAndReplaces(t *testing.T) {
	env := envelope.NewDraft("s", "s")
	env.SetRecipients(envelope.RecipientInput{
		Signers: []envelope.SignerInput{
			{Role: "Client", Name: "Ana", Email: "ana@example.com"},
			{Role: "Broker", Name: "Bo", Email: "bo@example.com"},
		},
		InPersonSigners: []envelope.InPersonSignerInput{
			{Role: "Witness", HostName: "Host", HostEmail: "host@example.com", SignerName: "Wes"},
		},
	})
	r := env.Recipients
	if len(r.Signers) != 2 || len(r.InPersonSigners) != 1 {
		t.Fatalf("recipient counts: %+v", r)
	}
	if r.Signers[0].RoleName != "Client" || r.Signers[1].RoleName != "Broker" {
		t.Fatalf("order not preserved: %+v", r.Signers)
	}
	if r.Signers[0].RecipientID != "1" || r.Signers[1].RecipientID != "2" || r.InPersonSigners[0].RecipientID != "3" {
		t.Fatalf("recipient ids: %+v", r)
	}

	env.SetRecipients(envelope.RecipientInput{
		Signers: []envelope.SignerInput{{Role: "Only", Name: "O", Email: "o@example.com"}},
	})
	if len(env.Recipients.Signers) != 1 || len(env.Recipients.InPersonSigners) != 0 {
		t.Fatalf("prior recipient set survived: %+v", env.Recipients)
	}
}

func TestAddDocumentAssignsSequentialIDs(t *testing.T) {
	env := envelope.NewDraft("s", "s")
	env.AddDocument(envelope.Document{Name: "a.pdf"})
	env.AddDocument(envelope.Document{Name: "b.pdf"})
	env.AddDocument(envelope.Document{DocumentID: "9", Name: "c.pdf"})
	if env.Documents[0].DocumentID != "1" || env.Documents[1].DocumentID != "2" {
		t.Fatalf("ids: %+v", env.Documents)
	}
	if env.Documents[2].DocumentID != "9" {
		t.Fatal("explicit id overwritten")
	}
}

func TestDocumentFromBytes(t *testing.T) {
	raw := []byte("hello pdf")
	doc := envelope.DocumentFromBytes("nda.pdf", raw)
	if doc.FileExtension != "pdf" {
		t.Fatalf("extension: %s", doc.FileExtension)
	}
	decoded, err := base64.StdEncoding.DecodeString(doc.DocumentBase64)
	if err != nil || string(decoded) != "hello pdf" {
		t.Fatalf("payload round trip: %q err=%v", decoded, err)
	}
}

func TestRecipientsEmpty(t *testing.T) {
	var r *envelope.Recipients
	if !r.Empty() {
		t.Fatal("nil recipients should be empty")
	}
	r = &envelope.Recipients{}
	if !r.Empty() {
		t.Fatal("zero recipients should be empty")
	}
	r.InPersonSigners = []envelope.InPersonSigner{{RoleName: "Witness"}}
	if r.Empty() {
		t.Fatal("in-person signer should count")
	}
}
