package envelope

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
)

// SignerInput is one raw signer row as supplied by the application layer.
type SignerInput struct {
	Role  string
	Name  string
	Email string
}

// InPersonSignerInput is one raw in-person signer row.
type InPersonSignerInput struct {
	Role        string
	HostName    string
	HostEmail   string
	SignerName  string
	SignerEmail string
}

// RecipientInput carries the raw recipient rows for SetRecipients.
type RecipientInput struct {
	Signers         []SignerInput
	InPersonSigners []InPersonSignerInput
}

// NewDraft returns a draft envelope with the given subject, falling back
// to the configured default subject when none is supplied. The draft has
// no recipients or documents yet.
func NewDraft(subject, fallbackSubject string) *Envelope {
	if subject == "" {
		subject = fallbackSubject
	}
	return &Envelope{
		EmailSubject: subject,
		Status:       StatusCreated,
	}
}

// SetRecipients converts the raw input rows into typed recipients,
// preserving input order, and replaces any previous recipient set.
// Recipient ids and routing orders are assigned sequentially across both
// collections.
func (e *Envelope) SetRecipients(in RecipientInput) {
	r := &Recipients{}
	seq := 0
	for _, s := range in.Signers {
		seq++
		r.Signers = append(r.Signers, Signer{
			RecipientID:  fmt.Sprintf("%d", seq),
			RoutingOrder: fmt.Sprintf("%d", seq),
			RoleName:     s.Role,
			Name:         s.Name,
			Email:        s.Email,
		})
	}
	for _, s := range in.InPersonSigners {
		seq++
		r.InPersonSigners = append(r.InPersonSigners, InPersonSigner{
			RecipientID:  fmt.Sprintf("%d", seq),
			RoutingOrder: fmt.Sprintf("%d", seq),
			RoleName:     s.Role,
			HostName:     s.HostName,
			HostEmail:    s.HostEmail,
			SignerName:   s.SignerName,
			SignerEmail:  s.SignerEmail,
		})
	}
	e.Recipients = r
}

// AddDocument appends a document, assigning the next document id when the
// input carries none.
func (e *Envelope) AddDocument(doc Document) {
	if doc.DocumentID == "" {
		doc.DocumentID = fmt.Sprintf("%d", len(e.Documents)+1)
	}
	e.Documents = append(e.Documents, doc)
}

// DocumentFromBytes builds a document from raw file contents, encoding the
// payload and deriving the file extension from the name.
func DocumentFromBytes(name string, contents []byte) Document {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return Document{
		Name:           name,
		FileExtension:  ext,
		DocumentBase64: base64.StdEncoding.EncodeToString(contents),
	}
}
