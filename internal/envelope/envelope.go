// Package envelope assembles and submits signature request envelopes:
// documents, recipients, anchored signing tabs, and lifecycle event
// notifications, sent as one unit to the provider.
package envelope

// Status is the envelope lifecycle state carried on the wire.
type Status string

const (
	StatusCreated Status = "created"
	StatusSent    Status = "sent"
	StatusVoided  Status = "voided"
)

// Document is one file inside the envelope. The payload travels base64
// encoded; ids are strings per the provider's REST shapes.
type Document struct {
	DocumentID     string `json:"documentId"`
	Name           string `json:"name"`
	FileExtension  string `json:"fileExtension,omitempty"`
	DocumentBase64 string `json:"documentBase64"`
}

// SignHereTab is a signature annotation positioned by anchor text.
type SignHereTab struct {
	DocumentID    string `json:"documentId"`
	AnchorString  string `json:"anchorString"`
	AnchorXOffset string `json:"anchorXOffset"`
	AnchorYOffset string `json:"anchorYOffset"`
	AnchorUnits   string `json:"anchorUnits"`
}

// DateSignedTab is a signing-date annotation positioned by anchor text.
type DateSignedTab struct {
	DocumentID    string `json:"documentId"`
	AnchorString  string `json:"anchorString"`
	AnchorXOffset string `json:"anchorXOffset"`
	AnchorYOffset string `json:"anchorYOffset"`
	AnchorUnits   string `json:"anchorUnits"`
}

// Tabs groups the annotations assigned to one recipient.
type Tabs struct {
	SignHereTabs   []SignHereTab   `json:"signHereTabs,omitempty"`
	DateSignedTabs []DateSignedTab `json:"dateSignedTabs,omitempty"`
}

// Signer is an ordinary remote recipient.
type Signer struct {
	RecipientID  string `json:"recipientId,omitempty"`
	RoutingOrder string `json:"routingOrder,omitempty"`
	RoleName     string `json:"roleName"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Tabs         *Tabs  `json:"tabs,omitempty"`
}

// InPersonSigner signs in the presence of a host on the sender's account.
type InPersonSigner struct {
	RecipientID  string `json:"recipientId,omitempty"`
	RoutingOrder string `json:"routingOrder,omitempty"`
	RoleName     string `json:"roleName"`
	HostName     string `json:"hostName"`
	HostEmail    string `json:"hostEmail"`
	SignerName   string `json:"signerName"`
	SignerEmail  string `json:"signerEmail,omitempty"`
	Tabs         *Tabs  `json:"tabs,omitempty"`
}

// Recipients is the envelope's ordered recipient set.
type Recipients struct {
	Signers         []Signer         `json:"signers,omitempty"`
	InPersonSigners []InPersonSigner `json:"inPersonSigners,omitempty"`
}

// Empty reports whether no recipient of either kind is present.
func (r *Recipients) Empty() bool {
	return r == nil || (len(r.Signers) == 0 && len(r.InPersonSigners) == 0)
}

// EnvelopeEvent maps one lifecycle status to a notification entry.
type EnvelopeEvent struct {
	StatusCode       string `json:"envelopeEventStatusCode"`
	IncludeDocuments bool   `json:"includeDocuments"`
}

// EventNotification is the webhook configuration reporting envelope
// lifecycle events to a callback URL.
type EventNotification struct {
	URL                               string          `json:"url"`
	LoggingEnabled                    bool            `json:"loggingEnabled"`
	RequireAcknowledgment             bool            `json:"requireAcknowledgment"`
	EnvelopeEvents                    []EnvelopeEvent `json:"envelopeEvents"`
	UseSoapInterface                  bool            `json:"useSoapInterface"`
	SignMessageWithX509Cert           bool            `json:"signMessageWithX509Cert"`
	IncludeDocuments                  bool            `json:"includeDocuments"`
	IncludeEnvelopeVoidReason         bool            `json:"includeEnvelopeVoidReason"`
	IncludeTimeZone                   bool            `json:"includeTimeZone"`
	IncludeSenderAccountAsCustomField bool            `json:"includeSenderAccountAsCustomField"`
	IncludeDocumentFields             bool            `json:"includeDocumentFields"`
	IncludeCertificateOfCompletion    bool            `json:"includeCertificateOfCompletion"`
}

// Envelope is the mutable aggregate built incrementally before submission.
// One envelope per build-and-send flow; concurrent mutation is the
// caller's to serialize.
type Envelope struct {
	EmailSubject      string             `json:"emailSubject"`
	Status            Status             `json:"status"`
	Documents         []Document         `json:"documents,omitempty"`
	Recipients        *Recipients        `json:"recipients,omitempty"`
	EventNotification *EventNotification `json:"eventNotification,omitempty"`
}

// Summary is the provider's read-only submission result.
type Summary struct {
	EnvelopeID     string `json:"envelopeId"`
	URI            string `json:"uri,omitempty"`
	Status         string `json:"status"`
	StatusDateTime string `json:"statusDateTime"`
}
