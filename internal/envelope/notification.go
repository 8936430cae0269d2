package envelope

// Lifecycle statuses reported to the callback URL.
const (
	EventCompleted = "Completed"
	EventDeclined  = "Declined"
	EventVoided    = "Voided"
)

// AttachEventNotification attaches the webhook configuration for the
// fixed completed/declined/voided event set. Completed deliveries carry
// the signed documents; declined and voided do not. Re-invocation
// replaces the prior notification.
func (e *Envelope) AttachEventNotification(callbackURL string) {
	e.EventNotification = &EventNotification{
		URL:                   callbackURL,
		LoggingEnabled:        true,
		RequireAcknowledgment: true,
		EnvelopeEvents: []EnvelopeEvent{
			{StatusCode: EventCompleted, IncludeDocuments: true},
			{StatusCode: EventDeclined, IncludeDocuments: false},
			{StatusCode: EventVoided, IncludeDocuments: false},
		},
		UseSoapInterface:                  false,
		SignMessageWithX509Cert:           true,
		IncludeDocuments:                  true,
		IncludeEnvelopeVoidReason:         true,
		IncludeTimeZone:                   true,
		IncludeSenderAccountAsCustomField: false,
		IncludeDocumentFields:             false,
		IncludeCertificateOfCompletion:    true,
	}
}
