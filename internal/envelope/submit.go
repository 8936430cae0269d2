package envelope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"signline/internal/audit"
	"signline/internal/gateway"
	"signline/internal/session"
)

// ValidationError reports an incomplete envelope. It is raised before any
// network call; the caller must fix the envelope rather than retry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid envelope: " + e.Reason }

// SubmissionError reports a provider rejection at send time, with the
// structured error body flattened into one readable message.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string { return "submission failed: " + e.Message }
func (e *SubmissionError) Unwrap() error { return e.Err }

// Submitter validates an envelope and sends it through the session's
// gateway. A single attempt per Send; no retries at this layer.
type Submitter struct {
	Session     *session.Session
	CallbackURL string
	Audit       *audit.Writer
}

// Send attaches the event notification when requested, enforces the
// completeness preconditions, marks the envelope sent, and submits it
// scoped to the session account.
func (s *Submitter) Send(ctx context.Context, env *Envelope, withNotification bool) (Summary, error) {
	if withNotification {
		env.AttachEventNotification(s.CallbackURL)
	}
	if env.Recipients.Empty() {
		return Summary{}, &ValidationError{Reason: "missing recipients"}
	}
	if len(env.Documents) == 0 {
		return Summary{}, &ValidationError{Reason: "missing documents"}
	}
	env.Status = StatusSent

	path := fmt.Sprintf("/v2/accounts/%s/envelopes", s.Session.AccountID)
	body, _, err := s.Session.Client.Call(ctx, http.MethodPost, path, nil, env, nil)
	if err != nil {
		return Summary{}, submissionError(err)
	}
	var summary Summary
	if err := json.Unmarshal(body, &summary); err != nil {
		return Summary{}, &SubmissionError{Message: "malformed submission response", Err: err}
	}
	s.record(ctx, "envelope.sent", summary.EnvelopeID, audit.Payload{
		"status":  summary.Status,
		"subject": env.EmailSubject,
	})
	return summary, nil
}

// Void cancels a previously sent envelope with the given reason.
func (s *Submitter) Void(ctx context.Context, envelopeID, reason string) error {
	path := fmt.Sprintf("/v2/accounts/%s/envelopes/%s", s.Session.AccountID, envelopeID)
	payload := map[string]string{
		"status":       string(StatusVoided),
		"voidedReason": reason,
	}
	if _, _, err := s.Session.Client.Call(ctx, http.MethodPut, path, nil, payload, nil); err != nil {
		return submissionError(err)
	}
	s.record(ctx, "envelope.voided", envelopeID, audit.Payload{"reason": reason})
	return nil
}

func (s *Submitter) record(ctx context.Context, evtType, envelopeID string, payload audit.Payload) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Append(ctx, evtType, s.Session.AccountID, envelopeID, payload); err != nil {
		// The envelope already went out; a local log failure must not
		// turn a successful submission into an error.
		return
	}
}

func submissionError(err error) error {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return &SubmissionError{Message: FlattenErrorBody(apiErr.Body), Err: err}
	}
	return &SubmissionError{Message: err.Error(), Err: err}
}

// FlattenErrorBody joins the field values of a structured provider error
// into a single message, keyed in sorted order for determinism. Bodies
// that are not JSON objects pass through as-is.
func FlattenErrorBody(body string) string {
	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil || len(fields) == 0 {
		return strings.TrimSpace(body)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%v", fields[k]))
	}
	return strings.Join(parts, " - ")
}
