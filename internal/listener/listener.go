// Package listener exposes the receiving end of the envelope event
// notifications: an HTTP surface the provider posts lifecycle callbacks
// to, recorded into the local audit log.
package listener

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"signline/internal/audit"
)

// Config for the callback handler.
type Config struct {
	Audit    audit.Writer
	BasePath string
}

// EnvelopeCallback is the provider's lifecycle delivery body.
type EnvelopeCallback struct {
	EnvelopeID     string `json:"envelopeId"`
	AccountID      string `json:"accountId,omitempty"`
	Status         string `json:"status"`
	StatusDateTime string `json:"statusDateTime,omitempty"`
	VoidedReason   string `json:"voidedReason,omitempty"`
	DeclineReason  string `json:"declineReason,omitempty"`
}

// CallbackAck confirms receipt; the notification contract requires an
// acknowledgment response.
type CallbackAck struct {
	Received   bool   `json:"received"`
	EnvelopeID string `json:"envelopeId"`
}

// New returns an HTTP handler accepting envelope event callbacks.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	router := chi.NewRouter()
	hcfg := huma.DefaultConfig("Signline Callback Listener", "0.1.0")
	hcfg.Servers = []*huma.Server{{URL: basePath}}
	var api huma.API
	if basePath == "/" {
		api = humachi.New(router, hcfg)
	} else {
		sub := chi.NewRouter()
		api = humachi.New(sub, hcfg)
		router.Mount(basePath, sub)
	}

	registerHealth(api)
	registerCallback(api, cfg.Audit)
	return router, nil
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerCallback(api huma.API, aud audit.Writer) {
	huma.Register(api, huma.Operation{
		OperationID:   "envelope-callback",
		Method:        http.MethodPost,
		Path:          "/callbacks/envelope",
		Summary:       "Receive an envelope lifecycle event",
		DefaultStatus: http.StatusOK,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body EnvelopeCallback `json:"body"`
	}) (*struct {
		Body CallbackAck `json:"body"`
	}, error) {
		cb := input.Body
		if cb.EnvelopeID == "" {
			return nil, huma.Error400BadRequest("envelopeId is required")
		}
		if cb.Status == "" {
			return nil, huma.Error400BadRequest("status is required")
		}
		payload := audit.Payload{"status": cb.Status}
		if cb.StatusDateTime != "" {
			payload["status_date_time"] = cb.StatusDateTime
		}
		if cb.VoidedReason != "" {
			payload["voided_reason"] = cb.VoidedReason
		}
		if cb.DeclineReason != "" {
			payload["decline_reason"] = cb.DeclineReason
		}
		evtType := "callback." + strings.ToLower(cb.Status)
		if err := aud.Append(ctx, evtType, cb.AccountID, cb.EnvelopeID, payload); err != nil {
			return nil, huma.Error500InternalServerError("record callback", err)
		}
		return &struct {
			Body CallbackAck `json:"body"`
		}{Body: CallbackAck{Received: true, EnvelopeID: cb.EnvelopeID}}, nil
	})
}
