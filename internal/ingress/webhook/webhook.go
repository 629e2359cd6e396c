// Package webhook implements the "triggers/http_webhook" plugin: an HTTP
// ingress adapter that turns inbound POSTs into Envelopes.
//
// Grounded on original_source/palvella/plugins/lib/trigger/github_webhook
// (HMAC-SHA256 signature verification over the raw body, event metadata
// taken from request headers, envelope meta split into "mq"/"webhook"
// sections) generalized from GitHub-specific to a configurable secret and
// signature header, per SPEC_FULL.md §6 item 3. The "receive_all" variant
// from original_source/palvella/plugins/lib/trigger/receive_all is folded
// in as the secret == "" case (§6 item 4) rather than a second plugin type.
//
// HTTP serving uses gin, grounded on the teacher's cmd/main.go (gin.New +
// gin.Recovery, no default middleware bundle); HMAC verification is
// grounded on the teacher's internal/handlers/integrations.go
// calculateHMAC helper.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/streamspace/automationd/internal/apperrors"
	"github.com/streamspace/automationd/internal/dispatcher"
	"github.com/streamspace/automationd/internal/envelope"
	"github.com/streamspace/automationd/internal/instance"
	"github.com/streamspace/automationd/internal/kinds"
	"github.com/streamspace/automationd/internal/logger"
)

// PluginType is this plugin's identity within the "triggers" namespace.
const PluginType = "http_webhook"

// Kind is the registered Kind for this plugin.
var Kind = &kinds.Kind{
	Namespace:  "triggers",
	PluginType: PluginType,
	Role:       kinds.RolePlugin,
	Requires:   []kinds.Predicate{{Namespace: "mq"}},
	Defaults: map[string]interface{}{
		"bind_addr":        ":8080",
		"path":             "/webhook",
		"signature_header": "X-Hub-Signature-256",
	},
}

func init() {
	kinds.Default.MustRegister(kinds.TriggersBase)
	kinds.Default.MustRegister(Kind)
}

// NewFactory returns an instance.Factory binding every constructed Webhook
// to d, so its route handler can call d.Trigger on receipt.
func NewFactory(d *dispatcher.Dispatcher) instance.Factory {
	return func(spec kinds.Spec) (instance.Handler, error) {
		return &Webhook{spec: spec, dispatcher: d}, nil
	}
}

// Webhook is one configured HTTP ingress endpoint.
type Webhook struct {
	instance.Base

	spec       kinds.Spec
	dispatcher *dispatcher.Dispatcher

	self   *instance.Instance
	server *http.Server
}

func (w *Webhook) bindAddr() string { return str(w.spec.Data, "bind_addr", ":8080") }
func (w *Webhook) path() string     { return str(w.spec.Data, "path", "/webhook") }
func (w *Webhook) secret() string   { return str(w.spec.Data, "secret", "") }
func (w *Webhook) sigHeader() string {
	return str(w.spec.Data, "signature_header", "X-Hub-Signature-256")
}

// OnInit registers the configured route on a dedicated gin engine and
// starts serving in the background; it must not block, matching the
// Instance Manager's OnInit contract.
func (w *Webhook) OnInit(ctx context.Context, ictx *instance.Context) error {
	w.self = ictx.Self()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.POST(w.path(), w.handle)

	w.server = &http.Server{Addr: w.bindAddr(), Handler: engine}

	log := logger.Instance("triggers", PluginType, w.self.Name())
	go func() {
		if err := w.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("webhook listener stopped unexpectedly")
		}
	}()
	log.Info().Str("bind_addr", w.bindAddr()).Str("path", w.path()).Msg("webhook listener started")
	return nil
}

// Close shuts down the HTTP listener.
func (w *Webhook) Close(ctx context.Context) error {
	if w.server == nil {
		return nil
	}
	return w.server.Shutdown(ctx)
}

func (w *Webhook) handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	if secret := w.secret(); secret != "" {
		if !validSignature(body, secret, c.GetHeader(w.sigHeader())) {
			logger.Instance("triggers", PluginType, w.self.Name()).Warn().Msg("rejected webhook with invalid signature")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
	}

	var payload interface{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
			return
		}
	}

	eventType := c.GetHeader("X-Event-Type")
	delivery := c.GetHeader("X-Delivery-Id")
	if delivery == "" {
		delivery = uuid.NewString()
	}

	env, err := envelope.FromSender("triggers", PluginType, w.self.Name(),
		map[string]map[string]interface{}{
			"mq":      {"event_type": "trigger"},
			"webhook": {"event_type": eventType, "delivery": delivery},
		},
		payload,
	)
	if err != nil {
		logger.Instance("triggers", PluginType, w.self.Name()).Error().
			Err(apperrors.Operation("webhook.handle", "failed to build envelope", err)).Msg("dropping inbound webhook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	w.dispatcher.Trigger(c.Request.Context(), w.self, env)
	c.Status(http.StatusNoContent)
}

func validSignature(body []byte, secret, header string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(header))
}

func str(data map[string]interface{}, key, def string) string {
	if data == nil {
		return def
	}
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return def
}
