package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickwarner/garminsync/internal/observability"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const channelWhatsApp = "whatsapp"

// WhatsAppConfig configures the Meta Graph API client.
type WhatsAppConfig struct {
	GraphURL  string
	PhoneID   string
	Token     string
	Recipient string
	Timeout   time.Duration
}

// WhatsAppClient sends interactive messages through the WhatsApp Business API.
type WhatsAppClient struct {
	graphURL   string
	phoneID    string
	token      string
	recipient  string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// NewWhatsAppClient creates a client that messages cfg.Recipient.
func NewWhatsAppClient(cfg WhatsAppConfig, logger *zap.Logger, metrics observability.MetricsRegistry) *WhatsAppClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &WhatsAppClient{
		graphURL:  strings.TrimRight(cfg.GraphURL, "/"),
		phoneID:   cfg.PhoneID,
		token:     cfg.Token,
		recipient: cfg.Recipient,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Message is a WhatsApp Cloud API message.
type Message struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Interactive      *Interactive `json:"interactive,omitempty"`
}

// Interactive is a button message body.
type Interactive struct {
	Type   string            `json:"type"`
	Header *InteractiveText  `json:"header,omitempty"`
	Body   InteractiveText   `json:"body"`
	Action InteractiveAction `json:"action"`
}

type InteractiveText struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

type InteractiveAction struct {
	Buttons []Button `json:"buttons"`
}

type Button struct {
	Type  string      `json:"type"`
	Reply ButtonReply `json:"reply"`
}

type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// KneeCheckMessage builds the morning knee status question with three reply buttons.
func KneeCheckMessage(to string) Message {
	return Message{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive: &Interactive{
			Type:   "button",
			Header: &InteractiveText{Type: "text", Text: "Guten Morgen! ☀️"},
			Body:   InteractiveText{Text: "Wie fühlt sich dein Knie heute an?"},
			Action: InteractiveAction{Buttons: []Button{
				{Type: "reply", Reply: ButtonReply{ID: "knee_green", Title: "🟢 Alles gut"}},
				{Type: "reply", Reply: ButtonReply{ID: "knee_yellow", Title: "🟡 Leicht"}},
				{Type: "reply", Reply: ButtonReply{ID: "knee_red", Title: "🔴 Schmerzen"}},
			}},
		},
	}
}

// SendKneeCheck sends the knee status question to the configured recipient.
func (c *WhatsAppClient) SendKneeCheck(ctx context.Context) error {
	return c.Send(ctx, KneeCheckMessage(c.recipient))
}

// Send posts msg to the Graph API messages endpoint.
func (c *WhatsAppClient) Send(ctx context.Context, msg Message) error {
	outcome := "failure"
	defer func() { c.metrics.IncrementNotifications(channelWhatsApp, outcome) }()

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.graphURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("WhatsApp API error: %s", strings.TrimSpace(string(detail)))
	}

	outcome = "success"
	c.logger.Info("whatsapp message sent", zap.String("type", msg.Type))
	return nil
}
