// Package handler contains the Lambda entrypoints: the inbound SMS webhook
// and the periodic check-in trigger.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

// emptyTwiML tells Twilio the webhook was received and no reply should be
// sent synchronously; all outbound messages go through the REST API instead.
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// MessageSink consumes one inbound message. *conversation.Tracker satisfies
// it.
type MessageSink interface {
	HandleInbound(ctx context.Context, sender, text string) error
}

// MessageHandler adapts the Twilio webhook event to the conversation
// tracker.
type MessageHandler struct {
	sink   MessageSink
	logger *slog.Logger
}

func NewMessageHandler(sink MessageSink, logger *slog.Logger) (*MessageHandler, error) {
	if sink == nil {
		return nil, errors.New("handler: message sink must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageHandler{sink: sink, logger: logger}, nil
}

// Handle processes one webhook delivery. Conversation handler failures and
// store failures are returned so they land on the operator-visible error
// path; Twilio's retry then re-delivers the message against the preserved
// state.
func (h *MessageHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)
	logger := h.logger.With("correlationId", corrID)

	form, err := url.ParseQuery(event.Body)
	if err != nil {
		logger.Error("unparseable webhook body", "err", err)
		return textResponse(http.StatusBadRequest, "bad request", corrID), nil
	}
	sender := strings.TrimSpace(form.Get("From"))
	body := form.Get("Body")
	if sender == "" || body == "" {
		logger.Error("webhook missing From or Body")
		return textResponse(http.StatusBadRequest, "bad request", corrID), nil
	}

	if err := h.sink.HandleInbound(ctx, sender, body); err != nil {
		logger.Error("inbound message handling failed", "sender", sender, "err", err)
		return events.APIGatewayProxyResponse{}, err
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":     "text/xml",
			"X-Correlation-Id": corrID,
		},
		Body: emptyTwiML,
	}, nil
}

func textResponse(status int, body, corrID string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":     "text/plain",
			"X-Correlation-Id": corrID,
		},
		Body: body,
	}
}

// correlationID reuses a caller-provided correlation header when present so
// log lines can be joined across systems, minting a fresh ID otherwise.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "x-correlation-id") && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
