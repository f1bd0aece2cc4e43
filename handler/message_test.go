package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
)

type stubSink struct {
	err    error
	sender string
	text   string
	calls  int
}

func (s *stubSink) HandleInbound(_ context.Context, sender, text string) error {
	s.calls++
	s.sender = sender
	s.text = text
	return s.err
}

func makeWebhookEvent(from, body string) events.APIGatewayProxyRequest {
	form := url.Values{"From": {from}, "Body": {body}}
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/message",
		Headers:    map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:       form.Encode(),
	}
}

func TestNewMessageHandler_ValidatesDependency(t *testing.T) {
	_, err := NewMessageHandler(nil, nil)
	require.Error(t, err)
}

func TestMessageHandle_HappyPath(t *testing.T) {
	sink := &stubSink{}
	h, err := NewMessageHandler(sink, nil)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeWebhookEvent("+15551234567", "hello there"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, emptyTwiML, resp.Body)
	require.Equal(t, "text/xml", resp.Headers["Content-Type"])
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])

	require.Equal(t, 1, sink.calls)
	require.Equal(t, "+15551234567", sink.sender)
	require.Equal(t, "hello there", sink.text)
}

func TestMessageHandle_URLEncodedFieldsDecoded(t *testing.T) {
	sink := &stubSink{}
	h, err := NewMessageHandler(sink, nil)
	require.NoError(t, err)

	// Twilio form-encodes the plus sign and spaces.
	event := makeWebhookEvent("+15551234567", "yes, go ahead")
	_, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "+15551234567", sink.sender)
	require.Equal(t, "yes, go ahead", sink.text)
}

func TestMessageHandle_MissingFields(t *testing.T) {
	sink := &stubSink{}
	h, err := NewMessageHandler(sink, nil)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: "Body=hi"})
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Zero(t, sink.calls)
}

func TestMessageHandle_MalformedBody(t *testing.T) {
	sink := &stubSink{}
	h, err := NewMessageHandler(sink, nil)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: "a=%zz"})
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMessageHandle_SinkFailureSurfaces(t *testing.T) {
	sink := &stubSink{err: errors.New("handler blew up")}
	h, err := NewMessageHandler(sink, nil)
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), makeWebhookEvent("+15551234567", "hello"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "handler blew up")
}

func TestMessageHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	sink := &stubSink{}
	h, err := NewMessageHandler(sink, nil)
	require.NoError(t, err)

	event := makeWebhookEvent("+15551234567", "hello")
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
}
