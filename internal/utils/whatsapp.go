package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"panveliq/internal/config"
	"panveliq/internal/utils/logger"
)

var waLog = logger.New("whatsapp")

// WhatsAppClient talks to the Business API's messages endpoint.
type WhatsAppClient struct {
	cfg        config.WhatsAppConfig
	httpClient *http.Client
}

func NewWhatsAppClient(cfg config.WhatsAppConfig) *WhatsAppClient {
	return &WhatsAppClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type waTextPayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type waSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText sends a plain text message and returns the provider message id.
func (c *WhatsAppClient) SendText(ctx context.Context, to, body string) (string, error) {
	payload := waTextPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
	}
	payload.Text.Body = body

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.APIBaseURL, c.cfg.PhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", waLog.Error(fmt.Sprintf("request to %s failed", to), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed waSendResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("unexpected response: %w", err)
	}
	if parsed.Error != nil {
		return "", waLog.Error(fmt.Sprintf("send to %s rejected (code %d)", to, parsed.Error.Code),
			fmt.Errorf("%s", parsed.Error.Message))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || len(parsed.Messages) == 0 {
		return "", fmt.Errorf("send to %s failed with status %d", to, resp.StatusCode)
	}
	return parsed.Messages[0].ID, nil
}
