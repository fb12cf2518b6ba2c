package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Webhook entrega payloads no endpoint configurado. Sem retries nem fila:
// uma entrega perdida é perdida (o push para a planilha é o caminho durável).
type Webhook struct {
	URL     string
	Secret  string
	Timeout time.Duration
	Client  *http.Client
}

func NewWebhook(url, secret string, timeout time.Duration) *Webhook {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Webhook{
		URL:     url,
		Secret:  secret,
		Timeout: timeout,
		Client:  &http.Client{},
	}
}

// Send publica o payload com timeout próprio e, havendo segredo, os headers
// X-Webhook-Secret e X-Webhook-Signature (HMAC-SHA256 hex do corpo).
func (w *Webhook) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("serializar payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "JN-Restaurant-Backoffice/1.0.0")
	if w.Secret != "" {
		req.Header.Set("X-Webhook-Secret", w.Secret)
		req.Header.Set("X-Webhook-Signature", Sign(body, w.Secret))
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook respondeu %d", resp.StatusCode)
	}
	return nil
}

// Sign calcula a assinatura hex HMAC-SHA256 do corpo.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
