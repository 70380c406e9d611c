package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// WhatsAppNotifier sends text messages through the WasapBot.my gateway.
// Calls are bounded by the client timeout so a slow gateway cannot hold
// up a state-changing request.
type WhatsAppNotifier struct {
	apiURL      string
	instanceID  string
	accessToken string
	client      *http.Client
}

func NewWhatsApp(apiURL, instanceID, accessToken string) *WhatsAppNotifier {
	return &WhatsAppNotifier{
		apiURL:      apiURL,
		instanceID:  instanceID,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WhatsAppNotifier) Notify(ctx context.Context, _, _, number, message string) error {
	q := url.Values{}
	q.Set("number", number)
	q.Set("type", "text")
	q.Set("message", message)
	q.Set("instance_id", w.instanceID)
	q.Set("access_token", w.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wasapbot returned %d", resp.StatusCode)
	}
	return nil
}
