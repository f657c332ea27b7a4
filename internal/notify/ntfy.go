// Package notify delivers push notifications to an ntfy topic. Delivery is
// best-effort throughout the system; callers log and ignore failures.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Ntfy posts plain-text messages to a topic URL, e.g. https://ntfy.sh/<topic>.
type Ntfy struct {
	topicURL string
	client   *http.Client
	log      *logrus.Entry
}

func NewNtfy(topicURL string, log *logrus.Entry) *Ntfy {
	return &Ntfy{
		topicURL: topicURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

func (n *Ntfy) Notify(ctx context.Context, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.topicURL, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("building notification request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}

	n.log.WithField("message", message).Debug("notification delivered")
	return nil
}
