// Package alerts notifies an operator webhook when a scheduled run cannot
// produce a post.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Alert describes a run that ended BLOCKED or ERROR.
type Alert struct {
	RuleID    string `json:"rule_id,omitempty"`
	CreatorID string `json:"creator_id"`
	Platform  string `json:"platform"`
	State     string `json:"state"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// Webhook posts alerts to a configured URL. A Webhook with no URL is valid
// and drops every alert, so callers never need a nil check.
type Webhook struct {
	client *resty.Client
	url    string
	logger *logrus.Logger
}

// NewWebhook creates an alert notifier. Pass an empty URL to disable it.
func NewWebhook(url string, logger *logrus.Logger) *Webhook {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	return &Webhook{
		client: client,
		url:    url,
		logger: logger,
	}
}

// Enabled reports whether an alert URL is configured.
func (w *Webhook) Enabled() bool {
	return w.url != ""
}

// Send posts one alert. Delivery is best-effort: failures are logged and
// returned, and the caller decides whether to care.
func (w *Webhook) Send(ctx context.Context, alert Alert) error {
	if !w.Enabled() {
		return nil
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(alert).
		Post(w.url)
	if err != nil {
		w.logger.WithError(err).WithFields(logrus.Fields{
			"rule_id":  alert.RuleID,
			"platform": alert.Platform,
			"state":    alert.State,
		}).Warn("Failed to deliver autopost alert")
		return err
	}
	if resp.IsError() {
		err := fmt.Errorf("alert webhook returned %d", resp.StatusCode())
		w.logger.WithError(err).WithFields(logrus.Fields{
			"rule_id":  alert.RuleID,
			"platform": alert.Platform,
			"state":    alert.State,
		}).Warn("Alert webhook rejected delivery")
		return err
	}

	w.logger.WithFields(logrus.Fields{
		"rule_id":  alert.RuleID,
		"platform": alert.Platform,
		"state":    alert.State,
	}).Debug("Autopost alert delivered")
	return nil
}
