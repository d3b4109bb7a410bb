// Package events publishes storefront analytics events over NATS JetStream.
// Publishing is fire-and-forget: a broken broker degrades to logged warnings
// and never blocks or fails a browse request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

const (
	streamName    = "STOREFRONT_EVENTS"
	searchSubject = "storefront.search.performed"
)

// SearchEvent records one executed search for analytics.
type SearchEvent struct {
	EventID       string    `json:"eventId"`
	TenantID      string    `json:"tenantId"`
	SessionID     string    `json:"sessionId,omitempty"`
	Query         string    `json:"query"`
	ResultCount   int       `json:"resultCount"`
	PaddedResults int       `json:"paddedResults"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher publishes storefront events to JetStream.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the storefront stream exists.
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://nats:4222"
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("storefront-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "storefront-events"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{"storefront.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		p.logger.WithError(err).Warn("could not ensure storefront stream (may already exist)")
	}

	return p, nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// PublishSearch publishes a search analytics event asynchronously.
func (p *Publisher) PublishSearch(tenantID, sessionID, query string, resultCount, paddedResults int) {
	event := SearchEvent{
		EventID:       uuid.NewString(),
		TenantID:      tenantID,
		SessionID:     sessionID,
		Query:         query,
		ResultCount:   resultCount,
		PaddedResults: paddedResults,
		Timestamp:     time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Warn("failed to encode search event")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := p.js.Publish(ctx, searchSubject, data); err != nil {
			p.logger.WithError(err).Warn("failed to publish search event")
		}
	}()
}
