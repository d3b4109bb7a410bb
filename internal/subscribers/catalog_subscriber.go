// Package subscribers consumes upstream catalog change events. A change for
// a tenant invalidates that tenant's cached snapshot so the next browse
// request fetches fresh data instead of waiting out the freshness window.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/catalog"
)

const (
	catalogStream   = "CATALOG_EVENTS"
	catalogSubjects = "catalog.>"
	durableName     = "storefront-service-catalog"
)

// CatalogEvent is the upstream catalog change notification.
type CatalogEvent struct {
	EventType string    `json:"eventType"`
	TenantID  string    `json:"tenantId"`
	ProductID string    `json:"productId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CatalogSubscriber invalidates cached snapshots on catalog change events.
type CatalogSubscriber struct {
	nc        *nats.Conn
	js        jetstream.JetStream
	snapshots *catalog.Store
	logger    *logrus.Entry
	consume   jetstream.ConsumeContext
	cancel    context.CancelFunc
}

// NewCatalogSubscriber connects to NATS and prepares the catalog consumer.
func NewCatalogSubscriber(snapshots *catalog.Store, logger *logrus.Logger) (*CatalogSubscriber, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://nats:4222"
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("storefront-service-catalog-subscriber"),
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

	return &CatalogSubscriber{
		nc:        nc,
		js:        js,
		snapshots: snapshots,
		logger:    logger.WithField("component", "catalog-subscriber"),
	}, nil
}

// Start ensures the catalog stream exists and begins consuming change events.
func (s *CatalogSubscriber) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	_, err := s.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      catalogStream,
		Subjects:  []string{catalogSubjects},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		s.logger.WithError(err).Warn("could not ensure catalog stream (may already exist)")
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, catalogStream, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: catalogSubjects,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    3,
	})
	if err != nil {
		return fmt.Errorf("failed to create catalog consumer: %w", err)
	}

	s.consume, err = consumer.Consume(s.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to start catalog consumption: %w", err)
	}

	s.logger.WithField("stream", catalogStream).Info("catalog subscriber started")
	return nil
}

// handleMessage invalidates the tenant's snapshot. Unreadable events are
// acked and dropped; redelivering them cannot make them parseable.
func (s *CatalogSubscriber) handleMessage(msg jetstream.Msg) {
	var event CatalogEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		s.logger.WithError(err).Warn("discarding unreadable catalog event")
		_ = msg.Ack()
		return
	}

	if event.TenantID == "" {
		_ = msg.Ack()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.snapshots.Invalidate(ctx, event.TenantID)

	s.logger.WithFields(logrus.Fields{
		"tenantId":  event.TenantID,
		"eventType": event.EventType,
	}).Info("invalidated catalog snapshot")

	_ = msg.Ack()
}

// Stop halts consumption and closes the connection.
func (s *CatalogSubscriber) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.consume != nil {
		s.consume.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
	s.logger.Info("catalog subscriber stopped")
}
