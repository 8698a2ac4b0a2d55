package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kursadbilgin/lead-dispatcher/internal/domain"
	"github.com/kursadbilgin/lead-dispatcher/internal/observability"
	"github.com/kursadbilgin/lead-dispatcher/internal/provider"
	"github.com/kursadbilgin/lead-dispatcher/internal/repository"
	"go.uber.org/zap"
)

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, name string, phone string, message string) error
}

// Dispatcher performs the send operation for a single recipient: acquire a
// healthy endpoint, issue the send call, advance the rotation and record the
// dispatch. At most one transport call per recipient; there is no retry.
type Dispatcher struct {
	pool    *provider.Pool
	client  provider.Client
	leads   repository.LeadRepository
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func NewDispatcher(
	pool *provider.Pool,
	client provider.Client,
	leads repository.LeadRepository,
	logger *zap.Logger,
) (*Dispatcher, error) {
	if pool == nil {
		return nil, fmt.Errorf("endpoint pool is required")
	}
	if client == nil {
		return nil, fmt.Errorf("provider client is required")
	}
	if leads == nil {
		return nil, fmt.Errorf("lead repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		pool:   pool,
		client: client,
		leads:  leads,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

func (d *Dispatcher) Send(ctx context.Context, name string, phone string, message string) error {
	endpoint, err := d.pool.NextValid(ctx)
	if err != nil {
		d.metrics.IncSendFailure("no_endpoint_available")
		return fmt.Errorf("failed to acquire endpoint for %s: %w", phone, err)
	}

	d.logger.Info("sending message",
		zap.String("name", name),
		zap.String("phone", phone),
		zap.String("endpoint", endpoint),
	)

	sendStart := d.now()
	_, err = d.client.SendMessage(ctx, endpoint, provider.SendRequest{
		Phones:  []string{phone},
		Message: message,
	})
	d.metrics.ObserveSendDuration(d.now().Sub(sendStart))

	if err != nil {
		reason := "transport_error"
		if !provider.IsTransient(err) {
			reason = "permanent_error"
		}
		d.metrics.IncSendFailure(reason)
		return fmt.Errorf("failed to send message to %s via %s: %w", phone, endpoint, err)
	}

	// Rotate so the next recipient starts on the following endpoint.
	d.pool.Advance()
	d.metrics.IncMessageSent()

	record := &domain.DispatchRecord{
		Name:   name,
		Phone:  phone,
		Status: domain.StatusSent,
		SentAt: d.now().UTC(),
	}
	if err := d.leads.Record(ctx, record); err != nil {
		// The message is already out; losing the record only risks a future
		// duplicate send.
		if errors.Is(err, domain.ErrDuplicate) {
			d.logger.Warn("phone was recorded concurrently, keeping first record",
				zap.String("phone", phone),
			)
		} else {
			d.logger.Error("failed to record dispatch",
				zap.String("name", name),
				zap.String("phone", phone),
				zap.Error(err),
			)
		}
		return nil
	}

	d.logger.Info("message sent and recorded",
		zap.String("name", name),
		zap.String("phone", phone),
		zap.String("endpoint", endpoint),
	)
	return nil
}
