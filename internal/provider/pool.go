package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Pool holds the ordered endpoint list and the rotation cursor. Selection is
// sticky-until-failure: NextValid leaves the cursor on the endpoint it
// returns, so the next call re-checks the same endpoint first. The cursor
// rotates forward only on probe failure or an explicit post-send Advance.
//
// The pool is owned by the scheduler's single processing goroutine and is not
// safe for concurrent use.
type Pool struct {
	client         Client
	endpoints      []string
	cursor         int
	logger         *zap.Logger
	onProbeFailure func(endpoint string)
}

func NewPool(client Client, endpoints []string, logger *zap.Logger) (*Pool, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("at least one endpoint is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pool{
		client:    client,
		endpoints: append([]string(nil), endpoints...),
		logger:    logger,
	}, nil
}

// SetProbeFailureHook registers a callback invoked once per failed health
// probe, used for metrics.
func (p *Pool) SetProbeFailureHook(hook func(endpoint string)) {
	if p == nil {
		return
	}
	p.onProbeFailure = hook
}

// Size returns the number of endpoints in the rotation.
func (p *Pool) Size() int {
	return len(p.endpoints)
}

// NextValid probes endpoints in round-robin order starting at the cursor and
// returns the first healthy one. A full cycle with no healthy endpoint returns
// ErrNoEndpointAvailable.
func (p *Pool) NextValid(ctx context.Context) (string, error) {
	start := p.cursor

	for {
		endpoint := p.endpoints[p.cursor]
		if p.client.CheckAuth(ctx, endpoint) {
			p.logger.Debug("healthy endpoint selected", zap.String("endpoint", endpoint))
			return endpoint, nil
		}

		p.logger.Warn("endpoint is not authenticated, trying next",
			zap.String("endpoint", endpoint),
		)
		if p.onProbeFailure != nil {
			p.onProbeFailure(endpoint)
		}

		p.cursor = (p.cursor + 1) % len(p.endpoints)
		if p.cursor == start {
			return "", ErrNoEndpointAvailable
		}
	}
}

// Advance rotates the cursor to the next endpoint. Called after a successful
// send so the following recipient starts on a different endpoint.
func (p *Pool) Advance() {
	p.cursor = (p.cursor + 1) % len(p.endpoints)
}

// Current returns the endpoint the cursor points at.
func (p *Pool) Current() string {
	return p.endpoints[p.cursor]
}
