package embedding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// DefaultTimeout bounds a single embedding call when no deadline is configured.
const DefaultTimeout = 10 * time.Second

// Backend produces a vector for one text. Backends are expected to honor ctx but the
// client does not rely on it.
type Backend interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

type Reason string

const (
	ReasonTimeout       Reason = "timeout"
	ReasonProviderError Reason = "provider_error"
)

// Failure is returned for every unsuccessful embedding call.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return "embedding failure: " + string(f.Reason)
	}
	return fmt.Sprintf("embedding failure: %s: %v", f.Reason, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

var errEmptyVector = errors.New("empty vector")

type Client struct {
	backend Backend
	timeout time.Duration
	logger  *log.Logger
}

func NewClient(backend Backend, timeout time.Duration, logger *log.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{backend: backend, timeout: timeout, logger: logger}
}

// Embed calls EmbedWithin with the configured timeout.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.EmbedWithin(ctx, text, c.timeout)
}

type embedResult struct {
	vec []float32
	err error
}

// EmbedWithin returns a vector or a *Failure no later than deadline after the call.
// A backend that outlives the deadline is abandoned and its result dropped.
func (c *Client) EmbedWithin(ctx context.Context, text string, deadline time.Duration) ([]float32, error) {
	if c == nil || c.backend == nil {
		return nil, &Failure{Reason: ReasonProviderError, Err: errors.New("no backend configured")}
	}
	if deadline <= 0 {
		deadline = c.timeout
	}

	callCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	done := make(chan embedResult, 1)
	go func() {
		vec, err := c.backend.EmbedText(callCtx, text)
		done <- embedResult{vec: vec, err: err}
	}()

	select {
	case <-callCtx.Done():
		c.logf("[Embedding] abandoned after %s: %v", deadline, callCtx.Err())
		return nil, &Failure{Reason: ReasonTimeout, Err: callCtx.Err()}
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return nil, &Failure{Reason: ReasonTimeout, Err: res.err}
			}
			c.logf("[Embedding] provider error: %v", res.err)
			return nil, &Failure{Reason: ReasonProviderError, Err: res.err}
		}
		if len(res.vec) == 0 {
			return nil, &Failure{Reason: ReasonProviderError, Err: errEmptyVector}
		}
		return res.vec, nil
	}
}

func (c *Client) logf(format string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Printf(format, args...)
}
