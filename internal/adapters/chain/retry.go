package chain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/anchor/internal/domain"
)

// JSON-RPC error codes that signal an overloaded node rather than a bad request.
const (
	rpcCodeLimitExceeded = -32005
	rpcCodeInternal      = -32603
)

type retryPolicy struct {
	maxRetries uint64
	interval   time.Duration
}

func (p retryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.interval
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, p.maxRetries), ctx)
}

// withRetry runs fn until it succeeds, fails with a non transient error or the
// policy runs out of attempts. Errors come back classified.
func withRetry[T any](ctx context.Context, policy retryPolicy, log *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	return backoff.RetryNotifyWithData(func() (T, error) {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		err = classify(op, err)
		if !errors.Is(err, domain.ErrTransientNetwork) || ctx.Err() != nil {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, policy.backOff(ctx), func(err error, wait time.Duration) {
		log.Debug("retrying rpc call", "op", op, "error", err, "wait", wait)
	})
}

// classify wraps err with domain.ErrTransientNetwork or
// domain.ErrRejectedTransaction. Errors already carrying one of them and
// context errors are returned unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrTransientNetwork) || errors.Is(err, domain.ErrRejectedTransaction) ||
		errors.Is(err, context.Canceled) {
		return err
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %s: %w", domain.ErrTransientNetwork, op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrRejectedTransaction, op, err)
}

func isTransient(err error) bool {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case rpcCodeLimitExceeded, rpcCodeInternal:
			return true
		}
		msg := strings.ToLower(rpcErr.Error())
		return strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests")
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET):
		return true
	}
	return false
}

// isAlreadyKnown reports whether a send failed because the node already has
// the transaction. Retried sends hit this when the first attempt got through.
func isAlreadyKnown(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already known") ||
		strings.Contains(msg, "known transaction") ||
		strings.Contains(msg, "already imported")
}
