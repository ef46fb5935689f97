package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wardenauth/warden/internal/warden/store"
	"github.com/wardenauth/warden/pkg/slogx"
)

// maxTxAttempts bounds how often a session mutation is retried when the
// store fails transiently.
const maxTxAttempts = 3

// withRetryTx runs fn inside a store transaction, retrying transient storage
// failures up to maxTxAttempts with per-attempt logging. Domain errors (our
// taxonomy and the store sentinels) are never retried: they are decisions,
// not glitches. Exhausting the budget returns ErrTransactionExhausted.
func withRetryTx(ctx context.Context, st store.Store, op string, fn func(tx store.Tx) error) error {
	log := slogx.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err := st.WithTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}

		lastErr = err
		log.Warn("transient store failure",
			"op", op,
			"attempt", attempt,
			"max_attempts", maxTxAttempts,
			"error", err,
		)
	}

	return fmt.Errorf("%w: %s: %v", ErrTransactionExhausted, op, lastErr)
}

func isTransient(err error) bool {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrAlreadyExists),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
