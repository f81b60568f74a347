package consumer

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// HandleFunc processes one message. A Permanent error commits the message
// anyway. Any other error is retried in place with backoff, since a later
// commit on the partition would move past the failed offset.
type HandleFunc func(ctx context.Context, msg kafkago.Message) error

// retryStep is the backoff unit; the n-th retry waits n steps, up to maxRetryDelay.
var retryStep = time.Second

const maxRetryDelay = 30 * time.Second

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func isPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

func retryDelay(attempt int) time.Duration {
	d := time.Duration(attempt) * retryStep
	if d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// wait sleeps for d and reports false when ctx ends first.
func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Run fetches until ctx is cancelled. It returns the number of committed
// messages, which tests use to drive a bounded reader.
func Run(ctx context.Context, reader MessageReader, handle HandleFunc, log *zap.Logger) int {
	log.Info("consumer started")
	committed := 0
	fetchFailures := 0

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped", zap.Int("committed", committed))
				return committed
			}
			fetchFailures++
			log.Error("fetch message failed", zap.Int("attempt", fetchFailures), zap.Error(err))
			if !wait(ctx, retryDelay(fetchFailures)) {
				log.Info("consumer stopped", zap.Int("committed", committed))
				return committed
			}
			continue
		}
		fetchFailures = 0

		if !handleWithRetry(ctx, msg, handle, log) {
			log.Info("consumer stopped", zap.Int("committed", committed))
			return committed
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", zap.Error(err))
			continue
		}
		committed++
	}
}

// handleWithRetry returns once msg is handled or dropped as permanent, and
// false when ctx ends before that.
func handleWithRetry(ctx context.Context, msg kafkago.Message, handle HandleFunc, log *zap.Logger) bool {
	for attempt := 1; ; attempt++ {
		err := handle(ctx, msg)
		if err == nil {
			return true
		}
		if isPermanent(err) {
			log.Warn("dropping unprocessable message",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			return true
		}

		log.Error("handle message failed",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !wait(ctx, retryDelay(attempt)) {
			return false
		}
	}
}
