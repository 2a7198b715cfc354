package fetcher

import (
	"context"
	"log/slog"
	"time"

	"resty.dev/v3"
)

// MessageRequestFailed is reported when no attempt returned the expected status.
const MessageRequestFailed = "request failed"

// RetryPolicy is a bounded retry budget with a fixed wait between attempts.
type RetryPolicy struct {
	Attempts int
	Interval time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc backed by a real timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Outcome is what SendRequestWithRetry reports back.
type Outcome struct {
	Success bool
	Message string

	// Response is the last response received, nil if every attempt failed
	// before the server answered.
	Response *resty.Response

	// Attempts is the number of requests issued.
	Attempts int

	// Err is a transport-family *FetchError when Success is false.
	Err error
}

// Retrier issues a request repeatedly until the expected status comes back.
type Retrier struct {
	client *resty.Client
	sleep  SleepFunc
	logger *slog.Logger
}

// NewRetrier creates a Retrier. A nil sleep uses Sleep, a nil logger uses slog.Default().
func NewRetrier(client *resty.Client, sleep SleepFunc, logger *slog.Logger) *Retrier {
	if sleep == nil {
		sleep = Sleep
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrier{
		client: client,
		sleep:  sleep,
		logger: logger,
	}
}

// SendRequestWithRetry issues method against url up to policy.Attempts times.
// It returns on the first response whose status equals expectedStatus.
// Between failed attempts it waits policy.Interval, so a fully failed call
// sleeps exactly Attempts-1 times. Only transport outcomes are retried.
func (r *Retrier) SendRequestWithRetry(ctx context.Context, url, method string, expectedStatus int, policy RetryPolicy) Outcome {
	attempts := policy.attempts()
	out := Outcome{Message: MessageRequestFailed}

	for attempt := 1; attempt <= attempts; attempt++ {
		out.Attempts = attempt

		resp, err := r.client.R().
			SetContext(ctx).
			Execute(method, url)

		if err != nil {
			if ctx.Err() != nil {
				out.Err = NewTimeoutError(ctx.Err())
				return out
			}
			out.Err = NewNetworkError(err)
			r.logger.Debug("request attempt failed",
				"url", url,
				"attempt", attempt,
				"error", err.Error())
		} else {
			out.Response = resp
			if resp.StatusCode() == expectedStatus {
				out.Success = true
				out.Message = MessageSucceed
				out.Err = nil
				return out
			}
			out.Err = NewStatusMismatchError(expectedStatus, resp.StatusCode())
			r.logger.Debug("request attempt returned unexpected status",
				"url", url,
				"attempt", attempt,
				"status_code", resp.StatusCode(),
				"expected_status", expectedStatus)
		}

		if attempt == attempts {
			break
		}

		if err := r.sleep(ctx, policy.Interval); err != nil {
			out.Err = NewTimeoutError(err)
			return out
		}
	}

	r.logger.Warn("request failed after retries",
		"url", url,
		"attempts", out.Attempts,
		"error", out.Err)

	return out
}
