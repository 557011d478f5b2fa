package retry

import (
	"fmt"
	"net"
	"testing"
)

type testErrRetryable struct {
}

func (e testErrRetryable) Error() string {
	return "retryable err"
}

func TestRetry(t *testing.T) {
	retryable, nonRetryable := testErrRetryable{}, fmt.Errorf("non-retryable")
	f := func(count *int, errs []error) error {
		cnt := *count
		// to prove the function logic is actually executed
		*count = cnt + 1
		return errs[cnt]
	}
	retryOn := func(e error) bool {
		_, ok := e.(testErrRetryable)
		return ok
	}
	tcs := []struct {
		name     string
		errs     []error
		strategy []RetryOption
		expected int
	}{
		{
			name:     "no retry",
			errs:     []error{nil},
			expected: 1,
		},
		{
			name: "retry with max attempt",
			errs: []error{
				retryable,
				retryable,
				nonRetryable,
			},
			expected: 3,
			strategy: []RetryOption{
				WithMaxAttempts(2),
				WithRetryOn(retryOn),
			},
		},
		{
			name: "retryOn",
			errs: []error{
				retryable,
				retryable,
				nonRetryable,
				retryable,
				retryable,
			},
			expected: 3,
			strategy: []RetryOption{
				WithMaxAttempts(10),
				WithRetryOn(retryOn),
			},
		},
	}

	for _, c := range tcs {
		errs, strategy, exp := c.errs, c.strategy, c.expected
		t.Run(c.name, func(*testing.T) {
			actual := 0
			Retry(
				func() error {
					return f(&actual, errs)
				},
				strategy...,
			)
			if actual != exp {
				t.Errorf("expected %d for %v and %v but got %d", exp, errs, strategy, actual)
			}
		})
	}
}

func TestIsDepOffline(t *testing.T) {
	tcs := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "netError", err: &net.AddrError{Err: "no internet"}, expected: true},
		{name: "connRefusedText", err: fmt.Errorf("dial tcp: connection refused"), expected: true},
		{name: "plainError", err: fmt.Errorf("boom"), expected: false},
	}
	for _, c := range tcs {
		t.Run(c.name, func(t *testing.T) {
			if got := IsDepOffline(c.err); got != c.expected {
				t.Errorf("IsDepOffline(%v) = %v, want %v", c.err, got, c.expected)
			}
		})
	}
}
