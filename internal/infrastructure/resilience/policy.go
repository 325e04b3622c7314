package resilience

import "time"

// Policy bounds retries and breaker behavior for one class of outbound
// dependency. The module has two: model servers (embedding, rerank,
// chat completion) and the message queue.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64

	BreakerEnabled      bool
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenFor      time.Duration
	BreakerProbeCalls   uint32
}

// ModelPolicy covers the inference and chat-completion servers. Few
// attempts with widening backoff so a search request stays inside its
// deadline, and a breaker that trips when half of a sampled window
// fails, since a struggling model server gets worse under retry load.
func ModelPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     800 * time.Millisecond,
		BackoffFactor:  2,

		BreakerEnabled:      true,
		BreakerMinRequests:  10,
		BreakerFailureRatio: 0.5,
		BreakerOpenFor:      30 * time.Second,
		BreakerProbeCalls:   2,
	}
}

// QueuePolicy covers NATS publishes. More, quicker attempts and no
// breaker: the client reconnects on its own, and a tripped breaker
// would only turn a transient outage into dropped ingest events.
func QueuePolicy() Policy {
	return Policy{
		MaxAttempts:    5,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     400 * time.Millisecond,
		BackoffFactor:  2,
	}
}

func (p Policy) withDefaults() Policy {
	out := p
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 1
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = 50 * time.Millisecond
	}
	if out.MaxBackoff < out.InitialBackoff {
		out.MaxBackoff = out.InitialBackoff
	}
	if out.BackoffFactor < 1 {
		out.BackoffFactor = 2
	}
	if out.BreakerEnabled {
		if out.BreakerMinRequests == 0 {
			out.BreakerMinRequests = 10
		}
		if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
			out.BreakerFailureRatio = 0.5
		}
		if out.BreakerOpenFor <= 0 {
			out.BreakerOpenFor = 30 * time.Second
		}
		if out.BreakerProbeCalls == 0 {
			out.BreakerProbeCalls = 1
		}
	}
	return out
}
