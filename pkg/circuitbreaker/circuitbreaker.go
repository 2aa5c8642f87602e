// Package circuitbreaker guards calls to a dependency that may be down.
//
// The breaker has three states. CLOSED lets every call through and counts
// failures; once ReadyToTrip says so it moves to OPEN, where calls fail
// immediately with ErrOpenState. After Timeout it moves to HALF_OPEN and
// lets up to MaxRequests probe calls through: one success closes it again,
// one failure reopens it.
//
// The book cache runs every Redis call through a breaker so that a dead
// Redis costs one fast error per request instead of a dial timeout.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config configures a breaker.
type Config struct {
	// MaxRequests is the number of probe calls allowed while HALF_OPEN.
	// Zero means one.
	MaxRequests uint32

	// Interval is the CLOSED counting window. Counts reset when it elapses.
	// Zero keeps counting until a state change.
	Interval time.Duration

	// Timeout is how long the breaker stays OPEN.
	Timeout time.Duration

	// ReadyToTrip decides, after each failure in CLOSED, whether to open.
	// Nil means ConsecutiveFailures(5).
	ReadyToTrip func(counts Counts) bool

	// IsSuccessful classifies a call result. Nil treats only nil as success.
	// Errors the dependency returns for a healthy "no" (a cache miss, say)
	// should be reported as successes here.
	IsSuccessful func(err error) bool
}

// ConsecutiveFailures returns a ReadyToTrip that opens after n failures in
// a row.
func ConsecutiveFailures(n uint32) func(Counts) bool {
	return func(c Counts) bool { return c.ConsecutiveFailures >= n }
}

// Counts holds the statistics of the current window or probe phase.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

func (c *Counts) Reset() {
	*c = Counts{}
}

// Requests is incremented in beforeRequest, not here.
func (c *Counts) onSuccess() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) onFailure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

type CircuitBreaker struct {
	name         string
	maxRequests  uint32
	interval     time.Duration
	timeout      time.Duration
	readyToTrip  func(counts Counts) bool
	isSuccessful func(err error) bool

	mu            sync.Mutex
	state         State
	generation    uint64 // bumped on every state change
	counts        Counts
	expiry        time.Time
	onStateChange func(name string, from State, to State)
}

var ErrOpenState = errors.New("circuit breaker is open")

// ErrTooManyRequests is returned in HALF_OPEN once MaxRequests probes are
// in flight.
var ErrTooManyRequests = errors.New("circuit breaker: too many requests")

func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         name,
		maxRequests:  config.MaxRequests,
		interval:     config.Interval,
		timeout:      config.Timeout,
		readyToTrip:  config.ReadyToTrip,
		isSuccessful: config.IsSuccessful,
		state:        StateClosed,
	}
	if cb.maxRequests == 0 {
		cb.maxRequests = 1
	}
	if cb.readyToTrip == nil {
		cb.readyToTrip = ConsecutiveFailures(5)
	}
	if cb.isSuccessful == nil {
		cb.isSuccessful = func(err error) bool { return err == nil }
	}
	if cb.interval > 0 {
		cb.expiry = time.Now().Add(cb.interval)
	}
	return cb
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// SetStateChangeCallback registers fn to be called, under the breaker lock,
// on every state change. Keep it fast: log or bump a metric.
func (cb *CircuitBreaker) SetStateChangeCallback(fn func(name string, from State, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute runs req if the breaker allows it and records the outcome.
// It returns req's error, or ErrOpenState / ErrTooManyRequests without
// calling req.
func (cb *CircuitBreaker) Execute(req func() error) error {
	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	err = req()
	cb.afterRequest(generation, cb.isSuccessful(err))
	return err
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.currentState(time.Now())
	switch {
	case state == StateOpen:
		return generation, ErrOpenState
	case state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests:
		return generation, ErrTooManyRequests
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)
	// the state changed while req ran; its result belongs to an old window
	if generation != before {
		return
	}

	if success {
		cb.counts.onSuccess()
		if state == StateHalfOpen {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.onFailure()
	switch state {
	case StateClosed:
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// currentState resolves time-based transitions: an expired CLOSED window
// resets the counts and an expired OPEN period becomes HALF_OPEN.
func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.counts.Reset()
			cb.expiry = now.Add(cb.interval)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.counts.Reset()

	switch state {
	case StateClosed:
		if cb.interval > 0 {
			cb.expiry = now.Add(cb.interval)
		} else {
			cb.expiry = time.Time{}
		}
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	case StateHalfOpen:
		cb.expiry = time.Time{}
	}

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, _ := cb.currentState(time.Now())
	return state
}

func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.counts
}
