package tts

import (
	"sync"
	"time"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// CircuitBreaker 熔断器：连续失败达到阈值后在 retryAfter 内直接拒绝请求
type CircuitBreaker struct {
	maxFailures int
	retryAfter  time.Duration
	now         func() time.Time

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	state       breakerState
}

func NewCircuitBreaker(maxFailures int, retryAfter time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if retryAfter <= 0 {
		retryAfter = 30 * time.Second
	}
	return &CircuitBreaker{maxFailures: maxFailures, retryAfter: retryAfter, now: time.Now}
}

// Allow 报告是否允许发起请求，冷却期结束后进入半开状态放行一次
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateOpen:
		if cb.now().Sub(cb.lastFailure) >= cb.retryAfter {
			cb.state = stateHalfOpen
			return true
		}
		return false
	case stateHalfOpen:
		// 半开状态下只放行探测请求
		return false
	default:
		return true
	}
}

// RecordSuccess 记录成功
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.state = stateClosed
}

// RecordFailure 记录失败
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.lastFailure = cb.now()
	if cb.state == stateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = stateOpen
	}
}

// Open 报告熔断器当前是否处于打开状态
func (cb *CircuitBreaker) Open() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state == stateOpen
}
