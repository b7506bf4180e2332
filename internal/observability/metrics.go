package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for inbound page requests,
// outbound API calls and error codes.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	apiCount     map[string]int64
	apiLatency   map[string]time.Duration
	errorCount   map[string]int64
	sessionCount map[string]int64
}

// Snapshot is a copy of the counters at one point in time.
type Snapshot struct {
	Requests map[string]int64
	APICalls map[string]int64
	Errors   map[string]int64
	Sessions map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		apiCount:     make(map[string]int64),
		apiLatency:   make(map[string]time.Duration),
		errorCount:   make(map[string]int64),
		sessionCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for portal requests.
func (m *Metrics) RecordRequest(path, method string, status int, _ time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordAPICall counts a call to the booking API; status 0 marks a transport failure.
func (m *Metrics) RecordAPICall(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiCount[key]++
	m.apiLatency[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordSessionEvent counts session lifecycle events per actor class.
func (m *Metrics) RecordSessionEvent(actor, event string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionCount[actor+"|"+event]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Requests: copyCounts(m.requestCount),
		APICalls: copyCounts(m.apiCount),
		Errors:   copyCounts(m.errorCount),
		Sessions: copyCounts(m.sessionCount),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
