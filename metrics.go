package goTeller

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter or histogram.
type MetricID uint16

const (
	// MetricLoginSuccess counts logins that issued a session.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected logins, unknown number and wrong secret alike.
	MetricLoginFailure
	// MetricLoginLocked counts attempts rejected because the account is Locked.
	MetricLoginLocked
	// MetricAccountLockout counts Active to Locked transitions caused by failures.
	MetricAccountLockout
	// MetricSessionCreated counts issued sessions.
	MetricSessionCreated
	// MetricSessionReplaced counts sessions invalidated by a newer login.
	MetricSessionReplaced
	// MetricSessionInvalidated counts sessions ended by lock or forced logout.
	MetricSessionInvalidated
	// MetricResolveSuccess counts tokens resolved to an account.
	MetricResolveSuccess
	// MetricResolveFailure counts tokens that did not resolve.
	MetricResolveFailure
	// MetricZombieRejected counts live sessions refused because their account is Locked.
	MetricZombieRejected
	// MetricLogout counts explicit logouts.
	MetricLogout
	// MetricRecoverySuccess counts successful unlocks.
	MetricRecoverySuccess
	// MetricRecoveryFailure counts rejected unlock attempts.
	MetricRecoveryFailure
	// MetricAccountLocked counts operator locks.
	MetricAccountLocked
	// MetricDeposit counts committed deposits.
	MetricDeposit
	// MetricWithdraw counts committed withdrawals.
	MetricWithdraw
	// MetricStatement counts statements served.
	MetricStatement
	// MetricTellerRejected counts teller operations that did not commit.
	MetricTellerRejected
	// MetricIntegrityFailure counts integrity failures recovered by forced logout.
	MetricIntegrityFailure
	// MetricAccountClosed counts accounts removed by their owner.
	MetricAccountClosed
	// MetricAuthenticateLatency is the latency histogram of Authenticate.
	MetricAuthenticateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free engine counters. A nil or disabled Metrics
// ignores every call.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a metrics set from cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether latency histograms are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricAuthenticateLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricAuthenticateLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthenticateLatency].buckets[i])
		}
		s.Histograms[MetricAuthenticateLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
