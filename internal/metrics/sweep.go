package metrics

import "time"

// SweepCompleted records a successful sweep and how many rows it expired.
func SweepCompleted(expired int64, duration time.Duration) {
	SweepRunsTotal.WithLabelValues("completed").Inc()
	SweepDuration.Observe(duration.Seconds())
	SubscriptionsExpired.Add(float64(expired))
}

// SweepFailed records a failed sweep run.
func SweepFailed() {
	SweepRunsTotal.WithLabelValues("failed").Inc()
}
