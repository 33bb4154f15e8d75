package metrics

// Contact outcomes
const (
	OutcomeAccepted      = "accepted"
	OutcomeQuotaExceeded = "quota_exceeded"
	OutcomeInactive      = "inactive"
)

func ContactRecorded(outcome string) {
	ContactsTotal.WithLabelValues(outcome).Inc()
}

func PhotoRecorded(outcome string) {
	PhotosTotal.WithLabelValues(outcome).Inc()
}

func PaymentEventRecorded(eventType, result string) {
	PaymentEventsTotal.WithLabelValues(eventType, result).Inc()
}

// PlanCacheLookup records a plan cache hit, miss or error.
func PlanCacheLookup(result string) {
	PlanCacheTotal.WithLabelValues(result).Inc()
}
