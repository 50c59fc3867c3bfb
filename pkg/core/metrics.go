package core

// Metrics receives counters about engine activity.
type Metrics interface {
	UpdateApplied()
	NotificationEmitted(kind string, typ NotificationType)
	PaymentRecorded(currency string, amount float64)
	OperationFailed(op, reason string)
	RecordSetReloaded()
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) UpdateApplied()                               {}
func (NopMetrics) NotificationEmitted(string, NotificationType) {}
func (NopMetrics) PaymentRecorded(string, float64)              {}
func (NopMetrics) OperationFailed(string, string)               {}
func (NopMetrics) RecordSetReloaded()                           {}
