package metrics

import "time"

var _ Recorder = NoopRecorder{}

// NoopRecorder discards everything. It is the default when metrics are disabled.
type NoopRecorder struct{}

func (NoopRecorder) IncCounter(string, map[string]string)                    {}
func (NoopRecorder) ObserveLatency(string, time.Duration, map[string]string) {}
