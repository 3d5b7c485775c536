package port

// ProgressEvent is what the front-end renders: the current stage, a
// completion fraction in [0, 1], and a human-readable message.
type ProgressEvent struct {
	Stage    string
	Fraction float64
	Message  string
}

type ProgressReporter interface {
	Report(event ProgressEvent)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Report(ProgressEvent) {}
