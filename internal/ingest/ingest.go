// Package ingest normalizes donation events from every external source
// into the common (amount, username, message) shape and forwards them
// to the processor. Adapters are independent; none may block another.
package ingest

// Sink is where every adapter delivers. The processor satisfies it and
// performs the actual validation; adapters that fail to parse an amount
// forward NaN and let the sink drop it.
type Sink interface {
	Process(amount float64, username, message string)
}

// Manual is the operator-driven test trigger: a direct synchronous call
// with literal values.
type Manual struct {
	Sink Sink
}

func (m Manual) Trigger(amount float64, username, message string) {
	m.Sink.Process(amount, username, message)
}
