package metrics

// Package metrics defines interfaces for publishing CTR summary metrics.
// Sinks like PromSink, InfluxSink and MQTTSink receive built reports and
// operational events and can be combined with NewMultiSink. The factory
// helpers return a MultiSink automatically when multiple sinks are
// configured. Points flattens a report into scope/cycle/metric samples shared
// by every sink.
