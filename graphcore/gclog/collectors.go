package gclog

// Slice accumulates every event it receives, in order, for tests and
// programmatic inspection of what search/fuse/plan actually did for a
// given query.
type Slice struct {
	Events []Event
}

// Collect implements Collector.
func (s *Slice) Collect(e Event) {
	s.Events = append(s.Events, e)
}
