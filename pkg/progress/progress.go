// Package progress defines the event stream emitted by long-running
// comparison and copy runs. The engine writes events to an injected sink;
// rendering cadence is owned entirely by the consumer.
package progress

// Stage identifies which phase of a run emitted an event.
type Stage string

const (
	// StageScan covers directory enumeration
	StageScan Stage = "scan"
	// StageCompare covers the path-match pass (one event per common path)
	StageCompare Stage = "compare"
	// StageRename covers rename detection (one event per hash computation)
	StageRename Stage = "rename-scan"
	// StageCopy covers the selective-copy operation
	StageCopy Stage = "copy"
)

// Event is one discrete progress notification.
type Event struct {
	Stage Stage

	// Path is the file currently being processed
	Path string

	// Processed and Total count items within the whole run.
	// Emission order reflects completion order of parallel workers;
	// Processed reaches Total when the run completes.
	Processed int
	Total     int
}

// Percent returns the completion percentage, or 0 when Total is unknown.
func (e Event) Percent() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Processed) / float64(e.Total) * 100
}

// Func is a progress sink. A nil Func discards all events.
type Func func(Event)

// Emit sends an event to the sink, tolerating a nil sink.
func (f Func) Emit(e Event) {
	if f != nil {
		f(e)
	}
}
