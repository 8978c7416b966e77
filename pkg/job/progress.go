package job

// Phase identifies where in a run a progress event was emitted.
type Phase string

const (
	PhaseLoad   Phase = "load"
	PhaseMerge  Phase = "merge"
	PhaseRender Phase = "render"
	PhaseWrap   Phase = "wrap"
)

// ProgressEvent is a transient progress notification. Load, merge, and
// wrap each emit one boundary event; render emits one event per cell.
type ProgressEvent struct {
	Phase   Phase
	Done    int
	Total   int
	Message string
}

// ProgressFunc receives progress events. It is invoked synchronously
// from the engine's calling goroutine, so implementations must not
// block for long.
type ProgressFunc func(ProgressEvent)
