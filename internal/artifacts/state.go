package artifacts

// State is the availability of the artifact set.
type State int32

const (
	// NotLoaded is the initial state before any load attempt.
	NotLoaded State = iota
	// Loaded means all three artifacts are usable.
	Loaded
	// LoadFailed means the last load attempt failed; a later Load may retry.
	LoadFailed
)

func (s State) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "load_failed"
	default:
		return "unknown"
	}
}
