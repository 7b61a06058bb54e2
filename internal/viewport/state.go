package viewport

// LoadState is the position of a session in the load pipeline. It only
// advances; Reset is the only way back to StateEmpty.
type LoadState int

const (
	StateEmpty LoadState = iota
	StateTopologyLoading
	StateTopologyLoaded
	StateTrajectoryLoading
	StateTrajectoryLoaded
)

var stateNames = map[LoadState]string{
	StateEmpty:             "empty",
	StateTopologyLoading:   "topology_loading",
	StateTopologyLoaded:    "topology_loaded",
	StateTrajectoryLoading: "trajectory_loading",
	StateTrajectoryLoaded:  "trajectory_loaded",
}

func (s LoadState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the state by name in JSON snapshots
func (s LoadState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Loading reports whether a transition is running
func (s LoadState) Loading() bool {
	return s == StateTopologyLoading || s == StateTrajectoryLoading
}

// HasStructure reports whether a structure is shown
func (s LoadState) HasStructure() bool {
	return s == StateTopologyLoaded || s == StateTrajectoryLoaded
}
