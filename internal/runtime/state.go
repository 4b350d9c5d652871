package runtime

// OperatingState is the connection-lifecycle state of a communication
// manager. Transitions follow
//
//	offline -> starting -> started -> stopping -> stopped
//
// and a stopped manager may be started again.
type OperatingState int

const (
	// StateOffline indicates the manager has never been started or a
	// start attempt failed.
	StateOffline OperatingState = iota
	// StateStarting indicates the transport is being brought up.
	StateStarting
	// StateStarted indicates the manager is connected and operational.
	StateStarted
	// StateStopping indicates an orderly shutdown is in progress.
	StateStopping
	// StateStopped indicates the manager has shut down; all previously
	// held subscriptions are inactive.
	StateStopped
)

// String returns the lowercase name of the state.
func (s OperatingState) String() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateStarting:
		return "starting"
	case StateStarted:
		return "started"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
