package checks

// Kind classifies why an outcome failed.
type Kind string

const (
	// KindCheckFailed indicates the probe ran and the fact is unsatisfied.
	KindCheckFailed Kind = "check_failed"
	// KindEnvironmentMissing indicates a required local tool, credential or file is absent.
	KindEnvironmentMissing Kind = "environment_missing"
	// KindRemoteUnreachable indicates a network or SSH operation failed.
	KindRemoteUnreachable Kind = "remote_unreachable"
	// KindTimeout indicates the probe or one of its calls exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindInternalFault indicates unexpected output, a panic or a probe error.
	KindInternalFault Kind = "internal_fault"
)

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }
