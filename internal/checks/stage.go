package checks

// Stage is a named, ordered group of probes sharing an activation predicate.
// C is the configuration type the predicate and probe factory read.
type Stage[C any] struct {
	Name string
	// Active reports whether the stage runs for cfg. Nil means always active.
	Active func(cfg C) bool
	// Probes builds the stage's probes in display order.
	Probes func(cfg C) []Prober
}

// Always is an activation predicate that is always true.
func Always[C any](C) bool { return true }

// Static returns a probe factory that ignores the configuration.
func Static[C any](probes ...Prober) func(C) []Prober {
	return func(C) []Prober { return probes }
}
