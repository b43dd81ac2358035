package checks

// Summary aggregates the outcomes of one run.
type Summary struct {
	Total      int       `json:"total" yaml:"total"`
	Passed     int       `json:"passed" yaml:"passed"`
	Percentage float64   `json:"percentage" yaml:"percentage"`
	Failed     []Outcome `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Summarize derives a Summary from outcomes. Failed keeps the input order.
// Percentage is 0 when there are no outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Passed {
			s.Passed++
			continue
		}
		s.Failed = append(s.Failed, o)
	}
	if s.Total > 0 {
		s.Percentage = float64(s.Passed) / float64(s.Total) * 100
	}
	return s
}

// OK reports whether every check passed.
func (s Summary) OK() bool {
	return s.Percentage == 100
}
