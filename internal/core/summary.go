package core

// DefaultMaxFailureDetails caps the failure details kept in a Summary.
const DefaultMaxFailureDetails = 10

// Summary aggregates the outcomes of one run. It is never persisted.
type Summary struct {
	Total            int
	Created          int
	Updated          int
	SkippedDuplicate int
	SkippedUnmatched int
	Failed           int

	// Deduplicated counts in-file repeats dropped before reconciliation.
	Deduplicated int

	// Batches is the number of bulk insert calls made.
	Batches int

	// Failures holds the first failed outcomes, capped at the limit given
	// to NewSummary.
	Failures []Outcome

	maxFailures int
}

// NewSummary returns an empty summary keeping at most maxFailures details.
func NewSummary(maxFailures int) *Summary {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailureDetails
	}
	return &Summary{maxFailures: maxFailures}
}

// Record counts one terminal outcome.
func (s *Summary) Record(o Outcome) {
	s.Total++
	switch o.Status {
	case StatusCreated:
		s.Created++
	case StatusUpdated:
		s.Updated++
	case StatusSkippedDuplicate:
		s.SkippedDuplicate++
	case StatusSkippedUnmatched:
		s.SkippedUnmatched++
	case StatusFailed:
		s.Failed++
		if len(s.Failures) < s.maxFailures {
			s.Failures = append(s.Failures, o)
		}
	}
}

// Counts returns the non-zero per-status counts.
func (s *Summary) Counts() map[Status]int {
	counts := make(map[Status]int)
	add := func(st Status, n int) {
		if n > 0 {
			counts[st] = n
		}
	}
	add(StatusCreated, s.Created)
	add(StatusUpdated, s.Updated)
	add(StatusSkippedDuplicate, s.SkippedDuplicate)
	add(StatusSkippedUnmatched, s.SkippedUnmatched)
	add(StatusFailed, s.Failed)
	return counts
}

// Succeeded returns the number of records written remotely.
func (s *Summary) Succeeded() int {
	return s.Created + s.Updated
}

// OmittedFailures returns how many failures were counted but not kept.
func (s *Summary) OmittedFailures() int {
	return s.Failed - len(s.Failures)
}
