package plan

// Segment is a half-open time interval [StartSec, EndSec) scheduled for
// editing, together with the reason it was selected.
type Segment struct {
	StartSec float64
	EndSec   float64
	Reason   Reason
}

// DurationSec returns the length of the segment in seconds.
func (s Segment) DurationSec() float64 {
	return s.EndSec - s.StartSec
}

// overlaps reports whether the segment overlaps the interval [start, end).
func (s Segment) overlaps(start, end float64) bool {
	return s.StartSec < end && s.EndSec > start
}

// Plan aggregates the segments to delete entirely and the pauses to
// compress. The two lists are partitioned by intent: Removals never carry
// a long-pause reason and Pauses carry nothing else. Derived metrics are
// computed on demand because the lists may still mutate during planning.
type Plan struct {
	// Removals are deleted from the audio entirely.
	Removals []Segment
	// Pauses are compressed toward their per-segment target duration.
	Pauses []Segment
}

// IsEmpty reports whether the plan contains no edits at all.
func (p Plan) IsEmpty() bool {
	return len(p.Removals) == 0 && len(p.Pauses) == 0
}

// TotalEditCount returns the number of planned edits.
func (p Plan) TotalEditCount() int {
	return len(p.Removals) + len(p.Pauses)
}

// TotalRemovalSec returns the total duration of audio that will be
// deleted outright.
func (p Plan) TotalRemovalSec() float64 {
	var total float64
	for _, s := range p.Removals {
		total += s.DurationSec()
	}
	return total
}

// TotalPauseSavingsSec returns the time saved by compressing pauses down
// to their target durations. Pauses already at or below target save
// nothing.
func (p Plan) TotalPauseSavingsSec() float64 {
	var saved float64
	for _, s := range p.Pauses {
		if d := s.DurationSec() - s.Reason.TargetSec; d > 0 {
			saved += d
		}
	}
	return saved
}
