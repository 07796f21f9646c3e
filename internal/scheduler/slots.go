package scheduler

// DefaultStepMin is the candidate start granularity when none is given.
const DefaultStepMin = 15

// Slot is a bookable window inside working hours that touches no busy interval.
type Slot struct {
	StartMin  int    `json:"start_min"`
	EndMin    int    `json:"end_min"`
	StartHHMM string `json:"start"`
	EndHHMM   string `json:"end"`
	StartDT   string `json:"start_dt"`
	EndDT     string `json:"end_dt"`
}

func normalizeStep(stepMin int) int {
	if stepMin <= 0 {
		return DefaultStepMin
	}
	return stepMin
}

// GenerateSlots walks w in steps of stepMin and returns every start whose
// [start, start+durationMin) stays inside w and clears busy. Output is in
// ascending start order and identical for identical input.
func GenerateSlots(date string, w Window, durationMin, stepMin int, busy []Interval) []Slot {
	if durationMin <= 0 {
		return []Slot{}
	}
	step := normalizeStep(stepMin)

	lastStart := w.EndMin - durationMin
	if lastStart < w.StartMin {
		return []Slot{}
	}

	slots := make([]Slot, 0, (lastStart-w.StartMin)/step+1)
	for start := w.StartMin; ; start += step {
		end := start + durationMin
		if !Overlaps(busy, start, end) {
			startHHMM := FormatMinutes(start)
			endHHMM := FormatMinutes(end)
			slots = append(slots, Slot{
				StartMin:  start,
				EndMin:    end,
				StartHHMM: startHHMM,
				EndHHMM:   endHHMM,
				StartDT:   DateTime(date, startHHMM),
				EndDT:     DateTime(date, endHHMM),
			})
		}
		// start+step can overflow for huge steps
		if lastStart-start < step {
			break
		}
	}
	return slots
}
