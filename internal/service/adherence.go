package service

import (
	"math"
	"time"

	"meds_buddy/internal/model"
)

// AdherenceWindowDays is the length of the trailing adherence window. The
// window runs from today minus AdherenceWindowDays through today inclusive,
// so it covers 31 calendar days in total.
const AdherenceWindowDays = 30

// ComputeAdherence returns the percentage of expected doses actually taken
// across all of a user's medications over the trailing window ending at
// today. Each medication is expected once per calendar day regardless of its
// frequency text. A user with no medications scores 0.
func ComputeAdherence(medications []model.Medication, today time.Time) int {
	if len(medications) == 0 {
		return 0
	}

	windowStart := today.AddDate(0, 0, -AdherenceWindowDays)
	var expected, taken int
	for day := windowStart; !day.After(today); day = day.AddDate(0, 0, 1) {
		dateStr := day.Format(model.DateLayout)
		for _, med := range medications {
			expected++
			if med.TakenDates.Contains(dateStr) {
				taken++
			}
		}
	}

	if expected == 0 {
		return 0
	}
	return int(math.Round(float64(taken) / float64(expected) * 100))
}
