package service

import "time"

// InsightPolicy holds every threshold used by the trend calculator and the insight rules.
type InsightPolicy struct {
	// TrendDeadband is the absolute change within which a dimension stays stable.
	TrendDeadband float64

	LowActivityDays     int
	ReducedActivityDays int

	StrongGPA float64
	LowGPA    float64

	LowAttendance       float64
	ExcellentAttendance float64

	RecentMoodWindow       int
	NegativeMoodConcern    int
	PositiveMoodMinEntries int

	UrgentHelpWindow time.Duration

	LowCompletion  float64
	HighCompletion float64
}

// DefaultInsightPolicy returns the production thresholds.
func DefaultInsightPolicy() InsightPolicy {
	return InsightPolicy{
		TrendDeadband:          0.5,
		LowActivityDays:        7,
		ReducedActivityDays:    3,
		StrongGPA:              3.5,
		LowGPA:                 2.5,
		LowAttendance:          80,
		ExcellentAttendance:    95,
		RecentMoodWindow:       7,
		NegativeMoodConcern:    4,
		PositiveMoodMinEntries: 5,
		UrgentHelpWindow:       7 * 24 * time.Hour,
		LowCompletion:          50,
		HighCompletion:         90,
	}
}
