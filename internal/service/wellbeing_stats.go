package service

import (
	"github.com/noah-isme/sma-wellbeing-api/internal/dto"
	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

type moodSet map[string]struct{}

func newMoodSet(labels ...string) moodSet {
	set := make(moodSet, len(labels))
	for _, label := range labels {
		set[label] = struct{}{}
	}
	return set
}

func (s moodSet) has(label string) bool {
	_, ok := s[label]
	return ok
}

var (
	positiveMoods = newMoodSet(models.MoodHappy, models.MoodExcited, models.MoodCalm)
	negativeMoods = newMoodSet(models.MoodSad, models.MoodAngry, models.MoodAnxious)
	neutralMoods  = newMoodSet(models.MoodNeutral, models.MoodTired)

	// concernMoods widens negativeMoods with "stressed" for the emotional pattern rule only.
	concernMoods = newMoodSet(models.MoodSad, models.MoodAngry, models.MoodAnxious, models.MoodStressed)
)

// AggregateMoods buckets entries by sentiment. Unrecognised labels are counted in the
// total only.
func AggregateMoods(entries []models.MoodEntry) dto.MoodStats {
	stats := dto.MoodStats{TotalEntries: len(entries)}
	for _, entry := range entries {
		switch {
		case positiveMoods.has(entry.Mood):
			stats.PositiveCount++
		case negativeMoods.has(entry.Mood):
			stats.NegativeCount++
		case neutralMoods.has(entry.Mood):
			stats.NeutralCount++
		}
	}
	return stats
}

// AggregateHelpRequests counts requests by urgency and status.
func AggregateHelpRequests(requests []models.HelpRequest) dto.HelpStats {
	stats := dto.HelpStats{TotalRequests: len(requests)}
	for _, req := range requests {
		if req.Urgency == models.UrgencyHigh {
			stats.UrgentRequests++
		}
		switch req.Status {
		case models.HelpStatusResolved:
			stats.ResolvedRequests++
		case models.HelpStatusPending:
			stats.PendingRequests++
		}
	}
	return stats
}

// AggregateQuests totals quest completions and their experience points.
func AggregateQuests(completions []models.QuestCompletion) dto.QuestStats {
	stats := dto.QuestStats{TotalCompleted: len(completions)}
	for _, completion := range completions {
		stats.TotalXP += completion.XPEarned
	}
	if stats.TotalCompleted > 0 {
		stats.AverageXP = float64(stats.TotalXP) / float64(stats.TotalCompleted)
	}
	return stats
}
