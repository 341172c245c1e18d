package models

// InsightType names the dimension an insight talks about.
type InsightType string

const (
	InsightActivity   InsightType = "activity"
	InsightAcademic   InsightType = "academic"
	InsightAttendance InsightType = "attendance"
	InsightEmotional  InsightType = "emotional"
	InsightSupport    InsightType = "support"
	InsightEngagement InsightType = "engagement"
)

// InsightLevel is the severity attached to an insight.
type InsightLevel string

const (
	LevelPositive InsightLevel = "positive"
	LevelInfo     InsightLevel = "info"
	LevelConcern  InsightLevel = "concern"
	LevelUrgent   InsightLevel = "urgent"
)

// Insight is a generated observation with a suggested follow-up.
type Insight struct {
	Type       InsightType  `json:"type"`
	Level      InsightLevel `json:"level"`
	Title      string       `json:"title"`
	Message    string       `json:"message"`
	Suggestion string       `json:"suggestion"`
}
