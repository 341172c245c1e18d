package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-wellbeing-api/internal/dto"
	"github.com/noah-isme/sma-wellbeing-api/internal/models"
	appErrors "github.com/noah-isme/sma-wellbeing-api/pkg/errors"
	"github.com/noah-isme/sma-wellbeing-api/pkg/export"
	"github.com/noah-isme/sma-wellbeing-api/pkg/jobs"
)

// SeverityWarmJob rebuilds the default overview of one school after a refresh.
const SeverityWarmJob = "severity.warm"

// Severity query defaults.
const (
	defaultSeverityPeriod    = "weekly"
	defaultSeverityRiskLevel = "all"
	defaultSeveritySortBy    = "risk_score"
	defaultSeveritySortOrder = "desc"
)

type severitySnapshotReader interface {
	LatestSnapshots(ctx context.Context, schoolID, periodType string) ([]models.SeveritySnapshot, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// SeverityServiceConfig tunes the school-wide overview.
type SeverityServiceConfig struct {
	CacheTTL     time.Duration
	DefaultLimit int
}

// SeverityService lists the latest wellbeing snapshot of every student in a school.
type SeverityService struct {
	repo      severitySnapshotReader
	cache     *CacheService
	metrics   *MetricsService
	csv       datasetRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SeverityServiceConfig
	warmer    jobEnqueuer
}

// NewSeverityService constructs a SeverityService.
func NewSeverityService(repo severitySnapshotReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg SeverityServiceConfig) *SeverityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	return &SeverityService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		csv:       export.NewCSVExporter(),
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Overview returns the filtered, sorted and summarised latest snapshots. The boolean reports a cache hit.
func (s *SeverityService) Overview(ctx context.Context, caller models.CallerContext, query dto.SeverityQuery) (*dto.SeverityOverview, bool, error) {
	if !caller.IsAdmin() {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "only administrators can view wellbeing severity data")
	}
	if caller.TenantID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorized, "caller scope missing")
	}

	query = s.normalize(query)
	if err := s.validator.Struct(query); err != nil {
		return nil, false, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid severity query")
	}

	key := s.cacheKey(caller.TenantID, query)
	var cached dto.SeverityOverview
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	start := time.Now()
	snapshots, err := s.repo.LatestSnapshots(ctx, caller.TenantID, query.PeriodType)
	s.metrics.ObserveDBQuery("severity_latest_snapshots", time.Since(start))
	if err != nil {
		return nil, false, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to fetch wellbeing severity data")
	}

	records := make([]dto.SeverityRecord, 0, len(snapshots))
	for _, snap := range snapshots {
		if query.RiskLevel != defaultSeverityRiskLevel && string(snap.RiskLevel) != query.RiskLevel {
			continue
		}
		records = append(records, severityRecord(snap))
	}
	sortSeverityRecords(records, query.SortBy, query.SortOrder == "asc")
	if len(records) > query.Limit {
		records = records[:query.Limit]
	}

	overview := &dto.SeverityOverview{
		Records: records,
		Summary: summarizeSeverity(records),
		Metadata: dto.SeverityMetadata{
			PeriodType:      query.PeriodType,
			RiskLevelFilter: query.RiskLevel,
			SortBy:          query.SortBy,
			SortOrder:       query.SortOrder,
			Limit:           query.Limit,
			LastUpdated:     latestAnalysisDate(records),
		},
	}

	s.cache.Set(ctx, key, overview, s.cfg.CacheTTL)
	return overview, false, nil
}

// ExportCSV renders the overview records as a CSV attachment.
func (s *SeverityService) ExportCSV(ctx context.Context, caller models.CallerContext, query dto.SeverityQuery) (*ExportedFile, error) {
	overview, _, err := s.Overview(ctx, caller, query)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{Headers: []string{
		"student_id", "student_name", "student_grade", "student_class", "analysis_date",
		"risk_level", "risk_score", "overall_wellbeing_score", "intervention_recommended", "intervention_priority",
	}}
	for _, record := range overview.Records {
		data.Rows = append(data.Rows, map[string]string{
			"student_id":               record.StudentID,
			"student_name":             record.StudentName,
			"student_grade":            record.StudentGrade,
			"student_class":            record.StudentClass,
			"analysis_date":            record.AnalysisDate.Format("2006-01-02"),
			"risk_level":               record.RiskLevel,
			"risk_score":               formatScore(record.RiskScore),
			"overall_wellbeing_score":  formatScore(record.OverallWellbeingScore),
			"intervention_recommended": strconv.FormatBool(record.InterventionRecommended),
			"intervention_priority":    record.InterventionPriority,
		})
	}

	payload, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to render severity export")
	}
	return &ExportedFile{
		Filename:    "wellbeing-severity-" + overview.Metadata.PeriodType + ".csv",
		ContentType: "text/csv",
		Data:        payload,
	}, nil
}

// AttachWarmQueue makes Refresh schedule a rebuild of the default overview.
func (s *SeverityService) AttachWarmQueue(q jobEnqueuer) {
	s.warmer = q
}

// Refresh drops every cached overview of the caller's school.
func (s *SeverityService) Refresh(ctx context.Context, caller models.CallerContext) error {
	if !caller.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can refresh wellbeing severity data")
	}
	if err := s.cache.InvalidateTenant(ctx, caller.TenantID); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to invalidate severity cache")
	}
	s.logger.Info("severity cache invalidated", zap.String("school_id", caller.TenantID))

	if s.warmer != nil && s.cache.Enabled() {
		if err := s.warmer.Enqueue(jobs.Job{Type: SeverityWarmJob, Key: caller.TenantID}); err != nil {
			s.logger.Warn("severity warm-up not scheduled", zap.String("school_id", caller.TenantID), zap.Error(err))
		}
	}
	return nil
}

// Warm handles SeverityWarmJob by rebuilding and caching the default overview.
func (s *SeverityService) Warm(ctx context.Context, job jobs.Job) error {
	if job.Type != SeverityWarmJob {
		return nil
	}
	system := models.CallerContext{TenantID: job.Key, SubjectID: "severity-warmer", Role: models.RoleAdmin}
	_, _, err := s.Overview(ctx, system, dto.SeverityQuery{})
	return err
}

func (s *SeverityService) normalize(query dto.SeverityQuery) dto.SeverityQuery {
	query.PeriodType = strings.TrimSpace(query.PeriodType)
	if query.PeriodType == "" {
		query.PeriodType = defaultSeverityPeriod
	}
	query.RiskLevel = strings.ToLower(strings.TrimSpace(query.RiskLevel))
	if query.RiskLevel == "" {
		query.RiskLevel = defaultSeverityRiskLevel
	}
	query.SortBy = strings.TrimSpace(query.SortBy)
	if query.SortBy == "" {
		query.SortBy = defaultSeveritySortBy
	}
	query.SortOrder = strings.ToLower(strings.TrimSpace(query.SortOrder))
	if query.SortOrder == "" {
		query.SortOrder = defaultSeveritySortOrder
	}
	if query.Limit == 0 {
		query.Limit = s.cfg.DefaultLimit
	}
	return query
}

func (s *SeverityService) cacheKey(schoolID string, query dto.SeverityQuery) string {
	return s.cache.Key("severity", schoolID, query.PeriodType, query.RiskLevel, query.SortBy, query.SortOrder, strconv.Itoa(query.Limit))
}

func severityRecord(snap models.SeveritySnapshot) dto.SeverityRecord {
	grade := "N/A"
	if g := strings.TrimSpace(snap.GradeLevel); g != "" {
		grade = "Grade " + g
	}
	return dto.SeverityRecord{
		StudentID:                snap.StudentID,
		StudentName:              studentDisplayName(snap.FirstName, snap.LastName),
		StudentGrade:             grade,
		StudentClass:             orNA(snap.ClassName),
		AnalysisDate:             snap.AnalysisDate,
		PeriodType:               snap.PeriodType,
		OverallWellbeingScore:    snap.OverallWellbeingScore,
		EmotionalWellbeingScore:  snap.EmotionalWellbeingScore,
		AcademicWellbeingScore:   snap.AcademicWellbeingScore,
		EngagementWellbeingScore: snap.EngagementWellbeingScore,
		SocialWellbeingScore:     snap.SocialWellbeingScore,
		BehavioralWellbeingScore: snap.BehavioralWellbeingScore,
		RiskLevel:                string(snap.RiskLevel),
		RiskScore:                snap.RiskScore,
		RiskTrend:                snap.RiskTrend,
		OverallScoreTrend:        snap.OverallScoreTrend,
		InterventionRecommended:  snap.InterventionRecommended,
		InterventionPriority:     snap.InterventionPriority,
		InterventionType:         snap.InterventionType,
		RiskFactorsCount:         len(snap.RiskFactors),
		ProtectiveFactorsCount:   len(snap.ProtectiveFactors),
		GPA:                      snap.GPA,
		AttendanceRate:           snap.AttendanceRate,
		QuestCompletionRate:      snap.QuestCompletionRate,
	}
}

// sortSeverityRecords orders by the whitelisted column. Records missing the value sort last in either direction.
func sortSeverityRecords(records []dto.SeverityRecord, sortBy string, ascending bool) {
	switch sortBy {
	case "student_name":
		sort.SliceStable(records, func(i, j int) bool {
			a, b := strings.ToLower(records[i].StudentName), strings.ToLower(records[j].StudentName)
			if ascending {
				return a < b
			}
			return a > b
		})
	case "analysis_date":
		sort.SliceStable(records, func(i, j int) bool {
			if ascending {
				return records[i].AnalysisDate.Before(records[j].AnalysisDate)
			}
			return records[i].AnalysisDate.After(records[j].AnalysisDate)
		})
	default:
		value := severityScoreColumn(sortBy)
		sort.SliceStable(records, func(i, j int) bool {
			a, aok := finite(value(records[i]))
			b, bok := finite(value(records[j]))
			if aok != bok {
				return aok
			}
			if !aok {
				return false
			}
			if ascending {
				return a < b
			}
			return a > b
		})
	}
}

func severityScoreColumn(sortBy string) func(dto.SeverityRecord) *float64 {
	switch sortBy {
	case "overall_wellbeing_score":
		return func(r dto.SeverityRecord) *float64 { return r.OverallWellbeingScore }
	case "emotional_wellbeing_score":
		return func(r dto.SeverityRecord) *float64 { return r.EmotionalWellbeingScore }
	case "academic_wellbeing_score":
		return func(r dto.SeverityRecord) *float64 { return r.AcademicWellbeingScore }
	case "engagement_wellbeing_score":
		return func(r dto.SeverityRecord) *float64 { return r.EngagementWellbeingScore }
	default:
		return func(r dto.SeverityRecord) *float64 { return r.RiskScore }
	}
}

func summarizeSeverity(records []dto.SeverityRecord) dto.SeveritySummary {
	summary := dto.SeveritySummary{
		Total:                  len(records),
		ByRiskLevel:            map[string]int{},
		ByInterventionPriority: map[string]int{},
	}
	var overall, emotional, academic, engagement, social, behavioral float64
	for _, r := range records {
		summary.ByRiskLevel[r.RiskLevel]++
		if r.InterventionRecommended {
			summary.InterventionsNeeded++
			if r.InterventionPriority != "" {
				summary.ByInterventionPriority[r.InterventionPriority]++
			}
		}
		if r.RiskLevel == string(models.RiskHigh) || r.RiskLevel == string(models.RiskCritical) {
			summary.HighRiskCount++
		}
		switch models.Trend(r.OverallScoreTrend) {
		case models.TrendImproving:
			summary.ImprovingTrend++
		case models.TrendDeclining:
			summary.DecliningTrend++
		}
		overall += valueOrZero(r.OverallWellbeingScore)
		emotional += valueOrZero(r.EmotionalWellbeingScore)
		academic += valueOrZero(r.AcademicWellbeingScore)
		engagement += valueOrZero(r.EngagementWellbeingScore)
		social += valueOrZero(r.SocialWellbeingScore)
		behavioral += valueOrZero(r.BehavioralWellbeingScore)
	}
	if n := float64(len(records)); n > 0 {
		summary.AverageScores = dto.SeverityAverages{
			Overall:    overall / n,
			Emotional:  emotional / n,
			Academic:   academic / n,
			Engagement: engagement / n,
			Social:     social / n,
			Behavioral: behavioral / n,
		}
	}
	return summary
}

func valueOrZero(v *float64) float64 {
	value, _ := finite(v)
	return value
}

func latestAnalysisDate(records []dto.SeverityRecord) *time.Time {
	var latest time.Time
	for _, r := range records {
		if r.AnalysisDate.After(latest) {
			latest = r.AnalysisDate
		}
	}
	if latest.IsZero() {
		return nil
	}
	return &latest
}
