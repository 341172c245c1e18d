package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

func TestAuditRepositoryRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAuditRepository(sqlx.NewDb(db, "sqlmock"))

	studentID := "student-1"
	entry := &models.AuditEntry{
		UserID:       "teacher-1",
		SchoolID:     "school-1",
		Action:       models.AuditActionInsightView,
		ResourceType: models.AuditResourceStudentInsight,
		ResourceID:   &studentID,
		Success:      true,
	}

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), "teacher-1", "school-1", models.AuditActionInsightView, models.AuditResourceStudentInsight, "student-1", sqlmock.AnyArg(), true, "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Record(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryRecordError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAuditRepository(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnError(errors.New("insert failed"))

	err = repo.Record(context.Background(), &models.AuditEntry{Action: models.AuditActionSeverityView})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record audit entry")
}
