package recordledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-intake/internal/common/config"
	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/intake"
	"lead-intake/internal/submission"
)

var fixedID = uuid.MustParse("2b1f3c1e-6a36-4f0e-9a55-3f6e3a2b9c11")

func createReceipt() submission.Receipt {
	record := intake.Record{}.
		Merge(intake.BusinessDetails{
			BusinessName: "Acme Co", BusinessDomain: "retail", PrimaryService: "Widgets",
			Location: "Austin", PrimaryLanguage: "english",
		}).
		Merge(intake.WebsitePreferences{Features: []string{"store"}}).
		Merge(intake.MarketingPreferences{Budget: intake.Budget{Type: "monthly", Amount: "1500"}})

	return submission.Receipt{
		FileName:    "form-submission-2024-05-01T12-30-45-123Z.json",
		SubmittedAt: time.Date(2024, 5, 1, 12, 30, 45, 123_000_000, time.UTC),
		Record:      record,
		Document:    map[string]interface{}{"business": map[string]interface{}{"businessName": "Acme Co"}},
	}
}

func createHandler(t *testing.T, db Execer, retries int) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		DB:           db,
		CustomConfig: &Config{Enabled: true, Timeout: time.Second, MaxRetries: retries},
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	h.newID = func() uuid.UUID { return fixedID }
	return h
}

func TestHandler_Handle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	receipt := createReceipt()
	doc, _ := json.Marshal(receipt.Document)

	mock.ExpectExec("INSERT INTO form_submissions").
		WithArgs(fixedID.String(), receipt.FileName, "Acme Co", "retail", "english", "monthly", "1500", doc, receipt.SubmittedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := createHandler(t, db, 0)
	require.NoError(t, h.Handle(context.Background(), receipt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_HandleReplayIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO form_submissions").WillReturnResult(sqlmock.NewResult(0, 0))

	h := createHandler(t, db, 0)
	assert.NoError(t, h.Handle(context.Background(), createReceipt()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_HandleRetriesDatabaseErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO form_submissions").WillReturnError(errors.New("connection reset"))
	mock.ExpectExec("INSERT INTO form_submissions").WillReturnError(errors.New("connection reset"))

	h := createHandler(t, db, 1)
	err = h.Handle(context.Background(), createReceipt())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExternalService))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_HandleRejectsIncompleteRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	receipt := createReceipt()
	receipt.Record.Marketing = nil

	h := createHandler(t, db, 3)
	err = h.Handle(context.Background(), receipt)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidPayload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewHandler(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewHandler(HandlerOptions{Logger: logger.NewNoOpLogger()})
	assert.Error(t, err)

	_, err = NewHandler(HandlerOptions{DB: db, CustomConfig: &Config{Timeout: 0}})
	assert.Error(t, err)

	h, err := NewHandler(HandlerOptions{
		DB: db,
		AppConfig: &config.Config{Workers: map[string]config.WorkerConfig{
			WorkerName: {Enabled: true, Timeout: 2500, MaxRetries: 4},
		}},
		Logger: logger.NewNoOpLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, WorkerName, h.Name())
	assert.True(t, h.IsEnabled())
	assert.Equal(t, 2500*time.Millisecond, h.config.Timeout)
	assert.Equal(t, 4, h.config.MaxRetries)
}
