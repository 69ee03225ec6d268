package repository_test

import (
	"database/sql"
	"testing"
	"time"

	"medicore-dashboard/internal/models"
	"medicore-dashboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVitalRecordRepository_LatestID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewVitalRecordRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT MAX\(id\) FROM vital_records`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(42))

	id, err := repo.LatestID()
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVitalRecordRepository_LatestIDEmptyTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewVitalRecordRepository(db, zap.NewNop())

	// 空表时 MAX(id) 为 NULL
	mock.ExpectQuery(`SELECT MAX\(id\) FROM vital_records`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	id, err := repo.LatestID()
	require.NoError(t, err)
	require.Equal(t, int64(0), id)
}

func TestVitalRecordRepository_ListSince(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewVitalRecordRepository(db, zap.NewNop())

	recordedAt := time.Now().UTC().Truncate(time.Second)
	mock.ExpectQuery(`SELECT id, device_id, recorded_at, hr, spo2, posture, area, steps`).
		WithArgs(int64(10), 100).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "device_id", "recorded_at", "hr", "spo2", "posture", "area", "steps",
		}).
			AddRow(11, "MC-001", recordedAt, 75, 98, 1, 7, 5).
			AddRow(12, "MC-002", recordedAt, nil, nil, 3, 6, 0))

	records, err := repo.ListSince(10, 100)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, int64(11), records[0].ID)
	require.Equal(t, "MC-001", records[0].DeviceID)
	require.True(t, records[0].HR.Valid)
	require.Equal(t, int64(75), records[0].HR.Int64)

	// NULL 生命体征保持 Invalid
	require.False(t, records[1].HR.Valid)
	require.False(t, records[1].SpO2.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVitalRecordRepository_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewVitalRecordRepository(db, zap.NewNop())

	hr := 75
	spo2 := 98
	e := &models.VitalEvent{
		DeviceID:  "MC-001",
		Timestamp: time.Now(),
		HR:        &hr,
		SpO2:      &spo2,
		Posture:   models.PostureSitting,
		Area:      models.AreaBedroom,
		Steps:     5,
	}

	mock.ExpectQuery(`INSERT INTO vital_records`).
		WithArgs("MC-001", e.Timestamp, 75, 98, models.PostureSitting, models.AreaBedroom, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := repo.Insert(e)
	require.NoError(t, err)
	require.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVitalRecord_ToEventClampsVitals(t *testing.T) {
	rec := &repository.VitalRecord{
		ID:         1,
		DeviceID:   "MC-001",
		RecordedAt: time.Now(),
		HR:         sql.NullInt64{Int64: 500, Valid: true},
		SpO2:       sql.NullInt64{Int64: -5, Valid: true},
		Posture:    models.PostureLying,
		Area:       models.AreaBathroom,
	}

	e := rec.ToEvent()
	require.Equal(t, 300, *e.HR)
	require.Equal(t, 0, *e.SpO2)
	require.Equal(t, models.PostureLying, e.Posture)
}

func TestVitalRecord_ToEventNullVitals(t *testing.T) {
	rec := &repository.VitalRecord{
		ID:         1,
		DeviceID:   "MC-001",
		RecordedAt: time.Now(),
	}

	e := rec.ToEvent()
	require.Nil(t, e.HR)
	require.Nil(t, e.SpO2)
}
