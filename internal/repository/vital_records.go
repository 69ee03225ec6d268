package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medicore-dashboard/internal/models"
)

// VitalRecord vital_records 表中的一行
type VitalRecord struct {
	ID         int64
	DeviceID   string
	RecordedAt time.Time
	HR         sql.NullInt64
	SpO2       sql.NullInt64
	Posture    int
	Area       int
	Steps      int
}

// VitalRecordRepository 生命体征记录仓储（轮询摄取模式的数据源）
type VitalRecordRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVitalRecordRepository 创建仓储
func NewVitalRecordRepository(db *sql.DB, logger *zap.Logger) *VitalRecordRepository {
	return &VitalRecordRepository{
		db:     db,
		logger: logger,
	}
}

// LatestID 返回当前最大的记录 ID（轮询起点；空表返回 0）
func (r *VitalRecordRepository) LatestID() (int64, error) {
	var id sql.NullInt64
	err := r.db.QueryRow(`SELECT MAX(id) FROM vital_records`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest record id: %w", err)
	}
	if !id.Valid {
		return 0, nil
	}
	return id.Int64, nil
}

// ListSince 按 ID 升序返回 sinceID 之后的记录（增量拉取）
func (r *VitalRecordRepository) ListSince(sinceID int64, limit int) ([]VitalRecord, error) {
	rows, err := r.db.Query(`
		SELECT id, device_id, recorded_at, hr, spo2, posture, area, steps
		FROM vital_records
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2`,
		sinceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list vital records: %w", err)
	}
	defer rows.Close()

	var records []VitalRecord
	for rows.Next() {
		var rec VitalRecord
		if err := rows.Scan(
			&rec.ID, &rec.DeviceID, &rec.RecordedAt,
			&rec.HR, &rec.SpO2, &rec.Posture, &rec.Area, &rec.Steps,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vital record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vital records: %w", err)
	}

	return records, nil
}

// Insert 写入一条生命体征记录（模拟器的 DB 模式使用）
func (r *VitalRecordRepository) Insert(e *models.VitalEvent) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO vital_records (device_id, recorded_at, hr, spo2, posture, area, steps)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.DeviceID, e.Timestamp, nullableInt(e.HR), nullableInt(e.SpO2), e.Posture, e.Area, e.Steps,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert vital record: %w", err)
	}
	return id, nil
}

// ToEvent 转换为 VitalEvent（数值字段在此钳制）
func (rec *VitalRecord) ToEvent() *models.VitalEvent {
	e := &models.VitalEvent{
		DeviceID:  rec.DeviceID,
		Timestamp: rec.RecordedAt,
		Posture:   rec.Posture,
		Area:      rec.Area,
		Steps:     rec.Steps,
	}
	if rec.HR.Valid {
		hr := models.ClampHR(int(rec.HR.Int64))
		e.HR = &hr
	}
	if rec.SpO2.Valid {
		spo2 := models.ClampSpO2(int(rec.SpO2.Int64))
		e.SpO2 = &spo2
	}
	return e
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
