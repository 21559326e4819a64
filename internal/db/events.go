package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/thermal.report/internal/thermal"
)

// AlertEvent is one persisted alert firing.
type AlertEvent struct {
	ID         string         `json:"id"`
	SensorAddr int            `json:"sensor_addr"`
	AlertName  string         `json:"alert_name"`
	Offender   string         `json:"offender"`
	Value      float64        `json:"value"`
	FrameMin   float64        `json:"frame_min"`
	FrameAvg   float64        `json:"frame_avg"`
	FrameMax   float64        `json:"frame_max"`
	Crop       thermal.Region `json:"crop"`
	ImagePath  string         `json:"image_path,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RecordAlertEvent inserts one alert firing. An empty ID is filled
// with a fresh UUID; the stored ID is returned.
func (db *DB) RecordAlertEvent(e AlertEvent) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO alert_events
			(id, sensor_addr, alert_name, offender, value,
			 frame_min, frame_avg, frame_max,
			 crop_x1, crop_y1, crop_x2, crop_y2, image_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SensorAddr, e.AlertName, e.Offender, e.Value,
		e.FrameMin, e.FrameAvg, e.FrameMax,
		e.Crop.X1, e.Crop.Y1, e.Crop.X2, e.Crop.Y2, e.ImagePath,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record alert event: %w", err)
	}
	return e.ID, nil
}

// RecentAlertEvents returns up to limit events, newest first.
func (db *DB) RecentAlertEvents(limit int) ([]AlertEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, sensor_addr, alert_name, offender, value,
		       frame_min, frame_avg, frame_max,
		       crop_x1, crop_y1, crop_x2, crop_y2, image_path, created_at
		FROM alert_events
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert events: %w", err)
	}
	defer rows.Close()

	var events []AlertEvent
	for rows.Next() {
		var e AlertEvent
		if err := rows.Scan(
			&e.ID, &e.SensorAddr, &e.AlertName, &e.Offender, &e.Value,
			&e.FrameMin, &e.FrameAvg, &e.FrameMax,
			&e.Crop.X1, &e.Crop.Y1, &e.Crop.X2, &e.Crop.Y2,
			&e.ImagePath, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// AlertCounts returns the number of recorded events per sensor.
func (db *DB) AlertCounts() (map[int]int, error) {
	rows, err := db.Query(`SELECT sensor_addr, COUNT(*) FROM alert_events GROUP BY sensor_addr`)
	if err != nil {
		return nil, fmt.Errorf("failed to count alert events: %w", err)
	}
	defer rows.Close()

	counts := map[int]int{}
	for rows.Next() {
		var addr, n int
		if err := rows.Scan(&addr, &n); err != nil {
			return nil, err
		}
		counts[addr] = n
	}
	return counts, rows.Err()
}

// RecordFrameSample logs the summary statistics of one sampled frame.
func (db *DB) RecordFrameSample(addr int, f thermal.Frame) error {
	if f.IsZero() {
		return nil
	}
	_, err := db.Exec(`
		INSERT INTO frame_samples (sensor_addr, frame_min, frame_avg, frame_max)
		VALUES (?, ?, ?, ?)`,
		addr, f.Min(), f.Avg(), f.Max())
	if err != nil {
		return fmt.Errorf("failed to record frame sample: %w", err)
	}
	return nil
}
