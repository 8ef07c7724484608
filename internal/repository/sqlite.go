package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// each :memory: connection is its own database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS volunteers (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			skills TEXT NOT NULL DEFAULT '[]',
			available INTEGER NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			latitude REAL,
			longitude REAL,
			vehicle TEXT NOT NULL DEFAULT '',
			rating REAL NOT NULL DEFAULT 0,
			response_count INTEGER NOT NULL DEFAULT 0,
			verification TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS emergency_requests (
			id TEXT PRIMARY KEY,
			requester_id TEXT NOT NULL,
			category TEXT NOT NULL,
			urgency TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			latitude REAL,
			longitude REAL,
			people_count INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL,
			assigned_volunteer_id TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS notification_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			volunteer_id TEXT NOT NULL,
			phone TEXT NOT NULL,
			distance_km REAL NOT NULL,
			message TEXT NOT NULL,
			delivered INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_volunteers_available ON volunteers(available, verification);
		CREATE INDEX IF NOT EXISTS idx_requests_status ON emergency_requests(status);
		CREATE INDEX IF NOT EXISTS idx_requests_created_at ON emergency_requests(created_at);
		CREATE INDEX IF NOT EXISTS idx_notification_log_request ON notification_log(request_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, phone, email, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Phone, u.Email, u.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var (
		u         models.User
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, email, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &u, nil
}

func (s *SQLiteDB) CreateVolunteer(ctx context.Context, v *models.Volunteer) error {
	skills, err := json.Marshal(v.Skills)
	if err != nil {
		return fmt.Errorf("error encoding skills: %w", err)
	}
	lat, lng := nullCoordinates(v.Coordinates)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO volunteers (id, user_id, skills, available, location, latitude, longitude,
			vehicle, rating, response_count, verification, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, string(skills), v.Available, v.Location, lat, lng,
		v.Vehicle, v.Rating, v.ResponseCount, string(v.Verification), v.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error inserting volunteer: %w", err)
	}
	return nil
}

const volunteerColumns = `id, user_id, skills, available, location, latitude, longitude,
	vehicle, rating, response_count, verification, created_at`

func scanVolunteer(row rowScanner) (*models.Volunteer, error) {
	var (
		v            models.Volunteer
		skills       string
		verification string
		lat, lng     sql.NullFloat64
		createdAt    int64
	)
	if err := row.Scan(&v.ID, &v.UserID, &skills, &v.Available, &v.Location, &lat, &lng,
		&v.Vehicle, &v.Rating, &v.ResponseCount, &verification, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(skills), &v.Skills); err != nil {
		return nil, fmt.Errorf("error decoding skills for %s: %w", v.ID, err)
	}
	v.Verification = models.VerificationStatus(verification)
	v.Coordinates = coordinatesFromNull(lat, lng)
	v.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &v, nil
}

func (s *SQLiteDB) GetAvailableVolunteers(ctx context.Context) ([]models.Volunteer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+volunteerColumns+`
		FROM volunteers
		WHERE available = 1 AND verification = ?
		ORDER BY created_at, rowid`, string(models.VerificationVerified))
	if err != nil {
		return nil, fmt.Errorf("error querying volunteers: %w", err)
	}
	defer rows.Close()

	var volunteers []models.Volunteer
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning volunteer: %w", err)
		}
		volunteers = append(volunteers, *v)
	}
	return volunteers, rows.Err()
}

func (s *SQLiteDB) UpdateVolunteer(ctx context.Context, id string, upd VolunteerUpdate) (*models.Volunteer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	v, err := scanVolunteer(tx.QueryRowContext(ctx,
		`SELECT `+volunteerColumns+` FROM volunteers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying volunteer: %w", err)
	}

	upd.apply(v)
	lat, lng := nullCoordinates(v.Coordinates)

	if _, err := tx.ExecContext(ctx,
		`UPDATE volunteers SET available = ?, location = ?, latitude = ?, longitude = ?, verification = ? WHERE id = ?`,
		v.Available, v.Location, lat, lng, string(v.Verification), id,
	); err != nil {
		return nil, fmt.Errorf("error updating volunteer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing volunteer update: %w", err)
	}
	return v, nil
}

func (s *SQLiteDB) CreateEmergencyRequest(ctx context.Context, r *models.EmergencyRequest) error {
	lat, lng := nullCoordinates(r.Coordinates)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emergency_requests (id, requester_id, category, urgency, description, location,
			latitude, longitude, people_count, status, assigned_volunteer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RequesterID, string(r.Category), string(r.Urgency), r.Description, r.Location,
		lat, lng, r.PeopleCount, string(r.Status), r.AssignedVolunteerID,
		r.CreatedAt.UnixMilli(), r.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error inserting emergency request: %w", err)
	}
	return nil
}

const emergencyColumns = `id, requester_id, category, urgency, description, location, latitude, longitude,
	people_count, status, assigned_volunteer_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmergency(row rowScanner) (*models.EmergencyRequest, error) {
	var (
		r                    models.EmergencyRequest
		category, urgency    string
		status               string
		lat, lng             sql.NullFloat64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&r.ID, &r.RequesterID, &category, &urgency, &r.Description, &r.Location,
		&lat, &lng, &r.PeopleCount, &status, &r.AssignedVolunteerID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	r.Category = models.Category(category)
	r.Urgency = models.Urgency(urgency)
	r.Status = models.RequestStatus(status)
	r.Coordinates = coordinatesFromNull(lat, lng)
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	r.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &r, nil
}

func (s *SQLiteDB) GetEmergencyRequest(ctx context.Context, id string) (*models.EmergencyRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+emergencyColumns+` FROM emergency_requests WHERE id = ?`, id)
	r, err := scanEmergency(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying emergency request: %w", err)
	}
	return r, nil
}

func (s *SQLiteDB) ListEmergencyRequests(ctx context.Context, opts EmergencyFilter) ([]models.EmergencyRequest, error) {
	var (
		conditions []string
		args       []any
	)
	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*opts.Status))
	}
	if opts.Urgency != nil {
		conditions = append(conditions, "urgency = ?")
		args = append(args, string(*opts.Urgency))
	}

	query := `SELECT ` + emergencyColumns + ` FROM emergency_requests`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing emergency requests: %w", err)
	}
	defer rows.Close()

	results := []models.EmergencyRequest{}
	for rows.Next() {
		r, err := scanEmergency(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning emergency request: %w", err)
		}
		results = append(results, *r)
	}
	return results, rows.Err()
}

func (s *SQLiteDB) UpdateEmergencyStatus(ctx context.Context, id string, status models.RequestStatus, volunteerID string) (*models.EmergencyRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanEmergency(tx.QueryRowContext(ctx,
		`SELECT `+emergencyColumns+` FROM emergency_requests WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying emergency request: %w", err)
	}

	if err := models.CheckTransition(current.Status, status); err != nil {
		return nil, err
	}

	current.Status = status
	if volunteerID != "" {
		current.AssignedVolunteerID = volunteerID
	}
	current.UpdatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`UPDATE emergency_requests SET status = ?, assigned_volunteer_id = ?, updated_at = ? WHERE id = ?`,
		string(current.Status), current.AssignedVolunteerID, current.UpdatedAt.UnixMilli(), id,
	); err != nil {
		return nil, fmt.Errorf("error updating emergency request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing status update: %w", err)
	}
	return current, nil
}

func (s *SQLiteDB) LogNotification(ctx context.Context, rec *NotificationRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_log (request_id, volunteer_id, phone, distance_km, message, delivered, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.VolunteerID, rec.Phone, rec.DistanceKm, rec.Message, rec.Delivered, rec.Error,
		rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error inserting notification log: %w", err)
	}
	return nil
}

// NotificationsForRequest returns the audit rows for one emergency request.
func (s *SQLiteDB) NotificationsForRequest(ctx context.Context, requestID string) ([]NotificationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, volunteer_id, phone, distance_km, message, delivered, error, created_at
		FROM notification_log WHERE request_id = ? ORDER BY id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("error querying notification log: %w", err)
	}
	defer rows.Close()

	var records []NotificationRecord
	for rows.Next() {
		var (
			rec       NotificationRecord
			createdAt int64
		)
		if err := rows.Scan(&rec.RequestID, &rec.VolunteerID, &rec.Phone, &rec.DistanceKm,
			&rec.Message, &rec.Delivered, &rec.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning notification log: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullCoordinates(c *models.Coordinates) (sql.NullFloat64, sql.NullFloat64) {
	if c == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.Latitude, Valid: true}, sql.NullFloat64{Float64: c.Longitude, Valid: true}
}

func coordinatesFromNull(lat, lng sql.NullFloat64) *models.Coordinates {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &models.Coordinates{Latitude: lat.Float64, Longitude: lng.Float64}
}
