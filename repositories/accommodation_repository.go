package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/lib/pq"
)

var (
	ErrAccommodationNotFound      = errors.New("accommodation request not found")
	ErrAccommodationExists        = errors.New("accommodation request already exists for team member")
	ErrAccommodationStateConflict = errors.New("accommodation request is not in the expected state")
	ErrConfirmationCodeConflict   = errors.New("confirmation code conflict")
	ErrAccommodationRefInvalid    = errors.New("accommodation request references an invalid hotel, room or cluster")
)

type AccommodationFilter struct {
	TeamRequestID *int
	Status        *models.AccommodationStatus
	HotelIDs      []int
	CheckInStatus *models.CheckInStatus
}

type AssignParams struct {
	ClusterID      *int
	HotelID        int
	RoomCategoryID int
	AssignedBy     int
	AssignedAt     time.Time
}

type AccommodationRepository interface {
	// Create создаёт заявку в статусе pending; ErrAccommodationExists, если у участника она уже есть.
	Create(ctx context.Context, exec SQLExecutor, a *models.AccommodationRequest) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.AccommodationRequest, error)
	GetByQRCode(ctx context.Context, token string) (*models.AccommodationRequest, error)
	List(ctx context.Context, filter AccommodationFilter) ([]*models.AccommodationRequest, error)
	ConfirmationCodeExists(ctx context.Context, exec SQLExecutor, code string) (bool, error)

	// Условные переходы: ErrAccommodationStateConflict, если строка уже не в ожидаемом статусе.
	Assign(ctx context.Context, exec SQLExecutor, id int, from models.AccommodationStatus, p AssignParams) error
	MarkHotelApproved(ctx context.Context, exec SQLExecutor, id int, respondedBy int, at time.Time) error
	Confirm(ctx context.Context, exec SQLExecutor, id int, code, qrToken string, at time.Time) error
	Reject(ctx context.Context, exec SQLExecutor, id int, reason string, respondedBy int, at time.Time) error
	Cancel(ctx context.Context, exec SQLExecutor, id int, from models.AccommodationStatus, at time.Time) error
	CheckIn(ctx context.Context, exec SQLExecutor, id int, at time.Time) error
	CheckOut(ctx context.Context, exec SQLExecutor, id int, at time.Time, early bool, newQRToken string) error

	CountByStatus(ctx context.Context) (map[models.AccommodationStatus]int, error)
	CountCheckedIn(ctx context.Context) (int, error)
	ListTeamsLackingBookings(ctx context.Context) ([]*models.TeamBookingGap, error)
}

type postgresAccommodationRepository struct {
	db *sql.DB
}

func NewPostgresAccommodationRepository(db *sql.DB) AccommodationRepository {
	return &postgresAccommodationRepository{db: db}
}

const accommodationColumns = `id, team_request_id, team_member_id, cluster_id, hotel_id, room_category_id,
	check_in_date, check_out_date, accommodation_preferences, status, assigned_by, assigned_at,
	hotel_response_reason, hotel_responded_by, hotel_responded_at, confirmation_code, qr_code,
	check_in_status, check_out_status, actual_check_in_time, actual_check_out_time, is_early_checkout,
	cancelled_at, created_at, updated_at`

func scanAccommodation(row rowScanner) (*models.AccommodationRequest, error) {
	var a models.AccommodationRequest
	err := row.Scan(
		&a.ID, &a.TeamRequestID, &a.TeamMemberID, &a.ClusterID, &a.HotelID, &a.RoomCategoryID,
		&a.CheckInDate, &a.CheckOutDate, &a.AccommodationPreferences, &a.Status, &a.AssignedBy, &a.AssignedAt,
		&a.HotelResponseReason, &a.HotelRespondedBy, &a.HotelRespondedAt, &a.ConfirmationCode, &a.QRCode,
		&a.CheckInStatus, &a.CheckOutStatus, &a.ActualCheckInTime, &a.ActualCheckOutTime, &a.IsEarlyCheckout,
		&a.CancelledAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresAccommodationRepository) Create(ctx context.Context, exec SQLExecutor, a *models.AccommodationRequest) error {
	// ON CONFLICT не ломает внешнюю транзакцию, если заявка участника уже существует.
	query := `
		INSERT INTO accommodation_requests (
			team_request_id, team_member_id, cluster_id, check_in_date, check_out_date,
			accommodation_preferences, status, check_in_status, check_out_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (team_member_id) DO NOTHING
		RETURNING id, created_at, updated_at`

	err := executorOr(exec, r.db).QueryRowContext(ctx, query,
		a.TeamRequestID, a.TeamMemberID, a.ClusterID, a.CheckInDate, a.CheckOutDate,
		a.AccommodationPreferences, a.Status, a.CheckInStatus, a.CheckOutStatus,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccommodationExists
		}
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
			return ErrAccommodationRefInvalid
		}
		return fmt.Errorf("failed to create accommodation request: %w", err)
	}
	return nil
}

func (r *postgresAccommodationRepository) findOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.AccommodationRequest, error) {
	a, err := scanAccommodation(executorOr(exec, r.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccommodationNotFound
		}
		return nil, fmt.Errorf("failed to find accommodation request: %w", err)
	}
	return a, nil
}

func (r *postgresAccommodationRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.AccommodationRequest, error) {
	query := `SELECT ` + accommodationColumns + ` FROM accommodation_requests WHERE id = $1`
	return r.findOne(ctx, exec, query, id)
}

func (r *postgresAccommodationRepository) GetByQRCode(ctx context.Context, token string) (*models.AccommodationRequest, error) {
	query := `SELECT ` + accommodationColumns + ` FROM accommodation_requests WHERE qr_code = $1`
	return r.findOne(ctx, nil, query, token)
}

func (r *postgresAccommodationRepository) List(ctx context.Context, filter AccommodationFilter) ([]*models.AccommodationRequest, error) {
	var queryBuilder strings.Builder
	args := []interface{}{}
	argID := 1

	queryBuilder.WriteString(`SELECT ` + accommodationColumns + ` FROM accommodation_requests WHERE 1=1`)

	if filter.TeamRequestID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND team_request_id = $%d", argID))
		args = append(args, *filter.TeamRequestID)
		argID++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.HotelIDs != nil {
		ids := make([]int64, len(filter.HotelIDs))
		for i, id := range filter.HotelIDs {
			ids[i] = int64(id)
		}
		queryBuilder.WriteString(fmt.Sprintf(" AND hotel_id = ANY($%d)", argID))
		args = append(args, pq.Array(ids))
		argID++
	}
	if filter.CheckInStatus != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND check_in_status = $%d", argID))
		args = append(args, *filter.CheckInStatus)
	}
	queryBuilder.WriteString(" ORDER BY id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accommodation requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.AccommodationRequest, 0)
	for rows.Next() {
		a, err := scanAccommodation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accommodation request row: %w", err)
		}
		requests = append(requests, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accommodation request rows: %w", err)
	}
	return requests, nil
}

func (r *postgresAccommodationRepository) ConfirmationCodeExists(ctx context.Context, exec SQLExecutor, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM accommodation_requests WHERE confirmation_code = $1)`
	if err := executorOr(exec, r.db).QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check confirmation code: %w", err)
	}
	return exists, nil
}

func (r *postgresAccommodationRepository) execTransition(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) error {
	result, err := executorOr(exec, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch {
			case pqErr.Code == pqUniqueViolation && pqErr.Constraint == "accommodation_requests_confirmation_code_key":
				return ErrConfirmationCodeConflict
			case pqErr.Code == pqForeignKeyViolation:
				return ErrAccommodationRefInvalid
			}
		}
		return fmt.Errorf("failed to update accommodation request: %w", err)
	}
	return checkAffectedRows(result, ErrAccommodationStateConflict)
}

func (r *postgresAccommodationRepository) Assign(ctx context.Context, exec SQLExecutor, id int, from models.AccommodationStatus, p AssignParams) error {
	query := `
		UPDATE accommodation_requests
		SET status = $1, cluster_id = COALESCE($2, cluster_id), hotel_id = $3, room_category_id = $4,
			assigned_by = $5, assigned_at = $6,
			hotel_response_reason = NULL, hotel_responded_by = NULL, hotel_responded_at = NULL,
			updated_at = $6
		WHERE id = $7 AND status = $8`
	return r.execTransition(ctx, exec, query,
		models.AccommodationHotelAssigned, p.ClusterID, p.HotelID, p.RoomCategoryID,
		p.AssignedBy, p.AssignedAt, id, from,
	)
}

func (r *postgresAccommodationRepository) MarkHotelApproved(ctx context.Context, exec SQLExecutor, id int, respondedBy int, at time.Time) error {
	query := `
		UPDATE accommodation_requests
		SET status = $1, hotel_responded_by = $2, hotel_responded_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5`
	return r.execTransition(ctx, exec, query,
		models.AccommodationHotelApproved, respondedBy, at, id, models.AccommodationHotelAssigned,
	)
}

func (r *postgresAccommodationRepository) Confirm(ctx context.Context, exec SQLExecutor, id int, code, qrToken string, at time.Time) error {
	query := `
		UPDATE accommodation_requests
		SET status = $1, confirmation_code = $2, qr_code = $3, updated_at = $4
		WHERE id = $5 AND status = $6 AND confirmation_code IS NULL`
	return r.execTransition(ctx, exec, query,
		models.AccommodationConfirmed, code, qrToken, at, id, models.AccommodationHotelApproved,
	)
}

func (r *postgresAccommodationRepository) Reject(ctx context.Context, exec SQLExecutor, id int, reason string, respondedBy int, at time.Time) error {
	query := `
		UPDATE accommodation_requests
		SET status = $1, hotel_response_reason = $2, hotel_responded_by = $3, hotel_responded_at = $4,
			hotel_id = NULL, room_category_id = NULL, updated_at = $4
		WHERE id = $5 AND status = $6`
	return r.execTransition(ctx, exec, query,
		models.AccommodationHotelRejected, reason, respondedBy, at, id, models.AccommodationHotelAssigned,
	)
}

func (r *postgresAccommodationRepository) Cancel(ctx context.Context, exec SQLExecutor, id int, from models.AccommodationStatus, at time.Time) error {
	query := `
		UPDATE accommodation_requests
		SET status = $1, hotel_id = NULL, room_category_id = NULL, cancelled_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4 AND check_in_status = $5`
	return r.execTransition(ctx, exec, query,
		models.AccommodationCancelled, at, id, from, models.CheckInPending,
	)
}

func (r *postgresAccommodationRepository) CheckIn(ctx context.Context, exec SQLExecutor, id int, at time.Time) error {
	query := `
		UPDATE accommodation_requests
		SET check_in_status = $1, actual_check_in_time = $2, updated_at = $2
		WHERE id = $3 AND status = $4 AND check_in_status = $5`
	return r.execTransition(ctx, exec, query,
		models.CheckInCheckedIn, at, id, models.AccommodationConfirmed, models.CheckInPending,
	)
}

func (r *postgresAccommodationRepository) CheckOut(ctx context.Context, exec SQLExecutor, id int, at time.Time, early bool, newQRToken string) error {
	query := `
		UPDATE accommodation_requests
		SET check_out_status = $1, actual_check_out_time = $2, is_early_checkout = $3, qr_code = $4, updated_at = $2
		WHERE id = $5 AND status = $6 AND check_in_status = $7 AND check_out_status = $8`
	return r.execTransition(ctx, exec, query,
		models.CheckOutCheckedOut, at, early, newQRToken, id,
		models.AccommodationConfirmed, models.CheckInCheckedIn, models.CheckOutPending,
	)
}

func (r *postgresAccommodationRepository) CountByStatus(ctx context.Context) (map[models.AccommodationStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM accommodation_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count accommodation requests: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.AccommodationStatus]int)
	for rows.Next() {
		var status models.AccommodationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan accommodation count row: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accommodation count rows: %w", err)
	}
	return counts, nil
}

func (r *postgresAccommodationRepository) CountCheckedIn(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*) FROM accommodation_requests
		WHERE status = $1 AND check_in_status = $2 AND check_out_status = $3`
	var count int
	err := r.db.QueryRowContext(ctx, query,
		models.AccommodationConfirmed, models.CheckInCheckedIn, models.CheckOutPending,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count checked-in guests: %w", err)
	}
	return count, nil
}

func (r *postgresAccommodationRepository) ListTeamsLackingBookings(ctx context.Context) ([]*models.TeamBookingGap, error) {
	query := `
		SELECT tr.id, tr.team_name,
			COUNT(tm.id) AS requiring,
			COUNT(ar.id) FILTER (WHERE ar.status = $1) AS confirmed
		FROM team_requests tr
		JOIN team_members tm ON tm.team_request_id = tr.id AND tm.requires_accommodation
		LEFT JOIN accommodation_requests ar ON ar.team_member_id = tm.id
		WHERE tr.status = $2
		GROUP BY tr.id, tr.team_name
		HAVING COUNT(ar.id) FILTER (WHERE ar.status = $1) < COUNT(tm.id)
		ORDER BY tr.id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.AccommodationConfirmed, models.TeamRequestApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams lacking bookings: %w", err)
	}
	defer rows.Close()

	gaps := make([]*models.TeamBookingGap, 0)
	for rows.Next() {
		var g models.TeamBookingGap
		if err := rows.Scan(&g.TeamRequestID, &g.TeamName, &g.RequiringMembers, &g.ConfirmedCount); err != nil {
			return nil, fmt.Errorf("failed to scan team booking gap row: %w", err)
		}
		g.MissingCount = g.RequiringMembers - g.ConfirmedCount
		gaps = append(gaps, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team booking gap rows: %w", err)
	}
	return gaps, nil
}
