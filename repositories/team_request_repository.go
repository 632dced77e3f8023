package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-accommodation/models"
)

var (
	ErrTeamRequestNotFound       = errors.New("team request not found")
	ErrTeamRequestStateConflict  = errors.New("team request is not in the expected status")
	ErrTeamMemberNotFound        = errors.New("team member not found")
	ErrTeamRequestClusterInvalid = errors.New("team request preferred cluster conflict or invalid")
)

type TeamRequestRepository interface {
	// Create сохраняет заявку вместе с участниками; вызывать внутри транзакции.
	Create(ctx context.Context, exec SQLExecutor, tr *models.TeamRequest) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.TeamRequest, error)
	List(ctx context.Context, status *models.TeamRequestStatus) ([]*models.TeamRequest, error)
	ListMembers(ctx context.Context, exec SQLExecutor, teamRequestID int) ([]*models.TeamMember, error)
	GetMember(ctx context.Context, exec SQLExecutor, memberID int) (*models.TeamMember, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.TeamRequestStatus, reviewedBy int, at time.Time) error
}

type postgresTeamRequestRepository struct {
	db *sql.DB
}

func NewPostgresTeamRequestRepository(db *sql.DB) TeamRequestRepository {
	return &postgresTeamRequestRepository{db: db}
}

const teamRequestColumns = `id, team_name, sport, tournament_id, manager_id, preferred_cluster_id,
	check_in_date, check_out_date, status, reviewed_by, reviewed_at, created_at`

const teamMemberColumns = `id, team_request_id, user_id, full_name, contact, requires_accommodation,
	accommodation_preferences, created_at`

func scanTeamRequest(row rowScanner) (*models.TeamRequest, error) {
	var tr models.TeamRequest
	err := row.Scan(
		&tr.ID, &tr.TeamName, &tr.Sport, &tr.TournamentID, &tr.ManagerID, &tr.PreferredClusterID,
		&tr.CheckInDate, &tr.CheckOutDate, &tr.Status, &tr.ReviewedBy, &tr.ReviewedAt, &tr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

func scanTeamMember(row rowScanner) (*models.TeamMember, error) {
	var m models.TeamMember
	err := row.Scan(
		&m.ID, &m.TeamRequestID, &m.UserID, &m.FullName, &m.Contact, &m.RequiresAccommodation,
		&m.AccommodationPreferences, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresTeamRequestRepository) Create(ctx context.Context, exec SQLExecutor, tr *models.TeamRequest) error {
	executor := executorOr(exec, r.db)

	query := `
		INSERT INTO team_requests (team_name, sport, tournament_id, manager_id, preferred_cluster_id, check_in_date, check_out_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		tr.TeamName, tr.Sport, tr.TournamentID, tr.ManagerID, tr.PreferredClusterID,
		tr.CheckInDate, tr.CheckOutDate, tr.Status,
	).Scan(&tr.ID, &tr.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation && pqErr.Constraint == "team_requests_preferred_cluster_id_fkey" {
			return ErrTeamRequestClusterInvalid
		}
		return fmt.Errorf("failed to create team request: %w", err)
	}

	memberQuery := `
		INSERT INTO team_members (team_request_id, user_id, full_name, contact, requires_accommodation, accommodation_preferences)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	for i := range tr.Members {
		m := &tr.Members[i]
		m.TeamRequestID = tr.ID
		err := executor.QueryRowContext(ctx, memberQuery,
			m.TeamRequestID, m.UserID, m.FullName, m.Contact, m.RequiresAccommodation, m.AccommodationPreferences,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create team member %q: %w", m.FullName, err)
		}
	}
	return nil
}

func (r *postgresTeamRequestRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.TeamRequest, error) {
	query := `SELECT ` + teamRequestColumns + ` FROM team_requests WHERE id = $1`
	tr, err := scanTeamRequest(executorOr(exec, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamRequestNotFound
		}
		return nil, fmt.Errorf("failed to get team request %d: %w", id, err)
	}
	return tr, nil
}

func (r *postgresTeamRequestRepository) List(ctx context.Context, status *models.TeamRequestStatus) ([]*models.TeamRequest, error) {
	query := `SELECT ` + teamRequestColumns + ` FROM team_requests`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list team requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.TeamRequest, 0)
	for rows.Next() {
		tr, err := scanTeamRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team request row: %w", err)
		}
		requests = append(requests, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team request rows: %w", err)
	}
	return requests, nil
}

func (r *postgresTeamRequestRepository) ListMembers(ctx context.Context, exec SQLExecutor, teamRequestID int) ([]*models.TeamMember, error) {
	query := `SELECT ` + teamMemberColumns + ` FROM team_members WHERE team_request_id = $1 ORDER BY id ASC`
	rows, err := executorOr(exec, r.db).QueryContext(ctx, query, teamRequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	members := make([]*models.TeamMember, 0)
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team member rows: %w", err)
	}
	return members, nil
}

func (r *postgresTeamRequestRepository) GetMember(ctx context.Context, exec SQLExecutor, memberID int) (*models.TeamMember, error) {
	query := `SELECT ` + teamMemberColumns + ` FROM team_members WHERE id = $1`
	m, err := scanTeamMember(executorOr(exec, r.db).QueryRowContext(ctx, query, memberID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamMemberNotFound
		}
		return nil, fmt.Errorf("failed to get team member %d: %w", memberID, err)
	}
	return m, nil
}

func (r *postgresTeamRequestRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.TeamRequestStatus, reviewedBy int, at time.Time) error {
	query := `
		UPDATE team_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3
		WHERE id = $4 AND status = $5`

	result, err := executorOr(exec, r.db).ExecContext(ctx, query, to, reviewedBy, at, id, from)
	if err != nil {
		return fmt.Errorf("failed to update team request status: %w", err)
	}
	return checkAffectedRows(result, ErrTeamRequestStateConflict)
}
