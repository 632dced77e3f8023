package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-accommodation/models"
)

var (
	ErrHotelNotFound       = errors.New("hotel not found")
	ErrHotelClusterInvalid = errors.New("hotel cluster conflict or invalid")
	ErrHotelManagerInvalid = errors.New("hotel manager conflict or invalid")
)

type HotelRepository interface {
	Create(ctx context.Context, hotel *models.Hotel) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Hotel, error)
	ListByCluster(ctx context.Context, exec SQLExecutor, clusterID int, approvedOnly bool) ([]*models.Hotel, error)
	ListByManager(ctx context.Context, managerID int) ([]*models.Hotel, error)
	UpdateApproval(ctx context.Context, id int, approval models.HotelApproval) error
}

type postgresHotelRepository struct {
	db *sql.DB
}

func NewPostgresHotelRepository(db *sql.DB) HotelRepository {
	return &postgresHotelRepository{db: db}
}

const hotelColumns = `id, name, address, contact_info, cluster_id, manager_id, approval, auto_approve_bookings, created_at`

func scanHotel(row rowScanner) (*models.Hotel, error) {
	var h models.Hotel
	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Address,
		&h.ContactInfo,
		&h.ClusterID,
		&h.ManagerID,
		&h.Approval,
		&h.AutoApproveBookings,
		&h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *postgresHotelRepository) Create(ctx context.Context, h *models.Hotel) error {
	query := `
		INSERT INTO hotels (name, address, contact_info, cluster_id, manager_id, approval, auto_approve_bookings)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		h.Name, h.Address, h.ContactInfo, h.ClusterID, h.ManagerID, h.Approval, h.AutoApproveBookings,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
			switch pqErr.Constraint {
			case "hotels_cluster_id_fkey":
				return ErrHotelClusterInvalid
			case "hotels_manager_id_fkey":
				return ErrHotelManagerInvalid
			}
		}
		return fmt.Errorf("failed to create hotel: %w", err)
	}
	return nil
}

func (r *postgresHotelRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1`
	h, err := scanHotel(executorOr(exec, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHotelNotFound
		}
		return nil, fmt.Errorf("failed to get hotel %d: %w", id, err)
	}
	return h, nil
}

func (r *postgresHotelRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Hotel, error) {
	rows, err := executorOr(exec, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	defer rows.Close()

	hotels := make([]*models.Hotel, 0)
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hotel row: %w", err)
		}
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hotel rows: %w", err)
	}
	return hotels, nil
}

func (r *postgresHotelRepository) ListByCluster(ctx context.Context, exec SQLExecutor, clusterID int, approvedOnly bool) ([]*models.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE cluster_id = $1`
	args := []interface{}{clusterID}
	if approvedOnly {
		query += ` AND approval = $2`
		args = append(args, models.HotelApprovalApproved)
	}
	query += ` ORDER BY id ASC`
	return r.list(ctx, exec, query, args...)
}

func (r *postgresHotelRepository) ListByManager(ctx context.Context, managerID int) ([]*models.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE manager_id = $1 ORDER BY id ASC`
	return r.list(ctx, nil, query, managerID)
}

func (r *postgresHotelRepository) UpdateApproval(ctx context.Context, id int, approval models.HotelApproval) error {
	result, err := r.db.ExecContext(ctx, `UPDATE hotels SET approval = $1 WHERE id = $2`, approval, id)
	if err != nil {
		return fmt.Errorf("failed to update hotel approval: %w", err)
	}
	return checkAffectedRows(result, ErrHotelNotFound)
}
