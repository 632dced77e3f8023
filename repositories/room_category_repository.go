package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/lib/pq"
)

var (
	ErrRoomCategoryNotFound     = errors.New("room category not found")
	ErrRoomCategoryHotelInvalid = errors.New("room category hotel conflict or invalid")
	ErrRoomCategoryInvalid      = errors.New("room category violates capacity constraints")
	ErrNoRoomsAvailable         = errors.New("no rooms available in room category")
	ErrRoomReleaseOverflow      = errors.New("room category already has all rooms available")
)

type RoomCategoryRepository interface {
	Create(ctx context.Context, rc *models.RoomCategory) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RoomCategory, error)
	ListByHotels(ctx context.Context, exec SQLExecutor, hotelIDs []int) ([]*models.RoomCategory, error)
	// Reserve атомарно занимает один номер; ErrNoRoomsAvailable, если свободных нет.
	Reserve(ctx context.Context, exec SQLExecutor, id int) error
	// Release атомарно возвращает номер, не превышая total_rooms.
	Release(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresRoomCategoryRepository struct {
	db *sql.DB
}

func NewPostgresRoomCategoryRepository(db *sql.DB) RoomCategoryRepository {
	return &postgresRoomCategoryRepository{db: db}
}

const roomCategoryColumns = `id, hotel_id, name, price_per_night, total_rooms, available_rooms, created_at`

func scanRoomCategory(row rowScanner) (*models.RoomCategory, error) {
	var rc models.RoomCategory
	err := row.Scan(&rc.ID, &rc.HotelID, &rc.Name, &rc.PricePerNight, &rc.TotalRooms, &rc.AvailableRooms, &rc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *postgresRoomCategoryRepository) Create(ctx context.Context, rc *models.RoomCategory) error {
	query := `
		INSERT INTO room_categories (hotel_id, name, price_per_night, total_rooms, available_rooms)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, rc.HotelID, rc.Name, rc.PricePerNight, rc.TotalRooms, rc.AvailableRooms).
		Scan(&rc.ID, &rc.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch pqErr.Code {
			case pqForeignKeyViolation:
				return ErrRoomCategoryHotelInvalid
			case pqCheckViolation:
				return ErrRoomCategoryInvalid
			}
		}
		return fmt.Errorf("failed to create room category: %w", err)
	}
	return nil
}

func (r *postgresRoomCategoryRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RoomCategory, error) {
	query := `SELECT ` + roomCategoryColumns + ` FROM room_categories WHERE id = $1`
	rc, err := scanRoomCategory(executorOr(exec, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get room category %d: %w", id, err)
	}
	return rc, nil
}

func (r *postgresRoomCategoryRepository) ListByHotels(ctx context.Context, exec SQLExecutor, hotelIDs []int) ([]*models.RoomCategory, error) {
	categories := make([]*models.RoomCategory, 0)
	if len(hotelIDs) == 0 {
		return categories, nil
	}

	ids := make([]int64, len(hotelIDs))
	for i, id := range hotelIDs {
		ids[i] = int64(id)
	}

	query := `SELECT ` + roomCategoryColumns + ` FROM room_categories WHERE hotel_id = ANY($1) ORDER BY hotel_id ASC, id ASC`
	rows, err := executorOr(exec, r.db).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list room categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rc, err := scanRoomCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room category row: %w", err)
		}
		categories = append(categories, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating room category rows: %w", err)
	}
	return categories, nil
}

func (r *postgresRoomCategoryRepository) Reserve(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE room_categories SET available_rooms = available_rooms - 1 WHERE id = $1 AND available_rooms > 0`
	result, err := executorOr(exec, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reserve room in category %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrNoRoomsAvailable)
}

func (r *postgresRoomCategoryRepository) Release(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE room_categories SET available_rooms = available_rooms + 1 WHERE id = $1 AND available_rooms < total_rooms`
	result, err := executorOr(exec, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to release room in category %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoomReleaseOverflow)
}
