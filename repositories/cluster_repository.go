package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-accommodation/models"
)

var (
	ErrClusterNotFound     = errors.New("hotel cluster not found")
	ErrClusterNameConflict = errors.New("hotel cluster name conflict")
)

type ClusterRepository interface {
	Create(ctx context.Context, cluster *models.HotelCluster) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.HotelCluster, error)
	List(ctx context.Context, tournamentID *int) ([]*models.HotelCluster, error)
	// Delete отвязывает отели кластера и удаляет сам кластер.
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresClusterRepository struct {
	db *sql.DB
}

func NewPostgresClusterRepository(db *sql.DB) ClusterRepository {
	return &postgresClusterRepository{db: db}
}

func (r *postgresClusterRepository) Create(ctx context.Context, c *models.HotelCluster) error {
	query := `
		INSERT INTO hotel_clusters (name, tournament_id, venue_name, max_radius_km)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, c.Name, c.TournamentID, c.VenueName, c.MaxRadiusKm).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation {
			return ErrClusterNameConflict
		}
		return fmt.Errorf("failed to create hotel cluster: %w", err)
	}
	return nil
}

func scanCluster(row rowScanner) (*models.HotelCluster, error) {
	var c models.HotelCluster
	if err := row.Scan(&c.ID, &c.Name, &c.TournamentID, &c.VenueName, &c.MaxRadiusKm, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresClusterRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.HotelCluster, error) {
	query := `SELECT id, name, tournament_id, venue_name, max_radius_km, created_at FROM hotel_clusters WHERE id = $1`
	c, err := scanCluster(executorOr(exec, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClusterNotFound
		}
		return nil, fmt.Errorf("failed to get hotel cluster %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresClusterRepository) List(ctx context.Context, tournamentID *int) ([]*models.HotelCluster, error) {
	query := `SELECT id, name, tournament_id, venue_name, max_radius_km, created_at FROM hotel_clusters`
	args := []interface{}{}
	if tournamentID != nil {
		query += ` WHERE tournament_id = $1`
		args = append(args, *tournamentID)
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotel clusters: %w", err)
	}
	defer rows.Close()

	clusters := make([]*models.HotelCluster, 0)
	for rows.Next() {
		c, err := scanCluster(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hotel cluster row: %w", err)
		}
		clusters = append(clusters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hotel cluster rows: %w", err)
	}
	return clusters, nil
}

func (r *postgresClusterRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := executorOr(exec, r.db)

	if _, err := executor.ExecContext(ctx, `UPDATE hotels SET cluster_id = NULL WHERE cluster_id = $1`, id); err != nil {
		return fmt.Errorf("failed to detach hotels from cluster %d: %w", id, err)
	}

	result, err := executor.ExecContext(ctx, `DELETE FROM hotel_clusters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete hotel cluster %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrClusterNotFound)
}
