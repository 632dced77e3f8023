package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/Dosada05/tournament-accommodation/repositories"
)

type CreateClusterInput struct {
	Name         string   `json:"name"`
	TournamentID *int     `json:"tournament_id,omitempty"`
	VenueName    *string  `json:"venue_name,omitempty"`
	MaxRadiusKm  *float64 `json:"max_radius_km,omitempty"`
}

type CreateHotelInput struct {
	Name                string             `json:"name"`
	Address             *string            `json:"address,omitempty"`
	ContactInfo         models.ContactInfo `json:"contact_info"`
	ClusterID           *int               `json:"cluster_id,omitempty"`
	ManagerID           *int               `json:"manager_id,omitempty"`
	AutoApproveBookings bool               `json:"auto_approve_bookings"`
}

type CreateRoomCategoryInput struct {
	Name          string  `json:"name"`
	PricePerNight float64 `json:"price_per_night"`
	TotalRooms    int     `json:"total_rooms"`
}

// HotelService управляет кластерами, отелями и категориями номеров.
type HotelService interface {
	CreateCluster(ctx context.Context, actor Actor, input CreateClusterInput) (*models.HotelCluster, error)
	ListClusters(ctx context.Context, tournamentID *int) ([]*models.HotelCluster, error)
	DeleteCluster(ctx context.Context, actor Actor, clusterID int) error

	CreateHotel(ctx context.Context, actor Actor, input CreateHotelInput) (*models.Hotel, error)
	GetHotel(ctx context.Context, hotelID int) (*models.Hotel, error)
	SetHotelApproval(ctx context.Context, actor Actor, hotelID int, approval models.HotelApproval) (*models.Hotel, error)
	AddRoomCategory(ctx context.Context, actor Actor, hotelID int, input CreateRoomCategoryInput) (*models.RoomCategory, error)
}

type hotelService struct {
	tx       repositories.Transactor
	clusters repositories.ClusterRepository
	hotels   repositories.HotelRepository
	rooms    repositories.RoomCategoryRepository
	logger   *slog.Logger
}

func NewHotelService(
	tx repositories.Transactor,
	clusters repositories.ClusterRepository,
	hotels repositories.HotelRepository,
	rooms repositories.RoomCategoryRepository,
	logger *slog.Logger,
) HotelService {
	if logger == nil {
		logger = slog.Default()
	}
	return &hotelService{tx: tx, clusters: clusters, hotels: hotels, rooms: rooms, logger: logger}
}

func (s *hotelService) CreateCluster(ctx context.Context, actor Actor, input CreateClusterInput) (*models.HotelCluster, error) {
	if err := actor.require(models.RoleAdmin, models.RoleEventManager); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: cluster name is required", ErrValidationFailed)
	}
	if input.MaxRadiusKm != nil && *input.MaxRadiusKm <= 0 {
		return nil, fmt.Errorf("%w: max_radius_km must be positive", ErrValidationFailed)
	}

	cluster := &models.HotelCluster{
		Name:         name,
		TournamentID: input.TournamentID,
		VenueName:    trimmedOrNil(input.VenueName),
		MaxRadiusKm:  input.MaxRadiusKm,
	}
	if err := s.clusters.Create(ctx, cluster); err != nil {
		return nil, translateRepoError(err)
	}
	return cluster, nil
}

func (s *hotelService) ListClusters(ctx context.Context, tournamentID *int) ([]*models.HotelCluster, error) {
	clusters, err := s.clusters.List(ctx, tournamentID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return clusters, nil
}

// DeleteCluster удаляет кластер; его отели остаются, но без кластера.
func (s *hotelService) DeleteCluster(ctx context.Context, actor Actor, clusterID int) error {
	if err := actor.require(models.RoleAdmin, models.RoleEventManager); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.clusters.Delete(ctx, exec, clusterID)
	})
	if err != nil {
		return translateRepoError(err)
	}
	s.logger.InfoContext(ctx, "hotel cluster deleted", slog.Int("cluster_id", clusterID), slog.Int("actor_id", actor.UserID))
	return nil
}

func (s *hotelService) CreateHotel(ctx context.Context, actor Actor, input CreateHotelInput) (*models.Hotel, error) {
	if err := actor.require(models.RoleAdmin, models.RoleHotelManager); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: hotel name is required", ErrValidationFailed)
	}

	managerID := actor.UserID
	if input.ManagerID != nil {
		if actor.Role != models.RoleAdmin && *input.ManagerID != actor.UserID {
			return nil, fmt.Errorf("%w: only an admin can assign another hotel manager", ErrUnauthorized)
		}
		managerID = *input.ManagerID
	}

	hotel := &models.Hotel{
		Name:                name,
		Address:             trimmedOrNil(input.Address),
		ContactInfo:         input.ContactInfo,
		ClusterID:           input.ClusterID,
		ManagerID:           managerID,
		Approval:            models.HotelApprovalPending,
		AutoApproveBookings: input.AutoApproveBookings,
	}
	if err := s.hotels.Create(ctx, hotel); err != nil {
		return nil, translateRepoError(err)
	}
	return hotel, nil
}

func (s *hotelService) GetHotel(ctx context.Context, hotelID int) (*models.Hotel, error) {
	hotel, err := s.hotels.GetByID(ctx, nil, hotelID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	rooms, err := s.rooms.ListByHotels(ctx, nil, []int{hotel.ID})
	if err != nil {
		return nil, translateRepoError(err)
	}
	hotel.RoomCategories = make([]models.RoomCategory, 0, len(rooms))
	for _, rc := range rooms {
		hotel.RoomCategories = append(hotel.RoomCategories, *rc)
	}
	return hotel, nil
}

func (s *hotelService) SetHotelApproval(ctx context.Context, actor Actor, hotelID int, approval models.HotelApproval) (*models.Hotel, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	if !approval.Valid() {
		return nil, fmt.Errorf("%w: unknown approval %q", ErrValidationFailed, approval)
	}
	if err := s.hotels.UpdateApproval(ctx, hotelID, approval); err != nil {
		return nil, translateRepoError(err)
	}
	return s.GetHotel(ctx, hotelID)
}

func (s *hotelService) AddRoomCategory(ctx context.Context, actor Actor, hotelID int, input CreateRoomCategoryInput) (*models.RoomCategory, error) {
	if err := actor.require(models.RoleAdmin, models.RoleHotelManager); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: room category name is required", ErrValidationFailed)
	}
	if input.TotalRooms <= 0 {
		return nil, fmt.Errorf("%w: total_rooms must be positive", ErrValidationFailed)
	}
	if input.PricePerNight < 0 {
		return nil, fmt.Errorf("%w: price_per_night cannot be negative", ErrValidationFailed)
	}

	hotel, err := s.hotels.GetByID(ctx, nil, hotelID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if actor.Role == models.RoleHotelManager && hotel.ManagerID != actor.UserID {
		return nil, ErrUnauthorized
	}

	rc := &models.RoomCategory{
		HotelID:        hotel.ID,
		Name:           name,
		PricePerNight:  input.PricePerNight,
		TotalRooms:     input.TotalRooms,
		AvailableRooms: input.TotalRooms,
	}
	if err := s.rooms.Create(ctx, rc); err != nil {
		return nil, translateRepoError(err)
	}
	return rc, nil
}
