package services

import (
	"context"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/Dosada05/tournament-accommodation/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetAccommodationStats(ctx context.Context, actor Actor) (models.AccommodationStats, error)
}

type dashboardService struct {
	accommodationRepo repositories.AccommodationRepository
}

func NewDashboardService(accommodationRepo repositories.AccommodationRepository) DashboardService {
	return &dashboardService{
		accommodationRepo: accommodationRepo,
	}
}

func (s *dashboardService) GetAccommodationStats(ctx context.Context, actor Actor) (models.AccommodationStats, error) {
	if err := actor.require(models.RoleAdmin, models.RoleEventManager); err != nil {
		return models.AccommodationStats{}, err
	}

	var (
		byStatus  map[models.AccommodationStatus]int
		checkedIn int
		gaps      []*models.TeamBookingGap
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byStatus, err = s.accommodationRepo.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		checkedIn, err = s.accommodationRepo.CountCheckedIn(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		gaps, err = s.accommodationRepo.ListTeamsLackingBookings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.AccommodationStats{}, translateRepoError(err)
	}

	return models.AccommodationStats{
		Pending:              byStatus[models.AccommodationPending],
		AwaitingHotel:        byStatus[models.AccommodationHotelAssigned],
		Rejected:             byStatus[models.AccommodationHotelRejected],
		Confirmed:            byStatus[models.AccommodationConfirmed],
		CheckedIn:            checkedIn,
		Cancelled:            byStatus[models.AccommodationCancelled],
		TeamsLackingBookings: len(gaps),
	}, nil
}
