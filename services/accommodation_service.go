package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/Dosada05/tournament-accommodation/repositories"
	"github.com/jonboulle/clockwork"
)

const (
	// Попытки подобрать свободный код внутри одной транзакции.
	codeAttemptsPerTx = 5
	// Повтор всей транзакции, если БД всё же отвергла код по уникальности.
	confirmTxAttempts = 3
)

type AssignHotelInput struct {
	HotelID        *int `json:"hotel_id,omitempty"`
	RoomCategoryID *int `json:"room_category_id,omitempty"`
	ClusterID      *int `json:"cluster_id,omitempty"`
	Automatic      bool `json:"automatic"`
}

func (in AssignHotelInput) validate() error {
	if in.Automatic {
		if in.ClusterID == nil || *in.ClusterID <= 0 {
			return fmt.Errorf("%w: cluster_id is required for automatic assignment", ErrValidationFailed)
		}
		if in.HotelID != nil || in.RoomCategoryID != nil {
			return fmt.Errorf("%w: hotel_id and room_category_id must be empty for automatic assignment", ErrValidationFailed)
		}
		return nil
	}
	if in.HotelID == nil || in.RoomCategoryID == nil || *in.HotelID <= 0 || *in.RoomCategoryID <= 0 {
		return fmt.Errorf("%w: hotel_id and room_category_id are required for manual assignment", ErrValidationFailed)
	}
	return nil
}

type RespondInput struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason,omitempty"`
}

type CheckOutInput struct {
	IsEarlyCheckout bool `json:"is_early_checkout"`
}

// BulkResult - результат массового заселения/выселения для одного участника.
type BulkResult struct {
	AccommodationID int                          `json:"accommodation_id"`
	TeamMemberID    int                          `json:"team_member_id"`
	Success         bool                         `json:"success"`
	Error           string                       `json:"error,omitempty"`
	Accommodation   *models.AccommodationRequest `json:"accommodation,omitempty"`
}

type AccommodationService interface {
	CreateAccommodationRequests(ctx context.Context, actor Actor, teamRequestID int) ([]*models.AccommodationRequest, error)
	AssignHotel(ctx context.Context, actor Actor, accommodationID int, input AssignHotelInput) (*models.AccommodationRequest, error)
	RespondToAssignment(ctx context.Context, actor Actor, accommodationID int, input RespondInput) (*models.AccommodationRequest, error)
	CancelAccommodation(ctx context.Context, actor Actor, accommodationID int) (*models.AccommodationRequest, error)
	CheckIn(ctx context.Context, actor Actor, accommodationID int) (*models.AccommodationRequest, error)
	CheckOut(ctx context.Context, actor Actor, accommodationID int, input CheckOutInput) (*models.AccommodationRequest, error)
	BulkCheckIn(ctx context.Context, actor Actor, teamRequestID int) ([]BulkResult, error)
	BulkCheckOut(ctx context.Context, actor Actor, teamRequestID int, input CheckOutInput) ([]BulkResult, error)

	GetAccommodation(ctx context.Context, actor Actor, accommodationID int) (*models.AccommodationRequest, error)
	ListByTeamRequest(ctx context.Context, actor Actor, teamRequestID int) ([]*models.AccommodationRequest, error)
	ListPendingForHotelManager(ctx context.Context, actor Actor) ([]*models.AccommodationRequest, error)
	ListRejected(ctx context.Context, actor Actor) ([]*models.AccommodationRequest, error)
	ListTeamsLackingBookings(ctx context.Context, actor Actor) ([]*models.TeamBookingGap, error)
	VerifyQRCode(ctx context.Context, actor Actor, token string) (*models.AccommodationRequest, error)
}

// AccommodationServiceDeps - зависимости сервиса. Events, Mailer и Vouchers необязательны.
type AccommodationServiceDeps struct {
	Tx             repositories.Transactor
	Accommodations repositories.AccommodationRepository
	Rooms          repositories.RoomCategoryRepository
	Hotels         repositories.HotelRepository
	Clusters       repositories.ClusterRepository
	TeamRequests   repositories.TeamRequestRepository
	Codes          CodeIssuer
	Clock          clockwork.Clock
	Events         EventPublisher
	Mailer         Mailer
	Vouchers       *VoucherStore
	Logger         *slog.Logger
}

type accommodationService struct {
	tx             repositories.Transactor
	accommodations repositories.AccommodationRepository
	rooms          repositories.RoomCategoryRepository
	hotels         repositories.HotelRepository
	clusters       repositories.ClusterRepository
	teamRequests   repositories.TeamRequestRepository
	codes          CodeIssuer
	clock          clockwork.Clock
	events         EventPublisher
	mailer         Mailer
	vouchers       *VoucherStore
	logger         *slog.Logger
}

func NewAccommodationService(deps AccommodationServiceDeps) AccommodationService {
	s := &accommodationService{
		tx:             deps.Tx,
		accommodations: deps.Accommodations,
		rooms:          deps.Rooms,
		hotels:         deps.Hotels,
		clusters:       deps.Clusters,
		teamRequests:   deps.TeamRequests,
		codes:          deps.Codes,
		clock:          deps.Clock,
		events:         deps.Events,
		mailer:         deps.Mailer,
		vouchers:       deps.Vouchers,
		logger:         deps.Logger,
	}
	if s.codes == nil {
		s.codes = NewRandomCodeIssuer()
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *accommodationService) now() time.Time {
	return s.clock.Now().UTC()
}

// --- Создание ---

func (s *accommodationService) CreateAccommodationRequests(ctx context.Context, actor Actor, teamRequestID int) ([]*models.AccommodationRequest, error) {
	if err := actor.require(models.RoleAdmin, models.RoleEventManager); err != nil {
		return nil, err
	}

	created := make([]*models.AccommodationRequest, 0)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		created = created[:0]

		tr, err := s.teamRequests.GetByID(ctx, exec, teamRequestID)
		if err != nil {
			return err
		}
		if tr.Status != models.TeamRequestApproved {
			return fmt.Errorf("%w: team request %d is %s, not approved", ErrInvalidStateTransition, tr.ID, tr.Status)
		}

		members, err := s.teamRequests.ListMembers(ctx, exec, tr.ID)
		if err != nil {
			return err
		}

		for _, m := range members {
			if !m.RequiresAccommodation {
				continue
			}
			a := &models.AccommodationRequest{
				TeamRequestID:            tr.ID,
				TeamMemberID:             m.ID,
				ClusterID:                tr.PreferredClusterID,
				CheckInDate:              tr.CheckInDate,
				CheckOutDate:             tr.CheckOutDate,
				AccommodationPreferences: m.AccommodationPreferences,
				Status:                   models.AccommodationPending,
				CheckInStatus:            models.CheckInPending,
				CheckOutStatus:           models.CheckOutPending,
			}
			if err := s.accommodations.Create(ctx, exec, a); err != nil {
				if errors.Is(err, repositories.ErrAccommodationExists) {
					continue
				}
				return fmt.Errorf("member %d: %w", m.ID, err)
			}
			created = append(created, a)
		}
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	for _, a := range created {
		s.publish(ctx, models.EventAccommodationCreated, a, actor.UserID)
	}
	return created, nil
}

// --- Назначение отеля ---

func (s *accommodationService) AssignHotel(ctx context.Context, actor Actor, accommodationID int, input AssignHotelInput) (*models.AccommodationRequest, error) {
	if err := actor.require(models.RoleAdmin, models.RoleEventManager); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var result *models.AccommodationRequest
	var autoApproved bool
	err := s.withConfirmRetry(ctx, accommodationID, func() error {
		return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			now := s.now()
			autoApproved = false

			a, err := s.accommodations.GetByID(ctx, exec, accommodationID)
			if err != nil {
				return err
			}
			if !a.Status.Assignable() {
				return fmt.Errorf("%w: cannot assign a hotel to a request in status %s", ErrInvalidStateTransition, a.Status)
			}

			var hotel *models.Hotel
			var room *models.RoomCategory
			if input.Automatic {
				hotel, room, err = s.reserveFromCluster(ctx, exec, *input.ClusterID)
			} else {
				hotel, room, err = s.reserveManual(ctx, exec, *input.HotelID, *input.RoomCategoryID)
			}
			if err != nil {
				return err
			}

			clusterID := hotel.ClusterID
			if input.Automatic {
				clusterID = input.ClusterID
			}
			err = s.accommodations.Assign(ctx, exec, a.ID, a.Status, repositories.AssignParams{
				ClusterID:      clusterID,
				HotelID:        hotel.ID,
				RoomCategoryID: room.ID,
				AssignedBy:     actor.UserID,
				AssignedAt:     now,
			})
			if err != nil {
				return err
			}

			if hotel.AutoApproveBookings {
				if err := s.approve(ctx, exec, a.ID, hotel.ManagerID, now); err != nil {
					return err
				}
				autoApproved = true
			}

			result, err = s.accommodations.GetByID(ctx, exec, a.ID)
			return err
		})
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.publish(ctx, models.EventAccommodationAssigned, result, actor.UserID)
	if autoApproved {
		s.afterConfirmed(ctx, result, actor.UserID)
	}
	return result, nil
}

func (s *accommodationService) reserveManual(ctx context.Context, exec repositories.SQLExecutor, hotelID, roomCategoryID int) (*models.Hotel, *models.RoomCategory, error) {
	hotel, err := s.hotels.GetByID(ctx, exec, hotelID)
	if err != nil {
		return nil, nil, err
	}
	if !hotel.IsApproved() {
		return nil, nil, fmt.Errorf("%w: hotel %d is %s", ErrInvalidAssignment, hotel.ID, hotel.Approval)
	}

	room, err := s.rooms.GetByID(ctx, exec, roomCategoryID)
	if err != nil {
		return nil, nil, err
	}
	if room.HotelID != hotel.ID {
		return nil, nil, fmt.Errorf("%w: room category %d does not belong to hotel %d", ErrInvalidAssignment, room.ID, hotel.ID)
	}
	if room.AvailableRooms <= 0 {
		return nil, nil, fmt.Errorf("%w: room category %d is fully booked", ErrNoAvailability, room.ID)
	}

	if err := s.rooms.Reserve(ctx, exec, room.ID); err != nil {
		return nil, nil, err
	}
	return hotel, room, nil
}

// reserveFromCluster резервирует первый свободный номер по рейтингу кандидатов;
// кандидат, занятый параллельной транзакцией, пропускается.
func (s *accommodationService) reserveFromCluster(ctx context.Context, exec repositories.SQLExecutor, clusterID int) (*models.Hotel, *models.RoomCategory, error) {
	if _, err := s.clusters.GetByID(ctx, exec, clusterID); err != nil {
		return nil, nil, err
	}

	hotels, err := s.hotels.ListByCluster(ctx, exec, clusterID, true)
	if err != nil {
		return nil, nil, err
	}
	hotelIDs := make([]int, 0, len(hotels))
	for _, h := range hotels {
		hotelIDs = append(hotelIDs, h.ID)
	}

	rooms, err := s.rooms.ListByHotels(ctx, exec, hotelIDs)
	if err != nil {
		return nil, nil, err
	}

	for _, c := range rankRoomCandidates(hotels, rooms) {
		err := s.rooms.Reserve(ctx, exec, c.Room.ID)
		if err == nil {
			return c.Hotel, c.Room, nil
		}
		if !errors.Is(err, repositories.ErrNoRoomsAvailable) {
			return nil, nil, err
		}
	}
	return nil, nil, fmt.Errorf("%w: cluster %d has no approved hotel with free rooms", ErrNoAvailability, clusterID)
}

// --- Ответ отеля ---

func (s *accommodationService) RespondToAssignment(ctx context.Context, actor Actor, accommodationID int, input RespondInput) (*models.AccommodationRequest, error) {
	if err := actor.require(models.RoleHotelManager); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(input.Reason)
	if !input.Approve && reason == "" {
		return nil, fmt.Errorf("%w: a reason is required to reject an assignment", ErrValidationFailed)
	}

	var (
		result        *models.AccommodationRequest
		assignedHotel *int
	)
	err := s.withConfirmRetry(ctx, accommodationID, func() error {
		return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			now := s.now()

			a, err := s.accommodations.GetByID(ctx, exec, accommodationID)
			if err != nil {
				return err
			}
			if a.Status != models.AccommodationHotelAssigned || !a.HoldsRoom() {
				return fmt.Errorf("%w: request is %s, expected %s", ErrInvalidStateTransition, a.Status, models.AccommodationHotelAssigned)
			}
			assignedHotel = a.HotelID

			hotel, err := s.hotels.GetByID(ctx, exec, *a.HotelID)
			if err != nil {
				return err
			}
			if hotel.ManagerID != actor.UserID {
				return fmt.Errorf("%w: hotel %d is managed by another user", ErrUnauthorized, hotel.ID)
			}

			if input.Approve {
				if err := s.approve(ctx, exec, a.ID, actor.UserID, now); err != nil {
					return err
				}
			} else {
				if err := s.accommodations.Reject(ctx, exec, a.ID, reason, actor.UserID, now); err != nil {
					return err
				}
				if err := s.releaseRoom(ctx, exec, *a.RoomCategoryID); err != nil {
					return err
				}
			}

			result, err = s.accommodations.GetByID(ctx, exec, a.ID)
			return err
		})
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	if input.Approve {
		s.afterConfirmed(ctx, result, actor.UserID)
	} else {
		s.publishForHotel(ctx, models.EventAccommodationRejected, result, assignedHotel, actor.UserID)
	}
	return result, nil
}

// approve переводит заявку hotel_assigned -> hotel_approved -> confirmed
// и выдаёт код подтверждения и первый QR-токен.
func (s *accommodationService) approve(ctx context.Context, exec repositories.SQLExecutor, accommodationID, respondedBy int, now time.Time) error {
	if err := s.accommodations.MarkHotelApproved(ctx, exec, accommodationID, respondedBy, now); err != nil {
		return err
	}

	for attempt := 0; attempt < codeAttemptsPerTx; attempt++ {
		code, err := s.codes.NewConfirmationCode()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCodeGenerationFailed, err)
		}
		exists, err := s.accommodations.ConfirmationCodeExists(ctx, exec, code)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		return s.accommodations.Confirm(ctx, exec, accommodationID, code, s.codes.NewQRToken(), now)
	}
	return fmt.Errorf("%w after %d attempts", ErrCodeGenerationFailed, codeAttemptsPerTx)
}

func (s *accommodationService) withConfirmRetry(ctx context.Context, accommodationID int, fn func() error) error {
	var err error
	for attempt := 1; attempt <= confirmTxAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, repositories.ErrConfirmationCodeConflict) {
			return err
		}
		s.logger.Warn("confirmation code collided on write, retrying",
			slog.Int("accommodation_id", accommodationID),
			slog.Int("attempt", attempt),
		)
	}
	return fmt.Errorf("%w: %w", ErrCodeGenerationFailed, err)
}

func (s *accommodationService) releaseRoom(ctx context.Context, exec repositories.SQLExecutor, roomCategoryID int) error {
	err := s.rooms.Release(ctx, exec, roomCategoryID)
	if errors.Is(err, repositories.ErrRoomReleaseOverflow) {
		s.logger.Warn("room category already fully available on release",
			slog.Int("room_category_id", roomCategoryID),
		)
		return nil
	}
	return err
}

// --- Отмена ---

func (s *accommodationService) CancelAccommodation(ctx context.Context, actor Actor, accommodationID int) (*models.AccommodationRequest, error) {
	if err := actor.require(models.RoleAdmin, models.RoleEventManager); err != nil {
		return nil, err
	}

	var before, result *models.AccommodationRequest
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		a, err := s.accommodations.GetByID(ctx, exec, accommodationID)
		if err != nil {
			return err
		}
		before = a

		switch a.Status {
		case models.AccommodationPending, models.AccommodationHotelAssigned, models.AccommodationHotelRejected:
		case models.AccommodationConfirmed:
			if a.CheckInStatus != models.CheckInPending {
				return fmt.Errorf("%w: guest has already checked in", ErrInvalidStateTransition)
			}
		default:
			return fmt.Errorf("%w: cannot cancel a request in status %s", ErrInvalidStateTransition, a.Status)
		}

		if err := s.accommodations.Cancel(ctx, exec, a.ID, a.Status, s.now()); err != nil {
			return err
		}
		if a.HoldsRoom() {
			if err := s.releaseRoom(ctx, exec, *a.RoomCategoryID); err != nil {
				return err
			}
		}

		result, err = s.accommodations.GetByID(ctx, exec, a.ID)
		return err
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	if before.QRCode != nil {
		if err := s.vouchers.Revoke(ctx, before.ID, *before.QRCode); err != nil {
			s.logger.Error("failed to revoke voucher", slog.Int("accommodation_id", before.ID), slog.Any("error", err))
		}
	}
	s.publishForHotel(ctx, models.EventAccommodationCancelled, result, before.HotelID, actor.UserID)
	return result, nil
}

// --- Заселение / выселение ---

func (s *accommodationService) CheckIn(ctx context.Context, actor Actor, accommodationID int) (*models.AccommodationRequest, error) {
	var result *models.AccommodationRequest
	var changed bool
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		changed = false

		a, err := s.accommodations.GetByID(ctx, exec, accommodationID)
		if err != nil {
			return err
		}
		if err := s.authorizeGuestAction(ctx, exec, actor, a); err != nil {
			return err
		}
		if a.Status != models.AccommodationConfirmed {
			return fmt.Errorf("%w: request is %s, check-in requires a confirmed booking", ErrInvalidStateTransition, a.Status)
		}
		if a.CheckInStatus == models.CheckInCheckedIn {
			result = a
			return nil
		}

		err = s.accommodations.CheckIn(ctx, exec, a.ID, s.now())
		if err != nil && !errors.Is(err, repositories.ErrAccommodationStateConflict) {
			return err
		}
		changed = err == nil

		result, err = s.accommodations.GetByID(ctx, exec, a.ID)
		if err != nil {
			return err
		}
		if result.CheckInStatus != models.CheckInCheckedIn {
			return fmt.Errorf("%w: request changed during check-in", ErrInvalidStateTransition)
		}
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	if changed {
		s.publish(ctx, models.EventGuestCheckedIn, result, actor.UserID)
	}
	return result, nil
}

func (s *accommodationService) CheckOut(ctx context.Context, actor Actor, accommodationID int, input CheckOutInput) (*models.AccommodationRequest, error) {
	var result *models.AccommodationRequest
	var previousQR string
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		a, err := s.accommodations.GetByID(ctx, exec, accommodationID)
		if err != nil {
			return err
		}
		if err := s.authorizeGuestAction(ctx, exec, actor, a); err != nil {
			return err
		}
		if a.Status != models.AccommodationConfirmed {
			return fmt.Errorf("%w: request is %s, check-out requires a confirmed booking", ErrInvalidStateTransition, a.Status)
		}
		if a.CheckInStatus != models.CheckInCheckedIn {
			return fmt.Errorf("%w: guest has not checked in", ErrInvalidStateTransition)
		}
		if a.CheckOutStatus == models.CheckOutCheckedOut {
			return fmt.Errorf("%w: guest has already checked out", ErrInvalidStateTransition)
		}

		previousQR = ""
		if a.QRCode != nil {
			previousQR = *a.QRCode
		}
		newQR := s.codes.NewQRToken()
		for newQR == previousQR {
			newQR = s.codes.NewQRToken()
		}

		now := s.now()
		early := input.IsEarlyCheckout || now.Before(a.CheckOutDate)
		if err := s.accommodations.CheckOut(ctx, exec, a.ID, now, early, newQR); err != nil {
			return err
		}

		result, err = s.accommodations.GetByID(ctx, exec, a.ID)
		return err
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	if err := s.vouchers.Revoke(ctx, result.ID, previousQR); err != nil {
		s.logger.Error("failed to revoke voucher", slog.Int("accommodation_id", result.ID), slog.Any("error", err))
	}
	s.publish(ctx, models.EventGuestCheckedOut, result, actor.UserID)
	s.notifyGuest(ctx, result, func(to, name string) error {
		return s.mailer.SendCheckoutReceiptEmail(to, name, *result.ActualCheckOutTime, result.IsEarlyCheckout)
	})
	return result, nil
}

func (s *accommodationService) BulkCheckIn(ctx context.Context, actor Actor, teamRequestID int) ([]BulkResult, error) {
	return s.bulk(ctx, actor, teamRequestID, func(id int) (*models.AccommodationRequest, error) {
		return s.CheckIn(ctx, actor, id)
	})
}

func (s *accommodationService) BulkCheckOut(ctx context.Context, actor Actor, teamRequestID int, input CheckOutInput) ([]BulkResult, error) {
	return s.bulk(ctx, actor, teamRequestID, func(id int) (*models.AccommodationRequest, error) {
		return s.CheckOut(ctx, actor, id, input)
	})
}

// bulk применяет op к каждой неотменённой заявке команды, каждую в своей транзакции;
// ошибка одного участника не останавливает остальных.
func (s *accommodationService) bulk(ctx context.Context, actor Actor, teamRequestID int, op func(id int) (*models.AccommodationRequest, error)) ([]BulkResult, error) {
	tr, err := s.teamRequests.GetByID(ctx, nil, teamRequestID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if !actor.HasRole(models.RoleAdmin) && !(actor.HasRole(models.RoleTeamManager) && tr.ManagerID == actor.UserID) {
		return nil, ErrUnauthorized
	}

	requests, err := s.accommodations.List(ctx, repositories.AccommodationFilter{TeamRequestID: &tr.ID})
	if err != nil {
		return nil, translateRepoError(err)
	}

	results := make([]BulkResult, 0, len(requests))
	for _, a := range requests {
		if a.Status == models.AccommodationCancelled {
			continue
		}
		res := BulkResult{AccommodationID: a.ID, TeamMemberID: a.TeamMemberID}
		updated, err := op(a.ID)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Success = true
			res.Accommodation = updated
		}
		results = append(results, res)
	}
	return results, nil
}

// --- Чтение ---

func (s *accommodationService) GetAccommodation(ctx context.Context, actor Actor, accommodationID int) (*models.AccommodationRequest, error) {
	a, err := s.accommodations.GetByID(ctx, nil, accommodationID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if err := s.authorizeView(ctx, actor, a); err != nil {
		return nil, translateRepoError(err)
	}
	if member, err := s.teamRequests.GetMember(ctx, nil, a.TeamMemberID); err == nil {
		a.Member = member
	}
	return a, nil
}

func (s *accommodationService) ListByTeamRequest(ctx context.Context, actor Actor, teamRequestID int) ([]*models.AccommodationRequest, error) {
	tr, err := s.teamRequests.GetByID(ctx, nil, teamRequestID)
	if err != nil {
		return nil, translateRepoError(err)
	}

	var ownMemberIDs map[int]bool
	switch {
	case actor.HasRole(models.RoleAdmin, models.RoleEventManager):
	case actor.HasRole(models.RoleTeamManager) && tr.ManagerID == actor.UserID:
	case actor.HasRole(models.RolePlayer):
		members, err := s.teamRequests.ListMembers(ctx, nil, tr.ID)
		if err != nil {
			return nil, translateRepoError(err)
		}
		ownMemberIDs = make(map[int]bool)
		for _, m := range members {
			if m.UserID != nil && *m.UserID == actor.UserID {
				ownMemberIDs[m.ID] = true
			}
		}
		if len(ownMemberIDs) == 0 {
			return nil, ErrUnauthorized
		}
	default:
		return nil, ErrUnauthorized
	}

	requests, err := s.accommodations.List(ctx, repositories.AccommodationFilter{TeamRequestID: &tr.ID})
	if err != nil {
		return nil, translateRepoError(err)
	}
	if ownMemberIDs == nil {
		return requests, nil
	}

	own := make([]*models.AccommodationRequest, 0, len(ownMemberIDs))
	for _, a := range requests {
		if ownMemberIDs[a.TeamMemberID] {
			own = append(own, a)
		}
	}
	return own, nil
}

func (s *accommodationService) ListPendingForHotelManager(ctx context.Context, actor Actor) ([]*models.AccommodationRequest, error) {
	if err := actor.require(models.RoleHotelManager); err != nil {
		return nil, err
	}
	hotels, err := s.hotels.ListByManager(ctx, actor.UserID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if len(hotels) == 0 {
		return []*models.AccommodationRequest{}, nil
	}

	hotelIDs := make([]int, len(hotels))
	for i, h := range hotels {
		hotelIDs[i] = h.ID
	}
	status := models.AccommodationHotelAssigned
	requests, err := s.accommodations.List(ctx, repositories.AccommodationFilter{Status: &status, HotelIDs: hotelIDs})
	if err != nil {
		return nil, translateRepoError(err)
	}
	return requests, nil
}

func (s *accommodationService) ListRejected(ctx context.Context, actor Actor) ([]*models.AccommodationRequest, error) {
	if err := actor.require(models.RoleAdmin, models.RoleEventManager); err != nil {
		return nil, err
	}
	status := models.AccommodationHotelRejected
	requests, err := s.accommodations.List(ctx, repositories.AccommodationFilter{Status: &status})
	if err != nil {
		return nil, translateRepoError(err)
	}
	return requests, nil
}

func (s *accommodationService) ListTeamsLackingBookings(ctx context.Context, actor Actor) ([]*models.TeamBookingGap, error) {
	if err := actor.require(models.RoleAdmin, models.RoleEventManager); err != nil {
		return nil, err
	}
	gaps, err := s.accommodations.ListTeamsLackingBookings(ctx)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return gaps, nil
}

func (s *accommodationService) VerifyQRCode(ctx context.Context, actor Actor, token string) (*models.AccommodationRequest, error) {
	if err := actor.require(models.RoleAdmin, models.RoleHotelManager); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidQRCode
	}

	a, err := s.accommodations.GetByQRCode(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrAccommodationNotFound) {
			return nil, ErrInvalidQRCode
		}
		return nil, translateRepoError(err)
	}
	if a.Status != models.AccommodationConfirmed || a.CheckOutStatus == models.CheckOutCheckedOut || !a.HoldsRoom() {
		return nil, ErrInvalidQRCode
	}

	if actor.Role == models.RoleHotelManager {
		hotel, err := s.hotels.GetByID(ctx, nil, *a.HotelID)
		if err != nil {
			return nil, translateRepoError(err)
		}
		if hotel.ManagerID != actor.UserID {
			return nil, ErrUnauthorized
		}
	}
	return a, nil
}

// --- Проверки доступа ---

// authorizeGuestAction пускает админа, менеджера команды и игрока, привязанного к участнику.
func (s *accommodationService) authorizeGuestAction(ctx context.Context, exec repositories.SQLExecutor, actor Actor, a *models.AccommodationRequest) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeamManager:
		tr, err := s.teamRequests.GetByID(ctx, exec, a.TeamRequestID)
		if err != nil {
			return err
		}
		if tr.ManagerID == actor.UserID {
			return nil
		}
	case models.RolePlayer:
		m, err := s.teamRequests.GetMember(ctx, exec, a.TeamMemberID)
		if err != nil {
			return err
		}
		if m.UserID != nil && *m.UserID == actor.UserID {
			return nil
		}
	}
	return ErrUnauthorized
}

func (s *accommodationService) authorizeView(ctx context.Context, actor Actor, a *models.AccommodationRequest) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleEventManager:
		return nil
	case models.RoleHotelManager:
		if a.HotelID == nil {
			return ErrUnauthorized
		}
		hotel, err := s.hotels.GetByID(ctx, nil, *a.HotelID)
		if err != nil {
			return err
		}
		if hotel.ManagerID != actor.UserID {
			return ErrUnauthorized
		}
		return nil
	}
	return s.authorizeGuestAction(ctx, nil, actor, a)
}

// --- Побочные эффекты после коммита ---

func (s *accommodationService) afterConfirmed(ctx context.Context, a *models.AccommodationRequest, actorID int) {
	s.publish(ctx, models.EventAccommodationConfirmed, a, actorID)

	if url, err := s.vouchers.Issue(ctx, a, s.now()); err != nil {
		s.logger.Error("failed to issue voucher", slog.Int("accommodation_id", a.ID), slog.Any("error", err))
	} else if url != "" {
		s.logger.Info("voucher issued", slog.Int("accommodation_id", a.ID), slog.String("url", url))
	}

	s.notifyGuest(ctx, a, func(to, name string) error {
		return s.mailer.SendBookingConfirmedEmail(to, name, *a.ConfirmationCode, a.CheckInDate, a.CheckOutDate)
	})
}

func (s *accommodationService) publish(ctx context.Context, eventType string, a *models.AccommodationRequest, actorID int) {
	if a == nil {
		return
	}
	s.publishForHotel(ctx, eventType, a, a.HotelID, actorID)
}

// publishForHotel адресует событие отелю, который держал номер до перехода:
// отказ и отмена очищают hotel_id в самой записи.
func (s *accommodationService) publishForHotel(ctx context.Context, eventType string, a *models.AccommodationRequest, hotelID *int, actorID int) {
	if s.events == nil || a == nil {
		return
	}
	event := models.AccommodationEvent{
		Type:            eventType,
		AccommodationID: a.ID,
		TeamRequestID:   a.TeamRequestID,
		HotelID:         hotelID,
		Status:          a.Status,
		CheckInStatus:   a.CheckInStatus,
		CheckOutStatus:  a.CheckOutStatus,
		ActorID:         actorID,
		OccurredAt:      s.now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish accommodation event",
			slog.String("type", eventType),
			slog.Int("accommodation_id", a.ID),
			slog.Any("error", err),
		)
	}
}

func (s *accommodationService) notifyGuest(ctx context.Context, a *models.AccommodationRequest, send func(to, name string) error) {
	if s.mailer == nil {
		return
	}
	member, err := s.teamRequests.GetMember(ctx, nil, a.TeamMemberID)
	if err != nil {
		s.logger.Error("failed to load team member for notification", slog.Int("accommodation_id", a.ID), slog.Any("error", err))
		return
	}
	if member.Contact.Email == "" {
		return
	}
	if err := send(member.Contact.Email, member.FullName); err != nil {
		s.logger.Error("failed to send guest notification", slog.Int("accommodation_id", a.ID), slog.Any("error", err))
	}
}
