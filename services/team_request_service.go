package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/Dosada05/tournament-accommodation/repositories"
	"github.com/jonboulle/clockwork"
)

const dateLayout = "2006-01-02"

type TeamMemberInput struct {
	UserID                   *int               `json:"user_id,omitempty"`
	FullName                 string             `json:"full_name"`
	Contact                  models.ContactInfo `json:"contact"`
	RequiresAccommodation    bool               `json:"requires_accommodation"`
	AccommodationPreferences *string            `json:"accommodation_preferences,omitempty"`
}

type CreateTeamRequestInput struct {
	TeamName           string            `json:"team_name"`
	Sport              string            `json:"sport"`
	TournamentID       int               `json:"tournament_id"`
	PreferredClusterID *int              `json:"preferred_cluster_id,omitempty"`
	CheckInDate        string            `json:"check_in_date"`
	CheckOutDate       string            `json:"check_out_date"`
	Members            []TeamMemberInput `json:"members"`
}

type ReviewTeamRequestInput struct {
	Status models.TeamRequestStatus `json:"status"`
}

// ReviewResult - рассмотренная заявка и заявки на проживание, созданные при одобрении.
type ReviewResult struct {
	TeamRequest    *models.TeamRequest            `json:"team_request"`
	Accommodations []*models.AccommodationRequest `json:"accommodations"`
}

type TeamRequestService interface {
	Create(ctx context.Context, actor Actor, input CreateTeamRequestInput) (*models.TeamRequest, error)
	GetByID(ctx context.Context, actor Actor, id int) (*models.TeamRequest, error)
	List(ctx context.Context, actor Actor, status *models.TeamRequestStatus) ([]*models.TeamRequest, error)
	Review(ctx context.Context, actor Actor, id int, input ReviewTeamRequestInput) (*ReviewResult, error)
}

type teamRequestService struct {
	tx             repositories.Transactor
	teamRequests   repositories.TeamRequestRepository
	accommodations AccommodationService
	clock          clockwork.Clock
	logger         *slog.Logger
}

func NewTeamRequestService(
	tx repositories.Transactor,
	teamRequests repositories.TeamRequestRepository,
	accommodations AccommodationService,
	clock clockwork.Clock,
	logger *slog.Logger,
) TeamRequestService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &teamRequestService{
		tx:             tx,
		teamRequests:   teamRequests,
		accommodations: accommodations,
		clock:          clock,
		logger:         logger,
	}
}

func parseStayDates(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(dateLayout, strings.TrimSpace(checkIn))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check_in_date must be YYYY-MM-DD", ErrValidationFailed)
	}
	out, err := time.Parse(dateLayout, strings.TrimSpace(checkOut))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check_out_date must be YYYY-MM-DD", ErrValidationFailed)
	}
	if !out.After(in) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check_out_date must be after check_in_date", ErrValidationFailed)
	}
	return in, out, nil
}

func (in CreateTeamRequestInput) validate() error {
	if strings.TrimSpace(in.TeamName) == "" {
		return fmt.Errorf("%w: team_name is required", ErrValidationFailed)
	}
	if strings.TrimSpace(in.Sport) == "" {
		return fmt.Errorf("%w: sport is required", ErrValidationFailed)
	}
	if in.TournamentID <= 0 {
		return fmt.Errorf("%w: tournament_id is required", ErrValidationFailed)
	}
	if len(in.Members) == 0 {
		return fmt.Errorf("%w: at least one team member is required", ErrValidationFailed)
	}
	for i, m := range in.Members {
		if strings.TrimSpace(m.FullName) == "" {
			return fmt.Errorf("%w: members[%d].full_name is required", ErrValidationFailed, i)
		}
		if m.Contact.Email != "" {
			if _, err := mail.ParseAddress(m.Contact.Email); err != nil {
				return fmt.Errorf("%w: members[%d].contact.email is invalid", ErrValidationFailed, i)
			}
		}
	}
	return nil
}

func (s *teamRequestService) Create(ctx context.Context, actor Actor, input CreateTeamRequestInput) (*models.TeamRequest, error) {
	if err := actor.require(models.RoleTeamManager, models.RoleEventManager, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	checkIn, checkOut, err := parseStayDates(input.CheckInDate, input.CheckOutDate)
	if err != nil {
		return nil, err
	}

	tr := &models.TeamRequest{
		TeamName:           strings.TrimSpace(input.TeamName),
		Sport:              strings.TrimSpace(input.Sport),
		TournamentID:       input.TournamentID,
		ManagerID:          actor.UserID,
		PreferredClusterID: input.PreferredClusterID,
		CheckInDate:        checkIn,
		CheckOutDate:       checkOut,
		Status:             models.TeamRequestPending,
		Members:            make([]models.TeamMember, 0, len(input.Members)),
	}
	for _, m := range input.Members {
		tr.Members = append(tr.Members, models.TeamMember{
			UserID:                   m.UserID,
			FullName:                 strings.TrimSpace(m.FullName),
			Contact:                  m.Contact,
			RequiresAccommodation:    m.RequiresAccommodation,
			AccommodationPreferences: trimmedOrNil(m.AccommodationPreferences),
		})
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.teamRequests.Create(ctx, exec, tr)
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.InfoContext(ctx, "team request created",
		slog.Int("team_request_id", tr.ID),
		slog.Int("members", len(tr.Members)),
		slog.Int("manager_id", tr.ManagerID),
	)
	return tr, nil
}

func (s *teamRequestService) GetByID(ctx context.Context, actor Actor, id int) (*models.TeamRequest, error) {
	tr, err := s.teamRequests.GetByID(ctx, nil, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	members, err := s.teamRequests.ListMembers(ctx, nil, tr.ID)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if !s.canView(actor, tr, members) {
		return nil, ErrUnauthorized
	}

	tr.Members = make([]models.TeamMember, 0, len(members))
	for _, m := range members {
		tr.Members = append(tr.Members, *m)
	}
	return tr, nil
}

func (s *teamRequestService) canView(actor Actor, tr *models.TeamRequest, members []*models.TeamMember) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleEventManager:
		return true
	case models.RoleTeamManager:
		return tr.ManagerID == actor.UserID
	case models.RolePlayer:
		for _, m := range members {
			if m.UserID != nil && *m.UserID == actor.UserID {
				return true
			}
		}
	}
	return false
}

func (s *teamRequestService) List(ctx context.Context, actor Actor, status *models.TeamRequestStatus) ([]*models.TeamRequest, error) {
	if err := actor.require(models.RoleAdmin, models.RoleEventManager, models.RoleTeamManager); err != nil {
		return nil, err
	}
	if status != nil && *status != models.TeamRequestPending && *status != models.TeamRequestApproved && *status != models.TeamRequestRejected {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, *status)
	}

	requests, err := s.teamRequests.List(ctx, status)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if actor.Role != models.RoleTeamManager {
		return requests, nil
	}

	own := make([]*models.TeamRequest, 0, len(requests))
	for _, tr := range requests {
		if tr.ManagerID == actor.UserID {
			own = append(own, tr)
		}
	}
	return own, nil
}

// Review одобряет или отклоняет заявку в статусе pending. При одобрении создаются заявки
// на проживание; если это не удалось, одобрение остаётся, а создание можно повторить
// через CreateAccommodationRequests.
func (s *teamRequestService) Review(ctx context.Context, actor Actor, id int, input ReviewTeamRequestInput) (*ReviewResult, error) {
	if err := actor.require(models.RoleAdmin, models.RoleEventManager); err != nil {
		return nil, err
	}
	if input.Status != models.TeamRequestApproved && input.Status != models.TeamRequestRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrValidationFailed)
	}

	var tr *models.TeamRequest
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		current, err := s.teamRequests.GetByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if current.Status != models.TeamRequestPending {
			return fmt.Errorf("%w: team request is already %s", ErrInvalidStateTransition, current.Status)
		}
		if err := s.teamRequests.UpdateStatus(ctx, exec, id, models.TeamRequestPending, input.Status, actor.UserID, s.clock.Now().UTC()); err != nil {
			return err
		}
		tr, err = s.teamRequests.GetByID(ctx, exec, id)
		return err
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	result := &ReviewResult{TeamRequest: tr, Accommodations: []*models.AccommodationRequest{}}
	if tr.Status != models.TeamRequestApproved {
		return result, nil
	}

	created, err := s.accommodations.CreateAccommodationRequests(ctx, actor, tr.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "team request approved but accommodation requests were not created",
			slog.Int("team_request_id", tr.ID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("team request approved, creating accommodation requests failed: %w", err)
	}
	result.Accommodations = created
	return result, nil
}
