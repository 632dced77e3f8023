package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tournament-accommodation/repositories"
)

// --- Общие хелперы ---

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// repoErrorMap переводит ошибки репозиториев в ошибки сервисного слоя.
var repoErrorMap = []struct {
	repo error
	svc  error
}{
	{repositories.ErrAccommodationNotFound, ErrAccommodationNotFound},
	{repositories.ErrAccommodationStateConflict, ErrInvalidStateTransition},
	{repositories.ErrAccommodationExists, ErrConflict},
	{repositories.ErrAccommodationRefInvalid, ErrInvalidAssignment},
	{repositories.ErrConfirmationCodeConflict, ErrCodeGenerationFailed},
	{repositories.ErrNoRoomsAvailable, ErrNoAvailability},
	{repositories.ErrRoomCategoryNotFound, ErrRoomCategoryNotFound},
	{repositories.ErrRoomCategoryHotelInvalid, ErrHotelNotFound},
	{repositories.ErrRoomCategoryInvalid, ErrValidationFailed},
	{repositories.ErrHotelNotFound, ErrHotelNotFound},
	{repositories.ErrHotelClusterInvalid, ErrClusterNotFound},
	{repositories.ErrHotelManagerInvalid, ErrUserNotFound},
	{repositories.ErrClusterNotFound, ErrClusterNotFound},
	{repositories.ErrClusterNameConflict, ErrConflict},
	{repositories.ErrTeamRequestNotFound, ErrTeamRequestNotFound},
	{repositories.ErrTeamRequestStateConflict, ErrInvalidStateTransition},
	{repositories.ErrTeamRequestClusterInvalid, ErrClusterNotFound},
	{repositories.ErrTeamMemberNotFound, ErrTeamMemberNotFound},
	{repositories.ErrUserNotFound, ErrUserNotFound},
	{repositories.ErrUserEmailConflict, ErrConflict},
}

// translateRepoError - общий хелпер для ошибок репозитория. Ошибки сервисного
// слоя и неизвестные ошибки возвращаются как есть.
func translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range repoErrorMap {
		if errors.Is(err, m.repo) {
			return fmt.Errorf("%w: %v", m.svc, err)
		}
	}
	return err
}
