package services

import (
	"errors"
	"fmt"
)

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	ErrNotFound               = errors.New("requested resource not found")
	ErrValidationFailed       = errors.New("validation failed")
	ErrUnauthorized           = errors.New("operation not allowed for the current user")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidAssignment      = errors.New("invalid hotel assignment")
	ErrNoAvailability         = errors.New("no room availability")
	ErrInvalidQRCode          = errors.New("qr code is not valid for entry")
	ErrConflict               = errors.New("resource conflict")

	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthenticationFailed   = errors.New("authentication failed")

	ErrCodeGenerationFailed = errors.New("failed to generate unique confirmation code")
)

// Ошибки "не найдено" по сущностям; для каждой errors.Is(err, ErrNotFound) == true.
var (
	ErrAccommodationNotFound = fmt.Errorf("accommodation request: %w", ErrNotFound)
	ErrTeamRequestNotFound   = fmt.Errorf("team request: %w", ErrNotFound)
	ErrTeamMemberNotFound    = fmt.Errorf("team member: %w", ErrNotFound)
	ErrHotelNotFound         = fmt.Errorf("hotel: %w", ErrNotFound)
	ErrRoomCategoryNotFound  = fmt.Errorf("room category: %w", ErrNotFound)
	ErrClusterNotFound       = fmt.Errorf("hotel cluster: %w", ErrNotFound)
	ErrUserNotFound          = fmt.Errorf("user: %w", ErrNotFound)
)
