package services

import "github.com/Dosada05/tournament-accommodation/models"

// Actor - аутентифицированный пользователь, от имени которого выполняется операция.
type Actor struct {
	UserID int
	Role   models.UserRole
}

func (a Actor) HasRole(roles ...models.UserRole) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

func (a Actor) require(roles ...models.UserRole) error {
	if a.UserID <= 0 || !a.HasRole(roles...) {
		return ErrUnauthorized
	}
	return nil
}
