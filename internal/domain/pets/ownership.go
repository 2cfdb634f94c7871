package pets

import (
	"context"
	"strings"
)

// ownedBy carga la mascota y verifica que userID sea el dueño.
func (s *Service) ownedBy(ctx context.Context, petID, userID string) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID != strings.TrimSpace(userID) {
		return Pet{}, ErrForbidden
	}
	return p, nil
}
