package anonymous

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidSession = errors.New("invalid session id")

// Service issues and validates anonymous cart session ids. Each session id owns exactly
// one persisted cart record.
type Service struct {
	newID func() (uuid.UUID, error)
}

func New() *Service {
	return &Service{newID: uuid.NewRandom}
}

// Issue returns a fresh random session id.
func (s *Service) Issue() (string, error) {
	id, err := s.newID()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Normalize validates a client supplied session id and returns its canonical form.
func (s *Service) Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidSession
	}
	id, err := uuid.Parse(raw)
	if err != nil || id.Version() != 4 {
		return "", ErrInvalidSession
	}
	return id.String(), nil
}

// RecordKey is the persistence key for a session's cart.
func RecordKey(sessionID string) string {
	return "session:" + sessionID
}
