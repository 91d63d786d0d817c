package places

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service exposes the proximity queries over the static dataset and keeps
// per-session observer state through a Store and a chain of Locators.
type Service struct {
	records  []Location
	store    Store
	locators []Locator
	logger   *zap.Logger
}

// NewService creates a new Service. records must not be modified afterwards.
func NewService(records []Location, store Store, locators []Locator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		records:  records,
		store:    store,
		locators: locators,
		logger:   logger,
	}
}

// Records returns the dataset. Callers must treat it as read-only.
func (s *Service) Records() []Location {
	return s.records
}

// Cities lists the distinct cities of the dataset.
func (s *Service) Cities() []string {
	return ListCities(s.records)
}

// Nearest returns the dataset record closest to observer.
func (s *Service) Nearest(observer Coordinate) (Location, bool) {
	return FindNearest(observer, s.records)
}

// ResolveScope returns scope unchanged when set. Otherwise it derives the
// city of the nearest record, or "" when there is no observer.
func (s *Service) ResolveScope(scope string, observer *Coordinate) string {
	if scope != "" || observer == nil {
		return scope
	}
	nearest, ok := s.Nearest(*observer)
	if !ok {
		return ""
	}
	return nearest.City
}

// Rank ranks the dataset for an explicit scope.
func (s *Service) Rank(scope string, observer *Coordinate, query string) []Ranked {
	return Rank(s.records, scope, observer, query)
}

// TopNearest returns the global top-n projection.
func (s *Service) TopNearest(observer *Coordinate, n int) []Ranked {
	return TopNearest(s.records, observer, n)
}

// CreateSession starts a session with no observer and no scope.
func (s *Service) CreateSession() Session {
	sess := s.store.Create()
	s.logger.Debug("session created", zap.String("session", sess.ID))
	return sess
}

// Session returns the current state of a session.
func (s *Service) Session(id string) (Session, error) {
	return s.store.Get(id)
}

// SetScope records an explicit city choice for the session.
func (s *Service) SetScope(id, city string) (Session, error) {
	return s.store.SetScope(id, city)
}

// SetObserver stores a position reported by the device itself.
func (s *Service) SetObserver(id string, c Coordinate) (Session, error) {
	return s.applyFix(id, Fix{
		Coordinate: c,
		Source:     "device",
		Timestamp:  time.Now().UTC(),
	})
}

// RefreshObserver asks the configured locators for a new position. The
// first locator to succeed wins. On failure the previous observer, if any,
// is kept and ErrNoFix is returned.
func (s *Service) RefreshObserver(ctx context.Context, id string, req LocateRequest) (Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return Session{}, err
	}

	if req.Permission == PermissionDenied {
		if err := s.store.SetRequest(id, nil); err != nil {
			return Session{}, err
		}
		s.logger.Info("location permission denied", zap.String("session", id))
		return sess, ErrPermissionDenied
	}

	if len(s.locators) == 0 {
		return sess, ErrNoLocators
	}

	if err := s.store.SetRequest(id, &req); err != nil {
		return Session{}, err
	}

	var lastErr error
	for _, l := range s.locators {
		if ctx.Err() != nil {
			return sess, ctx.Err()
		}

		c, err := l.Locate(ctx, req)
		if err != nil {
			// Try the next source; a partial chain is still useful.
			s.logger.Warn("locator failed",
				zap.String("locator", l.Name()),
				zap.String("session", id),
				zap.Error(err))
			lastErr = err
			continue
		}

		return s.applyFix(id, Fix{
			Coordinate: c,
			Source:     l.Name(),
			Timestamp:  time.Now().UTC(),
		})
	}

	s.logger.Info("no locator produced a fix; keeping last observer", zap.String("session", id))
	return sess, fmt.Errorf("%w: %v", ErrNoFix, lastErr)
}

// RefreshableSessions returns the ids of sessions with a stored locate request.
func (s *Service) RefreshableSessions() []string {
	var ids []string
	for _, sess := range s.store.List() {
		if sess.Request != nil {
			ids = append(ids, sess.ID)
		}
	}
	return ids
}

// RefreshStored re-runs RefreshObserver with the session's stored request.
func (s *Service) RefreshStored(ctx context.Context, id string) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if sess.Request == nil {
		return nil
	}
	_, err = s.RefreshObserver(ctx, id, *sess.Request)
	return err
}

// PurgeExpired drops idle sessions and reports how many were removed.
func (s *Service) PurgeExpired() int {
	return s.store.PurgeExpired()
}

// RankSession ranks the session scope with its observer.
func (s *Service) RankSession(id, query string) ([]Ranked, Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, Session{}, err
	}
	return s.Rank(sess.Scope, sess.Observer, query), sess, nil
}

// TopSession returns the top-n projection for the session observer.
func (s *Service) TopSession(id string, n int) ([]Ranked, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return s.TopNearest(sess.Observer, n), nil
}

// applyFix saves the fix and, if no scope was chosen yet, derives one from
// the nearest record.
func (s *Service) applyFix(id string, fix Fix) (Session, error) {
	sess, err := s.store.SaveFix(id, fix)
	if err != nil {
		return Session{}, err
	}

	s.logger.Debug("observer updated",
		zap.String("session", id),
		zap.String("source", fix.Source),
		zap.Float64("lat", fix.Latitude),
		zap.Float64("lon", fix.Longitude))

	if sess.Scope != "" {
		return sess, nil
	}

	scope := s.ResolveScope("", sess.Observer)
	if scope == "" {
		return sess, nil
	}
	return s.store.SetScopeIfUnset(id, scope)
}
