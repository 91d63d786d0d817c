package places_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pontos/nearby-points/internal/places"
	"github.com/pontos/nearby-points/internal/store"
)

var fixture = []places.Location{
	{EstablishmentName: "Posto Centro", Address: "Av. Vicente Machado, 216", City: "PONTA GROSSA", Latitude: -25.0951, Longitude: -50.1612, Tag: "ipiranga"},
	{EstablishmentName: "Posto Olarias", Address: "R. Ermelino de Leão, 703", City: "PONTA GROSSA", Latitude: -25.1015, Longitude: -50.1527, Tag: "shell"},
	{EstablishmentName: "Posto Batel", Address: "Av. do Batel, 1868", City: "Curitiba", Latitude: -25.4413, Longitude: -49.2902, Tag: "ipiranga"},
	{EstablishmentName: "Posto Rebouças", Address: "Av. Sete de Setembro, 2775", City: "Curitiba", Latitude: -25.4416, Longitude: -49.2663, Tag: "ale"},
}

var (
	nearCuritiba    = places.Coordinate{Latitude: -25.44, Longitude: -49.27}
	nearPontaGrossa = places.Coordinate{Latitude: -25.10, Longitude: -50.15}
)

type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Name() string {
	return m.Called().String(0)
}

func (m *MockLocator) Locate(ctx context.Context, req places.LocateRequest) (places.Coordinate, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(places.Coordinate), args.Error(1)
}

func newLocator(name string) *MockLocator {
	l := new(MockLocator)
	l.On("Name").Return(name).Maybe()
	return l
}

func newService(locators ...places.Locator) *places.Service {
	return places.NewService(fixture, store.NewMemoryStore(10, 0), locators, nil)
}

func TestService_ResolveScope(t *testing.T) {
	svc := newService()
	assert.Equal(t, fixture, svc.Records())

	assert.Equal(t, "Castro", svc.ResolveScope("Castro", &nearCuritiba))
	assert.Equal(t, "Curitiba", svc.ResolveScope("", &nearCuritiba))
	assert.Equal(t, "", svc.ResolveScope("", nil))

	empty := places.NewService(nil, store.NewMemoryStore(0, 0), nil, nil)
	assert.Equal(t, "", empty.ResolveScope("", &nearCuritiba))
}

func TestService_SetObserverDerivesScope(t *testing.T) {
	svc := newService()
	sess := svc.CreateSession()
	assert.Nil(t, sess.Observer)

	updated, err := svc.SetObserver(sess.ID, nearPontaGrossa)
	require.NoError(t, err)
	require.NotNil(t, updated.Observer)
	assert.Equal(t, nearPontaGrossa, *updated.Observer)
	assert.Equal(t, "PONTA GROSSA", updated.Scope)
	require.Len(t, updated.Fixes, 1)
	assert.Equal(t, "device", updated.Fixes[0].Source)

	// A later fix elsewhere keeps the scope already chosen.
	updated, err = svc.SetObserver(sess.ID, nearCuritiba)
	require.NoError(t, err)
	assert.Equal(t, "PONTA GROSSA", updated.Scope)
}

func TestService_ExplicitScopeIsKept(t *testing.T) {
	svc := newService()
	sess := svc.CreateSession()

	_, err := svc.SetScope(sess.ID, "Curitiba")
	require.NoError(t, err)

	updated, err := svc.SetObserver(sess.ID, nearPontaGrossa)
	require.NoError(t, err)
	assert.Equal(t, "Curitiba", updated.Scope)

	ranked, _, err := svc.RankSession(sess.ID, "")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	for _, r := range ranked {
		assert.True(t, r.Resolved())
		assert.Equal(t, "Curitiba", r.City)
	}
}

// choosingStore records an explicit city right after a fix lands, as a
// concurrent scope request would.
type choosingStore struct {
	*store.MemoryStore
	city string
}

func (s *choosingStore) SaveFix(id string, fix places.Fix) (places.Session, error) {
	sess, err := s.MemoryStore.SaveFix(id, fix)
	if err != nil {
		return sess, err
	}
	if _, err := s.MemoryStore.SetScope(id, s.city); err != nil {
		return places.Session{}, err
	}
	return sess, nil
}

func TestService_ConcurrentScopeChoiceWins(t *testing.T) {
	st := &choosingStore{MemoryStore: store.NewMemoryStore(10, 0), city: "Curitiba"}
	svc := places.NewService(fixture, st, nil, nil)
	sess := svc.CreateSession()

	updated, err := svc.SetObserver(sess.ID, nearPontaGrossa)
	require.NoError(t, err)
	assert.Equal(t, "Curitiba", updated.Scope)

	current, err := svc.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Curitiba", current.Scope)
}

func TestService_RefreshObserver_PermissionDenied(t *testing.T) {
	locator := newLocator("primary")
	svc := newService(locator)
	sess := svc.CreateSession()

	got, err := svc.RefreshObserver(context.Background(), sess.ID, places.LocateRequest{Permission: places.PermissionDenied})

	assert.ErrorIs(t, err, places.ErrPermissionDenied)
	assert.Nil(t, got.Observer)
	locator.AssertNotCalled(t, "Locate", mock.Anything, mock.Anything)
	assert.Empty(t, svc.RefreshableSessions())
}

func TestService_RefreshObserver_FallsBackToNextLocator(t *testing.T) {
	failing := newLocator("ipapi")
	failing.On("Locate", mock.Anything, mock.Anything).Return(places.Coordinate{}, errors.New("timeout")).Once()
	working := newLocator("static")
	working.On("Locate", mock.Anything, mock.Anything).Return(nearCuritiba, nil).Once()

	svc := newService(failing, working)
	sess := svc.CreateSession()

	req := places.LocateRequest{Permission: places.PermissionGranted, ClientIP: "203.0.113.7"}
	got, err := svc.RefreshObserver(context.Background(), sess.ID, req)

	require.NoError(t, err)
	require.NotNil(t, got.Observer)
	assert.Equal(t, nearCuritiba, *got.Observer)
	assert.Equal(t, "Curitiba", got.Scope)
	require.Len(t, got.Fixes, 1)
	assert.Equal(t, "static", got.Fixes[0].Source)
	assert.Equal(t, []string{sess.ID}, svc.RefreshableSessions())

	failing.AssertExpectations(t)
	working.AssertExpectations(t)
}

func TestService_RefreshObserver_KeepsLastFixOnFailure(t *testing.T) {
	locator := newLocator("ipapi")
	locator.On("Locate", mock.Anything, mock.Anything).Return(places.Coordinate{}, places.ErrNoFix)

	svc := newService(locator)
	sess := svc.CreateSession()
	_, err := svc.SetObserver(sess.ID, nearPontaGrossa)
	require.NoError(t, err)

	got, err := svc.RefreshObserver(context.Background(), sess.ID, places.LocateRequest{Permission: places.PermissionGranted})

	assert.ErrorIs(t, err, places.ErrNoFix)
	require.NotNil(t, got.Observer)
	assert.Equal(t, nearPontaGrossa, *got.Observer)

	current, err := svc.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, nearPontaGrossa, *current.Observer)
}

func TestService_RefreshObserver_NoLocators(t *testing.T) {
	svc := newService()
	sess := svc.CreateSession()

	_, err := svc.RefreshObserver(context.Background(), sess.ID, places.LocateRequest{Permission: places.PermissionGranted})
	assert.ErrorIs(t, err, places.ErrNoLocators)
}

func TestService_UnknownSession(t *testing.T) {
	svc := newService()

	_, err := svc.Session("missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.RefreshObserver(context.Background(), "missing", places.LocateRequest{Permission: places.PermissionGranted})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, _, err = svc.RankSession("missing", "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestService_SessionQueriesWithoutObserver(t *testing.T) {
	svc := newService()
	sess := svc.CreateSession()

	ranked, got, err := svc.RankSession(sess.ID, "")
	require.NoError(t, err)
	assert.Empty(t, got.Scope)
	assert.Empty(t, ranked)

	top, err := svc.TopSession(sess.ID, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "Posto Centro", top[0].EstablishmentName)
	assert.Equal(t, places.DistanceUnavailable, top[0].DisplayDistance)
}

func TestService_RefreshStored(t *testing.T) {
	locator := newLocator("static")
	locator.On("Locate", mock.Anything, mock.Anything).Return(nearPontaGrossa, nil).Once()
	locator.On("Locate", mock.Anything, mock.Anything).Return(nearCuritiba, nil).Once()

	svc := newService(locator)
	sess := svc.CreateSession()

	require.NoError(t, svc.RefreshStored(context.Background(), sess.ID))
	current, err := svc.Session(sess.ID)
	require.NoError(t, err)
	assert.Nil(t, current.Observer, "nothing stored yet, nothing refreshed")

	_, err = svc.RefreshObserver(context.Background(), sess.ID, places.LocateRequest{Permission: places.PermissionGranted})
	require.NoError(t, err)
	require.NoError(t, svc.RefreshStored(context.Background(), sess.ID))

	current, err = svc.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, nearCuritiba, *current.Observer)
	assert.Len(t, current.Fixes, 2)
	locator.AssertExpectations(t)
}
