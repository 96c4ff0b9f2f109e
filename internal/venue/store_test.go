package venue_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/cache"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/slot"
	"github.com/mauv0809/courtside/internal/user"
	"github.com/mauv0809/courtside/internal/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = auth.Actor{UserID: "owner1", Role: user.RoleOwner}
	stranger = auth.Actor{UserID: "owner2", Role: user.RoleOwner}
	admin    = auth.Actor{UserID: "admin1", Role: user.RoleAdmin}
	player   = auth.Actor{UserID: "player1", Role: user.RoleUser}
)

func setupTestDB(t *testing.T) (venue.VenueStore, *cache.Mock, *sql.DB, func()) {
	t.Helper()
	c := cache.NewMock()
	store, db, teardown := setupTestDBWithCache(t, c)
	return store, c, db, teardown
}

func setupTestDBWithCache(t *testing.T, c cache.Cache) (venue.VenueStore, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	users := user.New(db)
	for _, u := range []user.User{
		{ID: "owner1", Name: "Owner One", Role: user.RoleOwner},
		{ID: "owner2", Name: "Owner Two", Role: user.RoleOwner},
		{ID: "admin1", Name: "Admin", Role: user.RoleAdmin},
		{ID: "player1", Name: "Player", Role: user.RoleUser},
	} {
		_, err := users.UpsertUser(context.Background(), u)
		require.NoError(t, err)
	}

	return venue.New(db, c, time.Minute), db, teardown
}

func mustRange(t *testing.T, start, end string) slot.Range {
	t.Helper()
	r, err := slot.NewRange(start, end)
	require.NoError(t, err)
	return r
}

func TestCreateVenue(t *testing.T) {
	store, _, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	v, err := store.CreateVenue(ctx, owner, venue.NewVenue{Name: "Riverside Club", City: "Lisbon", Sports: []string{"Padel", " tennis "}})
	require.NoError(t, err)
	assert.Equal(t, "owner1", v.OwnerID)
	assert.Equal(t, []string{"padel", "tennis"}, v.Sports)

	got, err := store.GetVenue(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.Name, got.Name)
	assert.Equal(t, v.Sports, got.Sports)

	t.Run("players cannot create venues", func(t *testing.T) {
		_, err := store.CreateVenue(ctx, player, venue.NewVenue{Name: "Backyard"})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("admins can create on behalf of an owner", func(t *testing.T) {
		v, err := store.CreateVenue(ctx, admin, venue.NewVenue{OwnerID: "owner2", Name: "North Courts"})
		require.NoError(t, err)
		assert.Equal(t, "owner2", v.OwnerID)
	})

	t.Run("name is required", func(t *testing.T) {
		_, err := store.CreateVenue(ctx, owner, venue.NewVenue{Name: "  "})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestListVenues(t *testing.T) {
	store, _, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	_, err := store.CreateVenue(ctx, owner, venue.NewVenue{Name: "A", City: "Lisbon", Sports: []string{"padel"}})
	require.NoError(t, err)
	_, err = store.CreateVenue(ctx, owner, venue.NewVenue{Name: "B", City: "Porto", Sports: []string{"tennis", "padel"}})
	require.NoError(t, err)
	_, err = store.CreateVenue(ctx, owner, venue.NewVenue{Name: "C", City: "lisbon", Sports: []string{"tennis"}})
	require.NoError(t, err)

	all, err := store.ListVenues(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	lisbon, err := store.ListVenues(ctx, "Lisbon", "")
	require.NoError(t, err)
	assert.Len(t, lisbon, 2)

	padel, err := store.ListVenues(ctx, "", "padel")
	require.NoError(t, err)
	require.Len(t, padel, 2)
	assert.Equal(t, "A", padel[0].Name)
	assert.Equal(t, "B", padel[1].Name)

	none, err := store.ListVenues(ctx, "Madrid", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateCourt(t *testing.T) {
	store, _, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	v, err := store.CreateVenue(ctx, owner, venue.NewVenue{Name: "Club"})
	require.NoError(t, err)

	c, err := store.CreateCourt(ctx, owner, v.ID, venue.NewCourt{Name: "Court 1", Sport: "Padel", PricePerHour: 40})
	require.NoError(t, err)
	assert.Equal(t, 60, c.SlotMinutes)
	assert.True(t, c.Active)
	assert.Equal(t, "padel", c.Sport)

	_, err = store.CreateCourt(ctx, stranger, v.ID, venue.NewCourt{Name: "Court 2", Sport: "padel"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = store.CreateCourt(ctx, admin, v.ID, venue.NewCourt{Name: "Court 2", Sport: "padel"})
	assert.NoError(t, err)

	_, err = store.CreateCourt(ctx, owner, "missing", venue.NewCourt{Name: "X", Sport: "padel"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = store.CreateCourt(ctx, owner, v.ID, venue.NewCourt{Name: "X", Sport: "padel", PricePerHour: -1})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	courts, err := store.ListCourts(ctx, v.ID)
	require.NoError(t, err)
	assert.Len(t, courts, 2)
}

func TestSetAvailabilityWindows(t *testing.T) {
	store, c, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	v, err := store.CreateVenue(ctx, owner, venue.NewVenue{Name: "Club"})
	require.NoError(t, err)
	court, err := store.CreateCourt(ctx, owner, v.ID, venue.NewCourt{Name: "Court 1", Sport: "padel", PricePerHour: 40})
	require.NoError(t, err)

	// Warm the cache so the update has something to invalidate.
	_, err = store.GetCourt(ctx, court.ID)
	require.NoError(t, err)

	updated, err := store.SetAvailabilityWindows(ctx, owner, court.ID, time.Saturday, []slot.Range{
		mustRange(t, "17:00", "22:00"),
		mustRange(t, "08:00", "12:00"),
	})
	require.NoError(t, err)
	require.Len(t, updated.Windows[time.Saturday], 2)
	assert.Equal(t, "08:00-12:00", updated.Windows[time.Saturday][0].String())
	assert.Contains(t, c.DeleteCalls, []string{"court:" + court.ID})

	windows, configured := updated.WindowsFor(time.Sunday)
	assert.True(t, configured)
	assert.Empty(t, windows)

	t.Run("overlapping windows are rejected", func(t *testing.T) {
		_, err := store.SetAvailabilityWindows(ctx, owner, court.ID, time.Monday, []slot.Range{
			mustRange(t, "08:00", "12:00"),
			mustRange(t, "11:00", "13:00"),
		})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("only the owner may change windows", func(t *testing.T) {
		_, err := store.SetAvailabilityWindows(ctx, stranger, court.ID, time.Monday, nil)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("invalid weekday", func(t *testing.T) {
		_, err := store.SetAvailabilityWindows(ctx, owner, court.ID, time.Weekday(7), nil)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("an empty list closes the day", func(t *testing.T) {
		updated, err := store.SetAvailabilityWindows(ctx, owner, court.ID, time.Saturday, nil)
		require.NoError(t, err)
		assert.Empty(t, updated.Windows[time.Saturday])
	})

	t.Run("closing the last open day keeps the court closed", func(t *testing.T) {
		got, err := store.GetCourt(ctx, court.ID)
		require.NoError(t, err)
		assert.True(t, got.HoursConfigured)
		for day := time.Sunday; day <= time.Saturday; day++ {
			windows, configured := got.WindowsFor(day)
			assert.True(t, configured)
			assert.Empty(t, windows, day.String())
		}
	})
}

func TestGetCourtUsesCache(t *testing.T) {
	store, c, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	v, err := store.CreateVenue(ctx, owner, venue.NewVenue{Name: "Club"})
	require.NoError(t, err)
	court, err := store.CreateCourt(ctx, owner, v.ID, venue.NewCourt{Name: "Court 1", Sport: "padel", PricePerHour: 40})
	require.NoError(t, err)
	_, err = store.SetAvailabilityWindows(ctx, owner, court.ID, time.Monday, []slot.Range{mustRange(t, "09:00", "21:00")})
	require.NoError(t, err)

	first, err := store.GetCourt(ctx, court.ID)
	require.NoError(t, err)
	assert.Contains(t, c.SetCalls, "court:"+court.ID)

	// A change made behind the store's back is invisible until invalidation.
	_, err = db.Exec("UPDATE courts SET name = 'Renamed' WHERE id = ?", court.ID)
	require.NoError(t, err)

	cached, err := store.GetCourt(ctx, court.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Name, cached.Name)
	assert.Equal(t, first.Windows, cached.Windows)

	_, err = store.GetCourt(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeactivateCourt(t *testing.T) {
	store, _, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	v, err := store.CreateVenue(ctx, owner, venue.NewVenue{Name: "Club"})
	require.NoError(t, err)
	court, err := store.CreateCourt(ctx, owner, v.ID, venue.NewCourt{Name: "Court 1", Sport: "padel"})
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeactivateCourt(ctx, player, court.ID), apperr.ErrForbidden)
	require.NoError(t, store.DeactivateCourt(ctx, owner, court.ID))

	got, err := store.GetCourt(ctx, court.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

// racingCache runs onFirstSet while the first cache fill is in progress.
type racingCache struct {
	*cache.Mock
	once       sync.Once
	onFirstSet func()
}

func (c *racingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.once.Do(c.onFirstSet)
	return c.Mock.Set(ctx, key, value, ttl)
}

func TestGetCourtDoesNotCacheAStaleCourt(t *testing.T) {
	rc := &racingCache{Mock: cache.NewMock()}
	store, _, teardown := setupTestDBWithCache(t, rc)
	defer teardown()
	ctx := context.Background()

	v, err := store.CreateVenue(ctx, owner, venue.NewVenue{Name: "Club"})
	require.NoError(t, err)
	court, err := store.CreateCourt(ctx, owner, v.ID, venue.NewCourt{Name: "Court 1", Sport: "padel", PricePerHour: 40})
	require.NoError(t, err)

	morning := mustRange(t, "09:00", "12:00")
	updated := make(chan error, 1)
	rc.onFirstSet = func() {
		go func() {
			_, err := store.SetAvailabilityWindows(ctx, owner, court.ID, time.Monday, []slot.Range{morning})
			updated <- err
		}()
		select {
		case err := <-updated:
			t.Errorf("window update finished while a cache fill was in flight: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
	}

	stale, err := store.GetCourt(ctx, court.ID)
	require.NoError(t, err)
	assert.False(t, stale.HoursConfigured)

	select {
	case err := <-updated:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("window update did not finish")
	}

	fresh, err := store.GetCourt(ctx, court.ID)
	require.NoError(t, err)
	assert.True(t, fresh.HoursConfigured)
	assert.Len(t, fresh.Windows[time.Monday], 1)
}
