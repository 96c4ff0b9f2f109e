package main

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/cache"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/user"
	"github.com/mauv0809/courtside/internal/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySeedFile(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()
	ctx := context.Background()

	f, err := os.Open("testdata/seed.yaml")
	require.NoError(t, err)
	defer f.Close()
	seed, err := loadSeed(f)
	require.NoError(t, err)

	users := user.New(db)
	venues := venue.New(db, cache.NewNoop(), 0)
	sum, err := apply(ctx, users, venues, seed)
	require.NoError(t, err)
	assert.Equal(t, summary{Users: 2, Venues: 1, Courts: 2}, sum)

	owner, err := users.GetUser(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, user.RoleOwner, owner.Role)

	list, err := venues.ListVenues(ctx, "Lisbon", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "owner-1", list[0].OwnerID)

	courts, err := venues.ListCourts(ctx, list[0].ID)
	require.NoError(t, err)
	require.Len(t, courts, 2)
	for _, c := range courts {
		if c.Name != "Court 1" {
			continue
		}
		assert.Equal(t, 90, c.SlotMinutes)
		assert.Len(t, c.Windows[time.Monday], 2)
		assert.Len(t, c.Windows[time.Saturday], 1)
		assert.Empty(t, c.Windows[time.Sunday])
	}
}

func TestLoadSeedRejectsUnknownFields(t *testing.T) {
	_, err := loadSeed(strings.NewReader("venues:\n  - name: X\n    colour: red\n"))
	assert.Error(t, err)
}

func TestApplyRejectsBadInput(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()
	ctx := context.Background()

	tests := []struct {
		name string
		yaml string
	}{
		{"unknown role", "users:\n  - id: u1\n    name: U\n    role: janitor\n"},
		{"unknown weekday", "users:\n  - id: o1\n    name: O\n    role: OWNER\nvenues:\n  - owner: o1\n    name: V\n    courts:\n      - name: C\n        sport: padel\n        price_per_hour: 10\n        windows:\n          funday: [{start: \"08:00\", end: \"09:00\"}]\n"},
		{"inverted window", "users:\n  - id: o1\n    name: O\n    role: OWNER\nvenues:\n  - owner: o1\n    name: V\n    courts:\n      - name: C\n        sport: padel\n        price_per_hour: 10\n        windows:\n          monday: [{start: \"10:00\", end: \"09:00\"}]\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seed, err := loadSeed(strings.NewReader(tc.yaml))
			require.NoError(t, err)
			_, err = apply(ctx, user.New(db), venue.New(db, cache.NewNoop(), 0), seed)
			assert.Error(t, err)
		})
	}
}

func TestApplyBanStatus(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()
	ctx := context.Background()
	users := user.New(db)
	venues := venue.New(db, cache.NewNoop(), 0)

	steps := []struct {
		yaml   string
		banned bool
	}{
		{"users:\n  - id: u1\n    name: Mallory\n    banned: true\n", true},
		{"users:\n  - id: u1\n    name: Mallory\n", true},
		{"users:\n  - id: u1\n    name: Mallory\n    banned: false\n", false},
	}
	for i, step := range steps {
		seed, err := loadSeed(strings.NewReader(step.yaml))
		require.NoError(t, err)
		_, err = apply(ctx, users, venues, seed)
		require.NoError(t, err)

		u, err := users.GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, step.banned, u.Banned, "step %d", i)
	}
}
