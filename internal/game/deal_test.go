package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeal_AssignsDistinctRoles(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	players := []string{"Ann", "Bo", "Cy"}
	roles := []string{"Pilot", "Attendant"}

	spy, assignment, err := Deal(rng, roles, players)
	require.NoError(t, err)

	require.Len(t, assignment, 3)
	assert.Contains(t, players, spy)
	assert.Equal(t, SpyRole, assignment[spy])

	// The two non-spies must get Pilot and Attendant in some order.
	seen := map[string]bool{}
	for _, name := range players {
		role := assignment[name]
		if name == spy {
			continue
		}
		assert.Contains(t, roles, role)
		assert.False(t, seen[role], "role %q assigned twice", role)
		seen[role] = true
	}
	assert.Len(t, seen, 2)
}

func TestDeal_ExactlyOneSpy(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	players := []string{"a", "b", "c", "d", "e"}
	roles := []string{"r1", "r2", "r3", "r4", "r5", "r6"}

	for i := 0; i < 50; i++ {
		_, assignment, err := Deal(rng, roles, players)
		require.NoError(t, err)

		spies := 0
		for _, role := range assignment {
			if role == SpyRole {
				spies++
			}
		}
		assert.Equal(t, 1, spies)
	}
}

func TestDeal_SpyIsUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	players := []string{"Ann", "Bo", "Cy"}
	roles := []string{"Pilot", "Attendant"}

	counts := map[string]int{}
	for i := 0; i < 300; i++ {
		spy, _, err := Deal(rng, roles, players)
		require.NoError(t, err)
		counts[spy]++
	}
	for _, name := range players {
		assert.Greater(t, counts[name], 0, "player %q never became spy", name)
	}
}

func TestDeal_InsufficientRoles(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	players := []string{"Ann", "Bo", "Cy", "Di"}
	roles := []string{"Pilot", "Attendant"} // need 3

	_, _, err := Deal(rng, roles, players)
	assert.ErrorIs(t, err, ErrInsufficientRoles)
}

func TestDeal_RolesNotMutated(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	roles := []string{"Pilot", "Attendant", "Mechanic"}
	_, _, err := Deal(rng, roles, []string{"Ann", "Bo", "Cy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pilot", "Attendant", "Mechanic"}, roles)
}
