package game

import "math/rand"

// SpyRole is the sentinel role held by the one player who does not learn
// the location.
const SpyRole = "spy"

// Deal assigns roles for a round: one player becomes the spy, every other
// player receives a distinct role from the location's role list. Sampling is
// shuffle-and-slice, so it is O(n) and never reuses a role.
//
// The returned assignment maps every player name to a role; the spy maps to
// SpyRole.
func Deal(rng *rand.Rand, roles []string, players []string) (spy string, assignment map[string]string, err error) {
	if len(roles) < len(players)-1 {
		return "", nil, ErrInsufficientRoles
	}

	order := make([]string, len(players))
	copy(order, players)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	pool := make([]string, len(roles))
	copy(pool, roles)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	spy = order[0]
	assignment = make(map[string]string, len(players))
	assignment[spy] = SpyRole
	for i, name := range order[1:] {
		assignment[name] = pool[i]
	}
	return spy, assignment, nil
}
