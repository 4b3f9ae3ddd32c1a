package game

// Tally computes the vote outcome from a ballot map (voter → accused).
// A strict plurality accuses a single player. An exact tie for the maximum,
// or an empty ballot set, yields tied=true and no accused: the round counts
// as a spy win by default.
func Tally(ballots map[string]string) (accused string, counts map[string]int, tied bool) {
	counts = make(map[string]int, len(ballots))
	for _, target := range ballots {
		counts[target]++
	}

	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return "", counts, true
	}

	var top []string
	for target, n := range counts {
		if n == max {
			top = append(top, target)
		}
	}
	if len(top) != 1 {
		return "", counts, true
	}
	return top[0], counts, false
}
