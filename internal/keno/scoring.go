package keno

// Points returns the payout for a ticket of picked numbers that matched hits of
// the winning numbers.
func Points(picked, hits int) int {
	switch {
	case picked == 1:
		if hits == 1 {
			return 3
		}
		return 0
	case picked == 2:
		if hits == 2 {
			return 15
		}
		return 0
	case picked == 3:
		switch hits {
		case 3:
			return 45
		case 2:
			return 5
		}
		return 0
	case picked == 4:
		switch hits {
		case 4:
			return 100
		case 3:
			return 10
		case 2:
			return 2
		}
		return 0
	case picked == 5:
		switch hits {
		case 5:
			return 500
		case 4:
			return 50
		case 3:
			return 5
		}
		return 0
	case picked <= 10:
		return hits * 50
	case picked <= 15:
		return hits * 100
	default:
		return hits * 150
	}
}

// Hits counts the distinct chosen numbers present among the winning numbers.
func Hits(chosen, winning []int) int {
	drawn := make(map[int]struct{}, len(winning))
	for _, n := range winning {
		drawn[n] = struct{}{}
	}

	seen := make(map[int]struct{}, len(chosen))
	hits := 0
	for _, n := range chosen {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := drawn[n]; ok {
			hits++
		}
	}
	return hits
}
