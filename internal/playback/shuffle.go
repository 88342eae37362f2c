package playback

import "math/rand"

const maxHistory = 256

// shuffler hands out playlist indices in a random order that does not
// repeat an index until every other one has been drawn.
type shuffler struct {
	rng     *rand.Rand
	order   []int
	cursor  int
	history []int
}

func newShuffler(rng *rand.Rand) *shuffler {
	return &shuffler{rng: rng}
}

// reset builds a fresh permutation of [0, n). The first draw will not be
// current.
func (s *shuffler) reset(n, current int) {
	s.history = s.history[:0]
	s.permute(n, current)
}

func (s *shuffler) permute(n, avoid int) {
	s.order = s.rng.Perm(n)
	s.cursor = 0
	if n > 1 && s.order[0] == avoid {
		swap := 1 + s.rng.Intn(n-1)
		s.order[0], s.order[swap] = s.order[swap], s.order[0]
	}
}

// next draws the following index. current is pushed onto the history so
// prev can walk back.
func (s *shuffler) next(n, current int) int {
	if len(s.order) != n {
		s.permute(n, current)
	}
	if s.cursor >= len(s.order) {
		s.permute(n, current)
	}
	idx := s.order[s.cursor]
	s.cursor++

	s.history = append(s.history, current)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	return idx
}

// prev pops the index played before the current one. ok is false when
// there is no shuffle history.
func (s *shuffler) prev(n int) (int, bool) {
	for len(s.history) > 0 {
		idx := s.history[len(s.history)-1]
		s.history = s.history[:len(s.history)-1]
		if idx >= 0 && idx < n {
			return idx, true
		}
	}
	return 0, false
}
