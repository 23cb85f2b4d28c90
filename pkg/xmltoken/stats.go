package xmltoken

// statsEnabled gates every Stats update; with false the compiler drops them.
const statsEnabled = true

// Stats are counters collected while tokenizing.
type Stats struct {
	BytesConsumed    int64
	TokensEmitted    uint64
	ErrorsEmitted    uint64
	BuffersAllocated uint64
	BuffersReused    uint64
	MaxTextArena     int
	MaxTagArena      int
	ErrorArenaBytes  int
}

func (s *Stats) count(field *uint64) {
	if statsEnabled {
		*field++
	}
}

func (s *Stats) peak(field *int, value int) {
	if statsEnabled && value > *field {
		*field = value
	}
}
