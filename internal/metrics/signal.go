package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/rigidcheck/internal/dynamo"
)

// Signal accumulates summary statistics over a stream of scalar samples in
// constant memory. Statistics must be declared before the first sample.
type Signal struct {
	kinds []Kind
	count int

	maxAbs   float64
	min, max float64
	mean, m2 float64
	meanSq   float64
}

// NewSignal returns a Signal tracking kinds. Invalid kinds are ignored; use
// InsertStatistic to get an error for them.
func NewSignal(kinds ...Kind) *Signal {
	s := &Signal{}
	for _, k := range kinds {
		_ = s.InsertStatistic(k)
	}
	return s
}

// InsertStatistic declares k as tracked. Declaring an already tracked kind is a no-op.
func (s *Signal) InsertStatistic(k Kind) error {
	if !k.valid() {
		return fmt.Errorf("%w: %s", dynamo.ErrUnsupportedStatistic, k)
	}
	if s.count > 0 {
		return fmt.Errorf("%w: %s", dynamo.ErrStatisticsLocked, k)
	}
	if s.Tracks(k) {
		return nil
	}
	s.kinds = append(s.kinds, k)
	return nil
}

// InsertStatistics declares every statistic in a name list such as "maxAbs,rms".
// Nothing is declared when any name is unsupported.
func (s *Signal) InsertStatistics(names string) error {
	kinds, err := ParseKinds(names)
	if err != nil {
		return err
	}
	if s.count > 0 {
		return fmt.Errorf("%w: %s", dynamo.ErrStatisticsLocked, names)
	}
	for _, k := range kinds {
		if err := s.InsertStatistic(k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Signal) Tracks(k Kind) bool {
	for _, have := range s.kinds {
		if have == k {
			return true
		}
	}
	return false
}

// Statistics returns the tracked kinds in declaration order.
func (s *Signal) Statistics() []Kind {
	out := make([]Kind, len(s.kinds))
	copy(out, s.kinds)
	return out
}

// InsertData folds x into every running statistic.
func (s *Signal) InsertData(x float64) {
	s.count++
	n := float64(s.count)

	if a := math.Abs(x); a > s.maxAbs {
		s.maxAbs = a
	}
	if s.count == 1 {
		s.min, s.max = x, x
	} else {
		s.min = math.Min(s.min, x)
		s.max = math.Max(s.max, x)
	}

	delta := x - s.mean
	s.mean += delta / n
	s.m2 += delta * (x - s.mean)
	s.meanSq += (x*x - s.meanSq) / n
}

func (s *Signal) Count() int { return s.count }

// Value returns the current value of statistic k, or 0 before any data.
func (s *Signal) Value(k Kind) float64 {
	if s.count == 0 {
		return 0
	}
	switch k {
	case MaxAbs:
		return s.maxAbs
	case Mean:
		return s.mean
	case RMS:
		return math.Sqrt(s.meanSq)
	case Variance:
		return s.m2 / float64(s.count)
	case Min:
		return s.min
	case Max:
		return s.max
	}
	return 0
}

// Map returns name -> value for every tracked statistic.
func (s *Signal) Map() map[string]float64 {
	out := make(map[string]float64, len(s.kinds))
	for _, k := range s.kinds {
		out[k.String()] = s.Value(k)
	}
	return out
}

// Reset discards accumulated data but keeps the declared statistics.
func (s *Signal) Reset() {
	kinds := s.kinds
	*s = Signal{kinds: kinds}
}
