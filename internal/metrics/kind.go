package metrics

import (
	"fmt"
	"strings"

	"github.com/san-kum/rigidcheck/internal/dynamo"
)

// Kind identifies a summary statistic an accumulator can track.
type Kind int

const (
	MaxAbs Kind = iota
	Mean
	RMS
	Variance
	Min
	Max
)

var kindNames = [...]string{
	MaxAbs:   "maxAbs",
	Mean:     "mean",
	RMS:      "rms",
	Variance: "var",
	Min:      "min",
	Max:      "max",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// Kinds lists every supported statistic in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind resolves a statistic name such as "maxAbs".
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", dynamo.ErrUnsupportedStatistic, name)
}

// ParseKinds resolves a comma or whitespace separated list of statistic names.
// An empty list is an error.
func ParseKinds(names string) ([]Kind, error) {
	fields := strings.FieldsFunc(names, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty statistic list", dynamo.ErrUnsupportedStatistic)
	}

	kinds := make([]Kind, 0, len(fields))
	for _, f := range fields {
		k, err := ParseKind(f)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
