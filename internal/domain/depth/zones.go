package depth

import (
	"fmt"
	"math"
	"sort"
)

// flatRange below this spread the map carries no proximity information.
const flatRange = 1e-6

// Map is a row-major relative depth map. Larger values are closer.
type Map struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Values []float64 `json:"depth"`
}

func (m Map) validate() error {
	if m.Width < 3 || m.Height < 1 {
		return fmt.Errorf("depth map too small: %dx%d", m.Width, m.Height)
	}
	if len(m.Values) != m.Width*m.Height {
		return fmt.Errorf("depth map has %d values, want %d", len(m.Values), m.Width*m.Height)
	}
	for i, v := range m.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("depth map value %d is not finite", i)
		}
	}
	return nil
}

// ZonePercents normalises the map to 0-100 and returns the 90th percentile of
// the left, center and right column thirds. The right zone absorbs the
// remainder columns when Width is not divisible by three.
func ZonePercents(m Map) (left, center, right float64, err error) {
	if err := m.validate(); err != nil {
		return 0, 0, 0, err
	}

	lo, hi := m.Values[0], m.Values[0]
	for _, v := range m.Values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	third := m.Width / 3
	zones := [3][]float64{}
	for i := range zones {
		zones[i] = make([]float64, 0, third*m.Height)
	}
	for y := 0; y < m.Height; y++ {
		row := m.Values[y*m.Width : (y+1)*m.Width]
		for x, v := range row {
			norm := 0.0
			if span >= flatRange {
				norm = (v - lo) / span * 100
			}
			switch {
			case x < third:
				zones[0] = append(zones[0], norm)
			case x < 2*third:
				zones[1] = append(zones[1], norm)
			default:
				zones[2] = append(zones[2], norm)
			}
		}
	}
	return Percentile(zones[0], 90), Percentile(zones[1], 90), Percentile(zones[2], 90), nil
}

// Percentile computes the p-th percentile with linear interpolation between
// closest ranks. The input slice is sorted in place.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	rank := p / 100 * float64(len(values)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return values[lower]
	}
	frac := rank - float64(lower)
	return values[lower] + (values[upper]-values[lower])*frac
}
