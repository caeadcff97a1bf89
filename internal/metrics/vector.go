package metrics

import "github.com/go-gl/mathgl/mgl64"

// Vector3 tracks statistics per axis of a 3-vector stream and over its
// Euclidean magnitude.
type Vector3 struct {
	x, y, z, mag Signal
}

func NewVector3(kinds ...Kind) *Vector3 {
	v := &Vector3{}
	for _, k := range kinds {
		_ = v.InsertStatistic(k)
	}
	return v
}

func (v *Vector3) signals() [4]*Signal {
	return [4]*Signal{&v.x, &v.y, &v.z, &v.mag}
}

func (v *Vector3) InsertStatistic(k Kind) error {
	for _, s := range v.signals() {
		if err := s.InsertStatistic(k); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vector3) InsertStatistics(names string) error {
	kinds, err := ParseKinds(names)
	if err != nil {
		return err
	}
	for _, k := range kinds {
		if err := v.InsertStatistic(k); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vector3) InsertData(d mgl64.Vec3) {
	v.x.InsertData(d.X())
	v.y.InsertData(d.Y())
	v.z.InsertData(d.Z())
	v.mag.InsertData(d.Len())
}

func (v *Vector3) X() *Signal   { return &v.x }
func (v *Vector3) Y() *Signal   { return &v.y }
func (v *Vector3) Z() *Signal   { return &v.z }
func (v *Vector3) Mag() *Signal { return &v.mag }

func (v *Vector3) Count() int { return v.mag.Count() }

// Map flattens per-axis statistics as "x_maxAbs", "mag_rms" and so on.
func (v *Vector3) Map() map[string]float64 {
	out := make(map[string]float64)
	for prefix, s := range map[string]*Signal{"x": &v.x, "y": &v.y, "z": &v.z, "mag": &v.mag} {
		for name, val := range s.Map() {
			out[prefix+"_"+name] = val
		}
	}
	return out
}

func (v *Vector3) Reset() {
	for _, s := range v.signals() {
		s.Reset()
	}
}
