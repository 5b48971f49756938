package mapview

import "errors"

// recorder is an in-memory Widget that logs every call.
type recorder struct {
	inits   []Viewport
	added   []Marker
	updated []Marker
	removed []string
	flights []FlyTo
	closes  int
	failAdd bool
}

func (r *recorder) Init(vp Viewport) error {
	r.inits = append(r.inits, vp)
	return nil
}

func (r *recorder) AddMarker(m Marker) error {
	if r.failAdd {
		return errors.New("widget gone")
	}
	r.added = append(r.added, m)
	return nil
}

func (r *recorder) UpdateMarker(m Marker) error {
	r.updated = append(r.updated, m)
	return nil
}

func (r *recorder) RemoveMarker(id string) error {
	r.removed = append(r.removed, id)
	return nil
}

func (r *recorder) FlyTo(f FlyTo) error {
	r.flights = append(r.flights, f)
	return nil
}

func (r *recorder) Close() error {
	r.closes++
	return nil
}
