package geo

// SequenceFunc rewrites a coordinate sequence. It must not modify its input.
type SequenceFunc func(Sequence) (Sequence, error)

// Edit rebuilds g with every coordinate sequence passed through fn.
// The result never shares coordinate storage with g.
func Edit(g Geometry, fn SequenceFunc) (Geometry, error) {
	switch v := g.(type) {
	case *Point:
		out, err := fn(Sequence{v.Coord})
		if err != nil {
			return nil, err
		}
		return &Point{Coord: out[0]}, nil
	case *LineString:
		out, err := fn(v.Coords)
		if err != nil {
			return nil, err
		}
		return &LineString{Coords: out}, nil
	case *LinearRing:
		out, err := editRing(v, fn)
		if err != nil {
			return nil, err
		}
		return out, nil
	case *Polygon:
		shell, err := editRing(v.Shell, fn)
		if err != nil {
			return nil, err
		}
		p := &Polygon{Shell: shell, Holes: make([]*LinearRing, 0, len(v.Holes))}
		for _, h := range v.Holes {
			hole, err := editRing(h, fn)
			if err != nil {
				return nil, err
			}
			p.Holes = append(p.Holes, hole)
		}
		return p, nil
	case *Collection:
		c := &Collection{Kind: v.Kind, Children: make([]Geometry, 0, len(v.Children))}
		for _, child := range v.Children {
			out, err := Edit(child, fn)
			if err != nil {
				return nil, err
			}
			c.Children = append(c.Children, out)
		}
		return c, nil
	case *Unsupported:
		return &Unsupported{Name: v.Name}, nil
	}
	return g, nil
}

func editRing(r *LinearRing, fn SequenceFunc) (*LinearRing, error) {
	if r == nil {
		return nil, nil
	}
	out, err := fn(r.Coords)
	if err != nil {
		return nil, err
	}
	return &LinearRing{Coords: out}, nil
}

// Coordinates flattens every coordinate of g in document order.
func Coordinates(g Geometry) Sequence {
	var out Sequence
	walk(g, func(s Sequence) { out = append(out, s...) })
	return out
}

func walk(g Geometry, fn func(Sequence)) {
	switch v := g.(type) {
	case *Point:
		fn(Sequence{v.Coord})
	case *LineString:
		fn(v.Coords)
	case *LinearRing:
		fn(v.Coords)
	case *Polygon:
		if v.Shell != nil {
			fn(v.Shell.Coords)
		}
		for _, h := range v.Holes {
			fn(h.Coords)
		}
	case *Collection:
		for _, c := range v.Children {
			walk(c, fn)
		}
	}
}
