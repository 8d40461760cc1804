package projection

import (
	"math"
	"math/cmplx"
	"sync"
)

// fieldSide is the number of grid steps along one edge of the sampled face.
const fieldSide = 256

// conformal is the angle preserving face transform. The exact map is sampled
// once on a triangular grid that stores, for every conformal position, the
// matching position of Fuller's transform. Lookups interpolate linearly
// inside a grid cell.
type conformal struct{}

var conformalField = sync.OnceValue(newVectorField)

func (conformal) toPlane(v vec3) (float64, float64) {
	x, y := fuller{}.toPlane(v)
	u, w := conformalField().solve(x, y, x/arc+0.5, y/arc+sqrt3/6)
	return (u - 0.5) * arc, (w - sqrt3/6) * arc
}

func (conformal) toSphere(x, y float64) vec3 {
	s := conformalField().at(x/arc+0.5, y/arc+sqrt3/6)
	return fuller{}.toSphere(s.x, s.y)
}

// vectorField holds Fuller positions on a triangular grid over the unit
// triangle (0, 0), (1, 0), (1/2, sqrt(3)/2). Row u has side+1-u entries.
type vectorField struct {
	side   int
	vx, vy [][]float64
}

// fieldSample is an interpolated value with its partial derivatives.
type fieldSample struct {
	x, y       float64
	dxdu, dxdv float64
	dydu, dydv float64
}

func newVectorField() *vectorField {
	f := &vectorField{
		side: fieldSide,
		vx:   make([][]float64, fieldSide+1),
		vy:   make([][]float64, fieldSide+1),
	}
	n := float64(fieldSide)
	for u := 0; u < fieldSide+1; u++ {
		f.vx[u] = make([]float64, fieldSide+1-u)
		f.vy[u] = make([]float64, fieldSide+1-u)
		for v := 0; v < fieldSide+1-u; v++ {
			px := (float64(u) + 0.5*float64(v)) / n
			py := sqrt3 / 2 * float64(v) / n
			zeta := exactFace(complex((px-0.5)*arc, (py-sqrt3/6)*arc))
			f.vx[u][v], f.vy[u][v] = fuller{}.toPlane(stereoToVec(zeta))
		}
	}
	return f
}

// at interpolates the field at (x, y) in unit triangle coordinates.
func (f *vectorField) at(x, y float64) fieldSample {
	side := float64(f.side)
	x *= side
	y *= side

	v := 2 * y / sqrt3
	u := x - v*0.5

	u1, v1 := int(u), int(v)
	if u1 < 0 {
		u1 = 0
	} else if u1 >= f.side {
		u1 = f.side - 1
	}
	if v1 < 0 {
		v1 = 0
	} else if v1 >= f.side-u1 {
		v1 = f.side - u1 - 1
	}

	var x1, y1, x2, y2, x3, y3 float64
	var cx, cy float64
	flip := 1.0
	if y < -sqrt3*(x-float64(u1+v1+1)) || v1 == f.side-u1-1 {
		x1, y1 = f.vx[u1][v1], f.vy[u1][v1]
		x2, y2 = f.vx[u1][v1+1], f.vy[u1][v1+1]
		x3, y3 = f.vx[u1+1][v1], f.vy[u1+1][v1]
		cy = 0.5 * sqrt3 * float64(v1)
		cx = float64(u1+1) + 0.5*float64(v1)
	} else {
		x1, y1 = f.vx[u1][v1+1], f.vy[u1][v1+1]
		x2, y2 = f.vx[u1+1][v1], f.vy[u1+1][v1]
		x3, y3 = f.vx[u1+1][v1+1], f.vy[u1+1][v1+1]
		flip = -1
		y = -y
		cy = -(0.5 * sqrt3 * float64(v1+1))
		cx = float64(u1+1) + 0.5*float64(v1+1)
	}

	w1 := -(y-cy)/sqrt3 - (x - cx)
	w2 := 2 * (y - cy) / sqrt3
	w3 := 1 - w1 - w2

	return fieldSample{
		x:    x1*w1 + x2*w2 + x3*w3,
		y:    y1*w1 + y2*w2 + y3*w3,
		dxdu: (x3 - x1) * side,
		dxdv: side * flip * (2*x2 - x1 - x3) / sqrt3,
		dydu: (y3 - y1) * side,
		dydv: side * flip * (2*y2 - y1 - y3) / sqrt3,
	}
}

// solve finds the unit triangle position whose field value is (fx, fy),
// starting from (x, y).
func (f *vectorField) solve(fx, fy, x, y float64) (float64, float64) {
	for i := 0; i < 5; i++ {
		s := f.at(x, y)
		dx, dy := s.x-fx, s.y-fy
		det := 1 / (s.dxdu*s.dydv - s.dxdv*s.dydu)
		x -= det * (s.dydv*dx - s.dxdv*dy)
		y -= det * (-s.dydu*dx + s.dxdu*dy)
	}
	return x, y
}

// The planar triangle and the spherical face are both images of the unit
// disk under maps that commute with a third of a turn:
//
//	w(z) = P z 2F1(1/3, 2/3; 4/3; z^3)
//	s(z) = S z 2F1(3/10, 19/30; 4/3; z^3) / 2F1(-1/30, 3/10; 2/3; z^3)
//
// where s is the stereographic coordinate around the face centre. P and S
// send z = 1 to a vertex.
var (
	planeRadius  = arc / sqrt3
	stereoRadius = math.Sqrt((1 - faceZ) / (1 + faceZ))
	planeScale   = planeRadius / gaussSum(1.0/3, 2.0/3, 4.0/3)
	stereoScale  = stereoRadius * gaussSum(-1.0/30, 0.3, 2.0/3) / gaussSum(0.3, 19.0/30, 4.0/3)
)

// exactFace maps a point of the planar template triangle onto the
// stereographic coordinate of the template face. Vertices point up.
func exactFace(w complex128) complex128 {
	t := w * -1i
	z := t / complex(planeRadius, 0)
	if cmplx.Abs(1-z*z*z) < 1e-12 {
		return complex(stereoRadius, 0) * z * 1i
	}

	for i := 0; i < 50; i++ {
		x := z * z * z
		val := complex(planeScale, 0) * z * hyp2f1(1.0/3, 2.0/3, 4.0/3, x)
		der := complex(planeScale, 0) * cmplx.Pow(1-x, -2.0/3)
		step := (val - t) / der
		for cmplx.Abs(z-step) > 1 {
			step /= 2
		}
		z -= step
		if cmplx.Abs(step) < 1e-15 {
			break
		}
	}

	x := z * z * z
	s := complex(stereoScale, 0) * z * hyp2f1(0.3, 19.0/30, 4.0/3, x) / hyp2f1(-1.0/30, 0.3, 2.0/3, x)
	return s * 1i
}

func stereoToVec(s complex128) vec3 {
	r := real(s)*real(s) + imag(s)*imag(s)
	return vec3{2 * real(s) / (1 + r), 2 * imag(s) / (1 + r), (1 - r) / (1 + r)}
}

// gaussSum is 2F1(a, b; c; 1).
func gaussSum(a, b, c float64) float64 {
	return math.Gamma(c) * math.Gamma(c-a-b) / (math.Gamma(c-a) * math.Gamma(c-b))
}

// hyp2f1 evaluates the Gauss hypergeometric function inside the closed unit
// disk. c-a-b must not be an integer.
func hyp2f1(a, b, c float64, x complex128) complex128 {
	y := 1 - x
	switch {
	case cmplx.Abs(x) <= 0.5:
		return hypSeries(a, b, c, x)
	case cmplx.Abs(x) <= 0.5*cmplx.Abs(y):
		return cmplx.Pow(y, complex(-a, 0)) * hypSeries(a, c-b, c, x/(x-1))
	case cmplx.Abs(y) <= 0.5:
		d := c - a - b
		p := math.Gamma(c) * math.Gamma(d) / (math.Gamma(c-a) * math.Gamma(c-b))
		q := math.Gamma(c) * math.Gamma(-d) / (math.Gamma(a) * math.Gamma(b))
		return complex(p, 0)*hypSeries(a, b, 1-d, y) +
			complex(q, 0)*cmplx.Pow(y, complex(d, 0))*hypSeries(c-a, c-b, 1+d, y)
	}
	return hypODE(a, b, c, x)
}

func hypSeries(a, b, c float64, x complex128) complex128 {
	sum, term := complex(1, 0), complex(1, 0)
	for n := 0.0; n < 2000; n++ {
		term *= complex((a+n)*(b+n)/((c+n)*(n+1)), 0) * x
		sum += term
		if cmplx.Abs(term) <= 1e-17*cmplx.Abs(sum) {
			break
		}
	}
	return sum
}

// hypODE integrates the hypergeometric equation along the ray from
// |x| = 1/2, where the series converges fast, out to x.
func hypODE(a, b, c float64, x complex128) complex128 {
	const steps = 64
	t := x * complex(0.5/cmplx.Abs(x), 0)
	f := hypSeries(a, b, c, t)
	fp := complex(a*b/c, 0) * hypSeries(a+1, b+1, c+1, t)

	ab, ca := complex(a*b, 0), complex(c, 0)
	ab1 := complex(a+b+1, 0)
	acc := func(t, f, fp complex128) complex128 {
		return (ab*f - (ca-ab1*t)*fp) / (t * (1 - t))
	}

	h := (x - t) / steps
	for i := 0; i < steps; i++ {
		k1f, k1p := fp, acc(t, f, fp)
		k2f, k2p := fp+h/2*k1p, acc(t+h/2, f+h/2*k1f, fp+h/2*k1p)
		k3f, k3p := fp+h/2*k2p, acc(t+h/2, f+h/2*k2f, fp+h/2*k2p)
		k4f, k4p := fp+h*k3p, acc(t+h, f+h*k3f, fp+h*k3p)
		f += h / 6 * (k1f + 2*k2f + 2*k3f + k4f)
		fp += h / 6 * (k1p + 2*k2p + 2*k3p + k4p)
		t += h
	}
	return f
}
