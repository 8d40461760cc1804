package projection

import (
	"math"

	"github.com/woozymasta/geoconv/internal/geo"
)

type vec3 [3]float64

type mat3 [3]vec3

func (m *mat3) apply(v vec3) vec3 {
	return vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

var (
	sqrt3 = math.Sqrt(3)

	// arc is the angular length of one icosahedron edge. Unfolded triangles
	// have the same side length.
	arc = 2 * math.Asin(math.Sqrt(5-math.Sqrt(5))/math.Sqrt(10))

	// faceZ is the cosine of the angle between a face centre and its vertices.
	faceZ = math.Sqrt(5+2*math.Sqrt(5)) / math.Sqrt(15)

	edge6  = math.Sqrt(8) / math.Sqrt(5+math.Sqrt(5)) / 6
	dve    = math.Sqrt(3+math.Sqrt(5)) / math.Sqrt(5+math.Sqrt(5))
	tanSum = -3 * edge6 / dve
)

// vertices of the icosahedron in Fuller's orientation, as longitude and
// latitude in degrees.
var vertices = [12][2]float64{
	{10.536199, 64.700000},
	{-5.245390, 2.300882},
	{58.157706, 10.447378},
	{122.300000, 39.100000},
	{-143.478490, 50.103201},
	{-67.132330, 23.717925},
	{36.521510, -50.103200},
	{112.867673, -23.717930},
	{174.754610, -2.300882},
	{-121.842290, -10.447350},
	{-57.700000, -39.100000},
	{-169.463800, -64.700000},
}

// faces lists the vertex indices of every face. The first vertex fixes the
// orientation of the face on the net. Faces 20 and 21 are the halves of
// faces 14 and 15 that are moved to the other side of the net.
var faces = [22][3]int{
	{2, 1, 6}, {1, 0, 2}, {0, 1, 5}, {1, 5, 10}, {1, 6, 10},
	{7, 2, 6}, {2, 3, 7}, {3, 0, 2}, {0, 3, 4}, {4, 0, 5},
	{5, 4, 9}, {9, 5, 10}, {10, 9, 11}, {11, 6, 10}, {6, 7, 11},
	{8, 7, 3}, {8, 3, 4}, {8, 4, 9}, {9, 8, 11}, {7, 11, 8},
	{11, 6, 7}, {3, 8, 7},
}

// netCenters holds the face centres on the net, in half edges horizontally
// and twelfths of a row vertically.
var netCenters = [22][2]float64{
	{-3, 7}, {-2, 5}, {-1, 7}, {2, 5}, {4, 5},
	{-4, 1}, {-3, -1}, {-2, 1}, {-1, -1}, {0, 1},
	{1, -1}, {2, 1}, {3, -1}, {4, 1}, {5, -1},
	{-3, -5}, {-1, -5}, {1, -5}, {2, -7}, {-4, -7},
	{-5, -5}, {-2, -7},
}

// flipped faces point down on the net.
var flipped = [22]bool{
	true, false, true, false, false,
	true, false, true, false, true, false, true, false, true, false,
	true, true, true, false, false,
	true, false,
}

type icosaNet struct {
	centroids [22]vec3
	rot       [22]mat3
	inv       [22]mat3
	centers   [22][2]float64
}

var ico = newIcosaNet()

func newIcosaNet() *icosaNet {
	n := new(icosaNet)

	var sph [12][2]float64
	var cart [12]vec3
	for i, v := range vertices {
		lambda, phi := v[0]*math.Pi/180, (90-v[1])*math.Pi/180
		sph[i] = [2]float64{lambda, phi}
		cart[i] = cartesian(lambda, phi)
	}

	for i, f := range faces {
		n.centers[i] = [2]float64{netCenters[i][0] * arc / 2, netCenters[i][1] * arc * sqrt3 / 12}

		c := normalize(add(add(cart[f[0]], cart[f[1]]), cart[f[2]]))
		n.centroids[i] = c
		cl, cp := spherical(c)

		first := sph[f[0]]
		vl, _ := spherical(yRotate(cartesian(first[0]-cl, first[1]), -cp))
		n.rot[i] = zyzRotation(-cl, -cp, math.Pi/2-vl)
		n.inv[i] = zyzRotation(vl-math.Pi/2, cp, cl)
	}
	return n
}

// nearestFace picks the real face whose centre is closest to v.
func (n *icosaNet) nearestFace(v vec3) int {
	best, bestDist := 0, math.Inf(1)
	for i := 0; i < 20; i++ {
		d := sub(n.centroids[i], v)
		if dist := dot(d, d); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// faceAt returns the net triangle holding (x, y), or -1.
func (n *icosaNet) faceAt(x, y float64) int {
	const eps = 1e-12
	for i := range n.centers {
		dx, dy := (x-n.centers[i][0])/arc, (y-n.centers[i][1])/arc
		if flipped[i] {
			dx, dy = -dx, -dy
		}
		if dy >= -sqrt3/6-eps && dy <= sqrt3/3-sqrt3*math.Abs(dx)+eps {
			return i
		}
	}
	return -1
}

// faceMap maps a point of the template face, centred on the z axis, onto
// the planar template triangle and back.
type faceMap interface {
	toPlane(v vec3) (x, y float64)
	toSphere(x, y float64) vec3
}

// Dymaxion is Fuller's unfolded icosahedron projection of the unit sphere.
// Net coordinates are measured in sphere radii.
type Dymaxion struct {
	faces faceMap
	name  string
}

// NewDymaxion builds the net with Fuller's original face transform.
func NewDymaxion() *Dymaxion {
	return &Dymaxion{faces: fuller{}, name: "dymaxion"}
}

// NewConformalDymaxion builds the net with the angle preserving face
// transform.
func NewConformalDymaxion() *Dymaxion {
	return &Dymaxion{faces: conformal{}, name: "conformal_dymaxion"}
}

// Forward maps longitude and latitude in degrees onto the net.
func (d *Dymaxion) Forward(lon, lat float64) (float64, float64, error) {
	if !geo.Finite(lon, lat) || math.Abs(lon) > 180 || math.Abs(lat) > 90 {
		return 0, 0, &geo.DomainError{X: lon, Y: lat}
	}
	v := cartesian(lon*math.Pi/180, (90-lat)*math.Pi/180)
	f := ico.nearestFace(v)

	x, y := d.faces.toPlane(ico.rot[f].apply(v))
	if flipped[f] {
		x, y = -x, -y
	}
	if (f == 14 || (f == 15 && x > y*sqrt3)) && x > 0 {
		x, y = 0.5*x-0.5*sqrt3*y, 0.5*sqrt3*x+0.5*y
		f += 6
	}
	return x + ico.centers[f][0], y + ico.centers[f][1], nil
}

// Inverse maps a net position back to longitude and latitude in degrees.
// Positions between the unfolded faces are outside the domain.
func (d *Dymaxion) Inverse(x, y float64) (float64, float64, error) {
	outside := &geo.DomainError{X: x, Y: y, Inverse: true}
	if !geo.Finite(x, y) {
		return 0, 0, outside
	}
	f := ico.faceAt(x, y)
	if f < 0 {
		return 0, 0, outside
	}
	x -= ico.centers[f][0]
	y -= ico.centers[f][1]

	// Only half of each split face is on the net.
	switch f {
	case 14:
		if x > 0 {
			return 0, 0, outside
		}
	case 20:
		if -y*sqrt3 > x {
			return 0, 0, outside
		}
	case 15:
		if x > 0 && x > y*sqrt3 {
			return 0, 0, outside
		}
	case 21:
		if x < 0 || -y*sqrt3 > x {
			return 0, 0, outside
		}
	}
	if flipped[f] {
		x, y = -x, -y
	}

	v := ico.inv[f].apply(d.faces.toSphere(x, y))
	lambda, phi := spherical(v)
	return lambda * 180 / math.Pi, 90 - phi*180/math.Pi, nil
}

// String implements fmt.Stringer.
func (d *Dymaxion) String() string {
	return d.name
}

// fuller is Fuller's face transform: each point is placed by its angular
// distances to the three edges.
type fuller struct{}

func (fuller) toPlane(v vec3) (float64, float64) {
	s := faceZ / v[2]
	xp, yp := s*v[0], s*v[1]
	a := math.Atan((2*yp/sqrt3 - edge6) / dve)
	b := math.Atan((xp - yp/sqrt3 - edge6) / dve)
	c := math.Atan((-xp - yp/sqrt3 - edge6) / dve)
	return 0.5 * (b - c), (2*a - b - c) / (2 * sqrt3)
}

// toSphere solves tan(a) + tan(b) + tan(c) = tanSum for tan(c) with Newton's
// method; a and b differ from c by known offsets.
func (fuller) toSphere(x, y float64) vec3 {
	tanAOff := math.Tan(sqrt3*y + x)
	tanBOff := math.Tan(2 * x)
	aNum := tanAOff*tanAOff + 1
	bNum := tanBOff*tanBOff + 1

	tanA, tanB, tanC := tanAOff, tanBOff, 0.0
	aDen, bDen := 1.0, 1.0
	for i := 0; i < 5; i++ {
		f := tanA + tanB + tanC - tanSum
		fp := aNum*aDen*aDen + bNum*bDen*bDen + 1
		tanC -= f / fp

		aDen = 1 / (1 - tanC*tanAOff)
		bDen = 1 / (1 - tanC*tanBOff)
		tanA = (tanC + tanAOff) * aDen
		tanB = (tanC + tanBOff) * bDen
	}

	yp := sqrt3 * (dve*tanA + edge6) / 2
	xp := dve*tanB + yp/sqrt3 + edge6

	xz, yz := xp/faceZ, yp/faceZ
	z := 1 / math.Sqrt(1+xz*xz+yz*yz)
	return vec3{z * xz, z * yz, z}
}

// cartesian converts longitude and colatitude in radians to a unit vector.
func cartesian(lambda, phi float64) vec3 {
	s := math.Sin(phi)
	return vec3{s * math.Cos(lambda), s * math.Sin(lambda), math.Cos(phi)}
}

// spherical returns the longitude and colatitude of v in radians.
func spherical(v vec3) (lambda, phi float64) {
	return math.Atan2(v[1], v[0]), math.Atan2(math.Hypot(v[0], v[1]), v[2])
}

func yRotate(v vec3, angle float64) vec3 {
	s, c := math.Sincos(angle)
	return normalize(vec3{c*v[0] + s*v[2], v[1], c*v[2] - s*v[0]})
}

// zyzRotation composes rotations about z by a, y by b and z by c.
func zyzRotation(a, b, c float64) mat3 {
	sa, ca := math.Sincos(a)
	sb, cb := math.Sincos(b)
	sc, cc := math.Sincos(c)
	return mat3{
		{ca*cb*cc - sc*sa, -sa*cb*cc - sc*ca, cc * sb},
		{sc*cb*ca + cc*sa, cc*ca - sc*cb*sa, sc * sb},
		{-sb * ca, sb * sa, cb},
	}
}

func add(a, b vec3) vec3 { return vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

func sub(a, b vec3) vec3 { return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func dot(a, b vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func normalize(a vec3) vec3 {
	n := math.Sqrt(dot(a, a))
	if n == 0 {
		return a
	}
	return vec3{a[0] / n, a[1] / n, a[2] / n}
}
