package projection

import (
	"math"

	"github.com/woozymasta/geoconv/internal/geo"
)

// Constants of the build grid layout. Eurasia is cut from the conformal net
// along the Bering strait and the Aleutians and rotated next to the Americas.
var (
	bteSin, bteCos = math.Sincos(-150 * math.Pi / 180)

	beringX   = -0.3420420960118339
	beringY   = -0.322211064085279
	arcticY   = -0.2
	arcticM   = (arcticY - sqrt3*arc/4) / (beringX + 0.5*arc)
	arcticB   = arcticY - arcticM*beringX
	aleutianY = -0.5000446805492526
	aleutianX = -0.45
	aleutianM = (beringY - aleutianY) / (beringX - aleutianX)
	aleutianB = beringY - aleutianM*beringX
)

// BTE is the conformal dymaxion net rearranged for the build grid.
type BTE struct {
	net *Dymaxion
}

// NewBTE builds the build grid base transform.
func NewBTE() *BTE {
	return &BTE{net: NewConformalDymaxion()}
}

// Forward maps longitude and latitude in degrees onto the build grid net.
func (b *BTE) Forward(lon, lat float64) (float64, float64, error) {
	x, y, err := b.net.Forward(lon, lat)
	if err != nil {
		return 0, 0, err
	}

	eurasia := eurasian(x, y)
	y -= 0.75 * arc * sqrt3
	if eurasia {
		x += arc
		x, y = bteCos*x-bteSin*y, bteSin*x+bteCos*y
	} else {
		x -= arc
	}
	return y, -x, nil
}

// Inverse maps a build grid net position back to longitude and latitude.
func (b *BTE) Inverse(x, y float64) (float64, float64, error) {
	outside := &geo.DomainError{X: x, Y: y, Inverse: true}
	if !geo.Finite(x, y) {
		return 0, 0, outside
	}

	var eurasia bool
	switch {
	case y < 0:
		eurasia = x > 0
	case y > arc/2:
		eurasia = x > -sqrt3*arc/2
	default:
		eurasia = y*-sqrt3 < x
	}

	nx, ny := -y, x
	if eurasia {
		nx, ny = bteCos*nx+bteSin*ny, bteCos*ny-bteSin*nx
		nx -= arc
	} else {
		nx += arc
	}
	ny += 0.75 * arc * sqrt3

	if eurasia != eurasian(nx, ny) {
		return 0, 0, outside
	}
	lon, lat, err := b.net.Inverse(nx, ny)
	if err != nil {
		return 0, 0, outside
	}
	return lon, lat, nil
}

// String implements fmt.Stringer.
func (b *BTE) String() string {
	return "bte_conformal_dymaxion"
}

// eurasian reports whether a conformal net position belongs to the part
// that is rotated.
func eurasian(x, y float64) bool {
	switch {
	case x > 0:
		return false
	case x < -0.5*arc:
		return true
	case y > sqrt3*arc/4:
		return x < 0
	case y < aleutianY:
		return y < (arc/2+x)*sqrt3
	case y > beringY:
		if y < arcticY {
			return x < beringX
		}
		return y < arcticM*x+arcticB
	}
	return y > aleutianM*x+aleutianB
}
