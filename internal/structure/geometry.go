package structure

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// errTooFewPoints is returned when a superposition has under three points.
var errTooFewPoints = errors.New("at least three points are needed to superpose")

// Place positions an atom from its three reference atoms: bonded to c at
// the given bond length, at the given angle with b and dihedral with a.
// Angles are in degrees.
func Place(a, b, c r3.Vec, bond, angle, dihedral float64) r3.Vec {
	theta := angle * math.Pi / 180
	phi := dihedral * math.Pi / 180

	bc := r3.Unit(r3.Sub(c, b))
	n := r3.Unit(r3.Cross(r3.Sub(b, a), bc))
	m := r3.Cross(n, bc)

	d := r3.Add(
		r3.Scale(-bond*math.Cos(theta), bc),
		r3.Add(
			r3.Scale(bond*math.Sin(theta)*math.Cos(phi), m),
			r3.Scale(bond*math.Sin(theta)*math.Sin(phi), n),
		),
	)
	return r3.Add(c, d)
}

// placePartial positions an atom from one or two references, as for
// water hydrogens. The free directions are taken from a fixed frame.
func placePartial(refs []r3.Vec, geometry []float64) r3.Vec {
	switch len(refs) {
	case 1:
		return r3.Add(refs[0], r3.Vec{X: geometry[0]})
	case 2:
		theta := geometry[1] * math.Pi / 180
		axis := r3.Unit(r3.Sub(refs[1], refs[0]))
		perp := r3.Cross(axis, r3.Vec{Z: 1})
		if r3.Norm(perp) < 1e-6 {
			perp = r3.Cross(axis, r3.Vec{Y: 1})
		}
		perp = r3.Unit(perp)
		dir := r3.Add(r3.Scale(math.Cos(theta), axis), r3.Scale(math.Sin(theta), perp))
		return r3.Add(refs[0], r3.Scale(geometry[0], dir))
	default:
		return Place(refs[2], refs[1], refs[0], geometry[0], geometry[1], geometry[2])
	}
}

// Dihedral returns the dihedral angle a-b-c-d in degrees.
func Dihedral(a, b, c, d r3.Vec) float64 {
	b1 := r3.Sub(b, a)
	b2 := r3.Sub(c, b)
	b3 := r3.Sub(d, c)

	n1 := r3.Cross(b1, b2)
	n2 := r3.Cross(b2, b3)

	x := r3.Dot(n1, n2)
	y := r3.Norm(b2) * r3.Dot(b1, n2)
	return math.Atan2(y, x) * 180 / math.Pi
}

// Rotate turns p by angle degrees around the axis through origin along dir.
func Rotate(p, origin, dir r3.Vec, angle float64) r3.Vec {
	rot := r3.NewRotation(angle*math.Pi/180, r3.Unit(dir))
	return r3.Add(origin, rot.Rotate(r3.Sub(p, origin)))
}

// superpose returns the rigid transform mapping the mobile points onto
// the target points with the least squared deviation.
func superpose(mobile, target []r3.Vec) (func(r3.Vec) r3.Vec, error) {
	if len(mobile) < 3 || len(mobile) != len(target) {
		return nil, errTooFewPoints
	}

	mc := centroid(mobile)
	tc := centroid(target)

	h := mat.NewDense(3, 3, nil)
	for i := range mobile {
		p := components(r3.Sub(mobile[i], mc))
		q := components(r3.Sub(target[i], tc))
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				h.Set(r, c, h.At(r, c)+p[r]*q[c])
			}
		}
	}

	var svd mat.SVD
	if !svd.Factorize(h, mat.SVDFull) {
		return nil, errors.New("failed to factorize covariance matrix")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// keep a proper rotation rather than a reflection
	d := 1.0
	if mat.Det(&u)*mat.Det(&v) < 0 {
		d = -1
	}

	var vd, rot mat.Dense
	vd.Mul(&v, mat.NewDiagDense(3, []float64{1, 1, d}))
	rot.Mul(&vd, u.T())

	return func(p r3.Vec) r3.Vec {
		x := components(r3.Sub(p, mc))
		var out [3]float64
		for r := 0; r < 3; r++ {
			out[r] = rot.At(r, 0)*x[0] + rot.At(r, 1)*x[1] + rot.At(r, 2)*x[2]
		}
		return r3.Add(r3.Vec{X: out[0], Y: out[1], Z: out[2]}, tc)
	}, nil
}

func centroid(points []r3.Vec) r3.Vec {
	var c r3.Vec
	for _, p := range points {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(points)), c)
}

func components(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
