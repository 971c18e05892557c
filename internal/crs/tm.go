package crs

import (
	"math"

	"github.com/paulmach/orb"
)

// TransverseMercator is an ellipsoidal Transverse Mercator projection using
// the Krüger series to fourth order in the third flattening. Points are
// orb.Point{lon, lat} in degrees on the geographic side and {E, N} in metres
// on the projected side.
type TransverseMercator struct {
	A      float64 // semi-major axis
	F      float64 // flattening
	Lat0   float64
	Lon0   float64
	K0     float64
	FalseE float64
	FalseN float64

	e, rectA, xi0 float64
	alpha, beta   [4]float64
	delta         [4]float64
}

// PortugalTM06 is EPSG:3763 on the GRS80 ellipsoid. ETRS89 is taken as
// coincident with WGS84.
var PortugalTM06 = NewTransverseMercator(6378137, 1/298.257222101, 39.66825833333333, -8.133108333333334, 1, 0, 0)

func NewTransverseMercator(a, f, lat0, lon0, k0, fe, fn float64) *TransverseMercator {
	tm := &TransverseMercator{A: a, F: f, Lat0: lat0, Lon0: lon0, K0: k0, FalseE: fe, FalseN: fn}
	n := f / (2 - f)
	n2, n3, n4 := n*n, n*n*n, n*n*n*n

	tm.e = math.Sqrt(f * (2 - f))
	tm.rectA = a / (1 + n) * (1 + n2/4 + n4/64)
	tm.alpha = [4]float64{
		n/2 - 2*n2/3 + 5*n3/16 + 41*n4/180,
		13*n2/48 - 3*n3/5 + 557*n4/1440,
		61*n3/240 - 103*n4/140,
		49561 * n4 / 161280,
	}
	tm.beta = [4]float64{
		n/2 - 2*n2/3 + 37*n3/96 - n4/360,
		n2/48 + n3/15 - 437*n4/1440,
		17*n3/480 - 37*n4/840,
		4397 * n4 / 161280,
	}
	tm.delta = [4]float64{
		2*n - 2*n2/3 - 2*n3 + 116*n4/45,
		7*n2/3 - 8*n3/5 - 227*n4/45,
		56*n3/15 - 136*n4/35,
		4279 * n4 / 630,
	}

	xip := math.Atan(tm.conformalT(rad(lat0)))
	tm.xi0 = xip
	for j, a := range tm.alpha {
		tm.xi0 += a * math.Sin(2*float64(j+1)*xip)
	}
	return tm
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

func (tm *TransverseMercator) conformalT(phi float64) float64 {
	s := math.Sin(phi)
	return math.Sinh(math.Atanh(s) - tm.e*math.Atanh(tm.e*s))
}

// Forward maps {lon, lat} to {E, N}.
func (tm *TransverseMercator) Forward(p orb.Point) orb.Point {
	phi := rad(p[1])
	dl := rad(p[0] - tm.Lon0)
	t := tm.conformalT(phi)

	xip := math.Atan2(t, math.Cos(dl))
	etap := math.Atanh(math.Sin(dl) / math.Sqrt(1+t*t))

	xi, eta := xip, etap
	for j, a := range tm.alpha {
		k := 2 * float64(j+1)
		xi += a * math.Sin(k*xip) * math.Cosh(k*etap)
		eta += a * math.Cos(k*xip) * math.Sinh(k*etap)
	}
	return orb.Point{
		tm.FalseE + tm.K0*tm.rectA*eta,
		tm.FalseN + tm.K0*tm.rectA*(xi-tm.xi0),
	}
}

// Inverse maps {E, N} back to {lon, lat}.
func (tm *TransverseMercator) Inverse(p orb.Point) orb.Point {
	xi := (p[1]-tm.FalseN)/(tm.K0*tm.rectA) + tm.xi0
	eta := (p[0] - tm.FalseE) / (tm.K0 * tm.rectA)

	xip, etap := xi, eta
	for j, b := range tm.beta {
		k := 2 * float64(j+1)
		xip -= b * math.Sin(k*xi) * math.Cosh(k*eta)
		etap -= b * math.Cos(k*xi) * math.Sinh(k*eta)
	}
	chi := math.Asin(math.Sin(xip) / math.Cosh(etap))
	phi := chi
	for j, d := range tm.delta {
		phi += d * math.Sin(2*float64(j+1)*chi)
	}
	lon := tm.Lon0 + deg(math.Atan2(math.Sinh(etap), math.Cos(xip)))
	return orb.Point{lon, deg(phi)}
}
