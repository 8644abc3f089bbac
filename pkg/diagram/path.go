package diagram

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aretw0/turingviz/pkg/domain"
)

// NodeRadius is the default state circle radius.
const NodeRadius = 20.0

const (
	loopAngle   = -15 * math.Pi / 180
	arcSep      = -math.Pi / 4
	arcRadius   = 6.0 / 5.0
	loopLabelDy = 30.0
)

// Path returns the SVG path of an edge between two node centers.
// It returns false when no path can be drawn (coincident centers of a
// non-loop edge).
func Path(shape Shape, src, dst domain.Point, r float64) (string, bool) {
	switch shape {
	case ShapeLoop:
		return LoopPath(src, r), true
	case ShapeArc:
		return ArcPath(src, dst, r)
	default:
		return StraightPath(src, dst, r)
	}
}

// LoopPath draws a self-loop above the node, leaving from the apex and
// landing on the circle at -15 degrees.
func LoopPath(p domain.Point, r float64) string {
	end := polar(r, loopAngle)
	return fmt.Sprintf("M %s,%s a 19,27 45 1,1 %s,%s",
		num(p.X), num(p.Y-r), num(end.X), num(end.Y+r))
}

// ArcPath draws one edge of a bidirectional pair. Both directions bow to
// their own side because the path is always emitted left to right.
func ArcPath(src, dst domain.Point, r float64) (string, bool) {
	s, t, radius, ok := arcAnchors(src, dst, r)
	if !ok {
		return "", false
	}
	if src.X <= dst.X {
		return fmt.Sprintf("M %s %s A %s %s 0 0,1 %s %s",
			num(s.X), num(s.Y), num(radius), num(radius), num(t.X), num(t.Y)), true
	}
	return fmt.Sprintf("M %s %s A %s %s 0 0,0 %s %s",
		num(t.X), num(t.Y), num(radius), num(radius), num(s.X), num(s.Y)), true
}

// StraightPath draws from the source center to the target circle boundary.
func StraightPath(src, dst domain.Point, r float64) (string, bool) {
	off := sub(dst, src)
	d := norm(off)
	if d == 0 {
		return "", false
	}
	t := sub(dst, scale(off, r/d))
	return fmt.Sprintf("M %s %s L %s %s", num(src.X), num(src.Y), num(t.X), num(t.Y)), true
}

// LabelTransform returns the SVG transform placing the label of an edge.
// Loop labels sit above the node without rotation. Straight labels sit at the
// center midpoint and arc labels at the arc apex, so each label of a
// bidirectional pair rides its own curve. Both rotate along the source to
// target direction.
func LabelTransform(shape Shape, src, dst domain.Point, r float64) (string, bool) {
	if shape == ShapeLoop {
		return fmt.Sprintf("translate(%s,%s)", num(src.X+r/2), num(src.Y-r-loopLabelDy)), true
	}

	off := sub(dst, src)
	if norm(off) == 0 {
		return "", false
	}
	deg := math.Atan2(off.Y, off.X) * 180 / math.Pi
	mid := domain.Point{X: (src.X + dst.X) / 2, Y: (src.Y + dst.Y) / 2}

	if shape == ShapeArc {
		mid = arcMidpoint(src, dst, r)
	}
	return fmt.Sprintf("translate(%s,%s) rotate(%s)", num(mid.X), num(mid.Y), num(deg)), true
}

func arcAnchors(src, dst domain.Point, r float64) (s, t domain.Point, radius float64, ok bool) {
	off := sub(dst, src)
	d := norm(off)
	if d == 0 {
		return s, t, 0, false
	}
	angle := math.Atan2(off.Y, off.X)
	s = add(src, polar(r, angle+arcSep))
	t = add(dst, polar(r, angle+math.Pi-arcSep))
	return s, t, arcRadius * d, true
}

// arcMidpoint is the apex of the drawn arc: the anchor chord midpoint pushed
// out by the sagitta, to the left of the source to target direction.
func arcMidpoint(src, dst domain.Point, r float64) domain.Point {
	s, t, radius, ok := arcAnchors(src, dst, r)
	if !ok {
		return src
	}
	chord := sub(t, s)
	c := norm(chord)
	mid := domain.Point{X: (s.X + t.X) / 2, Y: (s.Y + t.Y) / 2}
	if c == 0 {
		return mid
	}
	half := c / 2
	sagitta := radius
	if radius > half {
		sagitta = radius - math.Sqrt(radius*radius-half*half)
	}
	normal := domain.Point{X: chord.Y / c, Y: -chord.X / c}
	return add(mid, scale(normal, sagitta))
}

func polar(length, angle float64) domain.Point {
	return domain.Point{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
}

func add(a, b domain.Point) domain.Point { return domain.Point{X: a.X + b.X, Y: a.Y + b.Y} }
func sub(a, b domain.Point) domain.Point { return domain.Point{X: a.X - b.X, Y: a.Y - b.Y} }
func scale(a domain.Point, k float64) domain.Point { return domain.Point{X: a.X * k, Y: a.Y * k} }
func norm(a domain.Point) float64 { return math.Hypot(a.X, a.Y) }

// num formats a coordinate with at most two decimals.
func num(f float64) string {
	v := math.Round(f*100) / 100
	if v == 0 {
		v = 0 // normalizes -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatNumber formats a coordinate the way paths do.
func FormatNumber(f float64) string { return num(f) }
