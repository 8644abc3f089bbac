package layout

import (
	"math"
	"math/rand"

	"github.com/aretw0/turingviz/pkg/domain"
)

const (
	initialRadius    = 10.0
	separationPasses = 500
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

type body struct {
	id     string
	x, y   float64
	vx, vy float64
}

type spring struct {
	source, target int
	strength       float64
	bias           float64
}

// Simulation is a force-directed layout over a fixed graph.
// Each Tick is synchronous; positions are valid between ticks.
type Simulation struct {
	cfg     ForceConfig
	bodies  []*body
	springs []spring
	alpha   float64
	ticks   int
	settled bool
	rng     *rand.Rand
}

// NewSimulation places nodes (initial coordinates first, phyllotaxis
// otherwise) and prepares the link springs.
func NewSimulation(g Graph, cfg ForceConfig, initial Positions) *Simulation {
	s := &Simulation{
		cfg:   cfg,
		alpha: 1,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}

	index := make(map[string]int, len(g.Nodes))
	cx, cy := cfg.Width/2, cfg.Height/2
	for i, id := range g.Nodes {
		b := &body{id: id}
		if p, ok := initial[id]; ok {
			b.x, b.y = p.X, p.Y
		} else {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			b.x, b.y = cx+r*math.Cos(a), cy+r*math.Sin(a)
		}
		index[id] = i
		s.bodies = append(s.bodies, b)
	}

	// 1. Degree per node, loops and unknown endpoints skipped
	degree := make([]int, len(s.bodies))
	var pairs [][2]int
	for _, l := range g.Links {
		si, okS := index[l[0]]
		ti, okT := index[l[1]]
		if !okS || !okT || si == ti {
			continue
		}
		degree[si]++
		degree[ti]++
		pairs = append(pairs, [2]int{si, ti})
	}

	// 2. Spring strength and bias
	for _, p := range pairs {
		ds, dt := float64(degree[p[0]]), float64(degree[p[1]])
		s.springs = append(s.springs, spring{
			source:   p[0],
			target:   p[1],
			strength: 1 / math.Min(ds, dt),
			bias:     ds / (ds + dt),
		})
	}

	if len(s.bodies) == 0 {
		s.settled = true
	}
	return s
}

// Tick advances the simulation once. It returns false when already settled.
// The tick that brings alpha under AlphaMin (or reaches MaxTicks) freezes the
// simulation and runs the final separation pass.
func (s *Simulation) Tick() bool {
	if s.settled {
		return false
	}

	s.alpha += (0 - s.alpha) * s.cfg.AlphaDecay
	s.ticks++

	s.applyCharge()
	s.applyLinks()
	s.applyCollide()

	keep := 1 - s.cfg.VelocityDecay
	for _, b := range s.bodies {
		b.vx *= keep
		b.vy *= keep
		b.x += b.vx
		b.y += b.vy
	}
	s.applyCenter()

	if s.alpha < s.cfg.AlphaMin || (s.cfg.MaxTicks > 0 && s.ticks >= s.cfg.MaxTicks) {
		s.freeze()
	}
	return true
}

// Settled reports whether the simulation is frozen.
func (s *Simulation) Settled() bool { return s.settled }

// Alpha returns the current energy term.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Ticks returns the number of ticks run.
func (s *Simulation) Ticks() int { return s.ticks }

// Positions returns a copy of the current node coordinates.
func (s *Simulation) Positions() Positions {
	out := make(Positions, len(s.bodies))
	for _, b := range s.bodies {
		out[b.id] = domain.Point{X: b.x, Y: b.y}
	}
	return out
}

func (s *Simulation) freeze() {
	for _, b := range s.bodies {
		b.vx, b.vy = 0, 0
	}
	s.separate()
	s.settled = true
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// applyCharge is the pairwise many-body force.
func (s *Simulation) applyCharge() {
	k := s.cfg.Charge * s.alpha
	for i, a := range s.bodies {
		for j, b := range s.bodies {
			if i == j {
				continue
			}
			dx, dy := b.x-a.x, b.y-a.y
			if dx == 0 {
				dx = s.jiggle()
			}
			if dy == 0 {
				dy = s.jiggle()
			}
			l := dx*dx + dy*dy
			if l < 1 {
				l = math.Sqrt(l)
			}
			a.vx += dx * k / l
			a.vy += dy * k / l
		}
	}
}

// applyLinks pulls linked nodes toward the rest length.
func (s *Simulation) applyLinks() {
	for _, sp := range s.springs {
		src, dst := s.bodies[sp.source], s.bodies[sp.target]
		dx := dst.x + dst.vx - src.x - src.vx
		dy := dst.y + dst.vy - src.y - src.vy
		if dx == 0 {
			dx = s.jiggle()
		}
		if dy == 0 {
			dy = s.jiggle()
		}
		l := math.Sqrt(dx*dx + dy*dy)
		l = (l - s.cfg.LinkDistance) / l * s.alpha * sp.strength
		dx, dy = dx*l, dy*l
		dst.vx -= dx * sp.bias
		dst.vy -= dy * sp.bias
		src.vx += dx * (1 - sp.bias)
		src.vy += dy * (1 - sp.bias)
	}
}

// applyCollide resolves predicted overlaps between equal-radius nodes.
func (s *Simulation) applyCollide() {
	r := 2 * s.cfg.CollideRadius
	for i := 0; i < len(s.bodies); i++ {
		a := s.bodies[i]
		for j := i + 1; j < len(s.bodies); j++ {
			b := s.bodies[j]
			dx := a.x + a.vx - b.x - b.vx
			dy := a.y + a.vy - b.y - b.vy
			l := dx*dx + dy*dy
			if l >= r*r {
				continue
			}
			if dx == 0 {
				dx = s.jiggle()
				l += dx * dx
			}
			if dy == 0 {
				dy = s.jiggle()
				l += dy * dy
			}
			l = math.Sqrt(l)
			k := (r - l) / l / 2
			a.vx += dx * k
			a.vy += dy * k
			b.vx -= dx * k
			b.vy -= dy * k
		}
	}
}

// applyCenter translates every node so the centroid sits on the canvas center.
func (s *Simulation) applyCenter() {
	var sx, sy float64
	for _, b := range s.bodies {
		sx += b.x
		sy += b.y
	}
	n := float64(len(s.bodies))
	sx = sx/n - s.cfg.Width/2
	sy = sy/n - s.cfg.Height/2
	for _, b := range s.bodies {
		b.x -= sx
		b.y -= sy
	}
}

// separate pushes node pairs apart until no two centers are closer than
// the collision diameter.
func (s *Simulation) separate() {
	minDist := 2 * s.cfg.CollideRadius
	if minDist <= 0 {
		return
	}
	for pass := 0; pass < separationPasses; pass++ {
		moved := false
		for i := 0; i < len(s.bodies); i++ {
			a := s.bodies[i]
			for j := i + 1; j < len(s.bodies); j++ {
				b := s.bodies[j]
				dx, dy := b.x-a.x, b.y-a.y
				d := math.Hypot(dx, dy)
				if d >= minDist {
					continue
				}
				var ux, uy float64
				if d == 0 {
					angle := s.rng.Float64() * 2 * math.Pi
					ux, uy = math.Cos(angle), math.Sin(angle)
				} else {
					ux, uy = dx/d, dy/d
				}
				push := (minDist-d)/2 + 1e-6
				a.x -= ux * push
				a.y -= uy * push
				b.x += ux * push
				b.y += uy * push
				moved = true
			}
		}
		if !moved {
			return
		}
	}
}
