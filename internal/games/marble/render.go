package marble

import (
	"fmt"
	"math"
	"math/bits"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/marble-race/internal/core"
	"github.com/vovakirdan/marble-race/internal/physics"
	"github.com/vovakirdan/marble-race/internal/scene"
)

const (
	hudRows    = 2 // Status line and banner at the top
	footerRows = 1 // Key indicator at the bottom
	nearPlane  = 0.1
	farPlane   = 200
	cellAspect = 2.0 // Terminal cells are about twice as tall as wide
	ballSides  = 16
)

var kindColors = map[scene.Kind]core.Color{
	scene.KindFloor:    core.ColorDarkGray,
	scene.KindStart:    core.ColorGreen,
	scene.KindFinish:   core.ColorBrightYellow,
	scene.KindWall:     core.ColorBlue,
	scene.KindObstacle: core.ColorBrightRed,
	scene.KindPlayer:   core.ColorBrightWhite,
}

// Render draws the race into dst.
func (g *Game) Render(dst *core.Screen) {
	if g.sim == nil {
		msg := "Marble Race could not start"
		if g.err != nil {
			msg = g.err.Error()
		}
		dst.DrawTextCentered(dst.Height()/2, msg, core.ColorRed)
		return
	}

	view := core.NewRect(0, hudRows, dst.Width(), dst.Height()-hudRows-footerRows)
	if !view.Empty() {
		drawScene(dst, g.sim.Scene(), g.cfg.Camera.FOV, view)
	}
	g.drawHUD(dst)
	drawKeys(dst, g.sim.Input())
}

// projector maps world points into a screen rectangle.
type projector struct {
	mvp  mgl64.Mat4
	view core.Rect
}

func newProjector(cam scene.Camera, fovDeg float64, view core.Rect) (projector, bool) {
	if cam.Position.Sub(cam.Target).Len() < 1e-9 {
		return projector{}, false
	}
	aspect := float64(view.W) / (float64(view.H) * cellAspect)
	proj := mgl64.Perspective(mgl64.DegToRad(fovDeg), aspect, nearPlane, farPlane)
	look := mgl64.LookAtV(cam.Position, cam.Target, up)
	return projector{mvp: proj.Mul4(look), view: view}, true
}

func (p projector) toScreen(c mgl64.Vec4) (x, y float64) {
	nx, ny := c.X()/c.W(), c.Y()/c.W()
	x = float64(p.view.X) + (nx+1)/2*float64(p.view.W)
	y = float64(p.view.Y) + (1-ny)/2*float64(p.view.H)
	return x, y
}

// line draws a world-space segment, cut at the near plane and the view rect.
func (p projector) line(dst *core.Screen, a, b mgl64.Vec3, r rune, c core.Color) {
	ca := p.mvp.Mul4x1(a.Vec4(1))
	cb := p.mvp.Mul4x1(b.Vec4(1))
	if ca.W() < nearPlane && cb.W() < nearPlane {
		return
	}
	if ca.W() < nearPlane {
		ca = ca.Add(cb.Sub(ca).Mul((nearPlane - ca.W()) / (cb.W() - ca.W())))
	} else if cb.W() < nearPlane {
		cb = cb.Add(ca.Sub(cb).Mul((nearPlane - cb.W()) / (ca.W() - cb.W())))
	}

	x0, y0 := p.toScreen(ca)
	x1, y1 := p.toScreen(cb)
	v := p.view
	x0, y0, x1, y1, ok := clipSegment(x0, y0, x1, y1,
		float64(v.X), float64(v.Y), float64(v.Right()-1), float64(v.Bottom()-1))
	if !ok {
		return
	}
	if r == 0 {
		r = slopeRune(x1-x0, y1-y0)
	}
	dst.DrawLine(round(x0), round(y0), round(x1), round(y1), r, c)
}

// point projects a world point. ok is false behind the camera.
func (p projector) point(w mgl64.Vec3) (x, y float64, ok bool) {
	c := p.mvp.Mul4x1(w.Vec4(1))
	if c.W() < nearPlane {
		return 0, 0, false
	}
	x, y = p.toScreen(c)
	return x, y, true
}

func drawScene(dst *core.Screen, scn *scene.Scene, fovDeg float64, view core.Rect) {
	cam := scn.Camera()
	p, ok := newProjector(cam, fovDeg, view)
	if !ok {
		return
	}

	// Painter's order: far to near, the marble always last.
	proxies := scn.Proxies()
	sort.SliceStable(proxies, func(i, j int) bool {
		pi, pj := proxies[i], proxies[j]
		if (pi.Kind == scene.KindPlayer) != (pj.Kind == scene.KindPlayer) {
			return pj.Kind == scene.KindPlayer
		}
		return pi.Position.Sub(cam.Position).Len() > pj.Position.Sub(cam.Position).Len()
	})

	camRight, camUp := cameraBasis(cam)
	for _, px := range proxies {
		c := kindColors[px.Kind]
		switch px.Geometry {
		case scene.Sphere:
			drawBall(dst, p, px, camRight, camUp, c)
		default:
			drawBox(dst, p, px, c)
		}
	}
}

func drawBox(dst *core.Screen, p projector, px scene.Proxy, c core.Color) {
	pose := physics.Pose{Position: px.Position, Rotation: px.Rotation}
	local := physics.Cuboid{HalfExtents: px.HalfExtents}.Corners()
	var world [8]mgl64.Vec3
	for i, v := range local {
		world[i] = pose.Transform(v)
	}
	for i := 0; i < 8; i++ {
		for j := i + 1; j < 8; j++ {
			if bits.OnesCount(uint(i^j)) == 1 {
				p.line(dst, world[i], world[j], 0, c)
			}
		}
	}
}

func drawBall(dst *core.Screen, p projector, px scene.Proxy, right, upv mgl64.Vec3, c core.Color) {
	r := px.Radius
	// A meridian fixed to the ball shows it rolling.
	var prev mgl64.Vec3
	for k := 0; k <= ballSides; k++ {
		a := 2 * math.Pi * float64(k) / ballSides
		v := px.Position.Add(px.Rotation.Rotate(mgl64.Vec3{0, math.Cos(a) * r, math.Sin(a) * r}))
		if k > 0 {
			p.line(dst, prev, v, '.', core.ColorGray)
		}
		prev = v
	}
	// Silhouette, always facing the camera.
	for k := 0; k <= ballSides; k++ {
		a := 2 * math.Pi * float64(k) / ballSides
		v := px.Position.Add(right.Mul(math.Cos(a) * r)).Add(upv.Mul(math.Sin(a) * r))
		if k > 0 {
			p.line(dst, prev, v, 'o', c)
		}
		prev = v
	}
	if x, y, ok := p.point(px.Position); ok && p.view.Contains(round(x), round(y)) {
		dst.SetColored(round(x), round(y), '@', c)
	}
}

// cameraBasis returns the camera's right and up unit vectors.
func cameraBasis(cam scene.Camera) (right, upv mgl64.Vec3) {
	fwd := cam.Target.Sub(cam.Position).Normalize()
	right = fwd.Cross(up)
	if right.Len() < 1e-9 {
		right = mgl64.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	return right, right.Cross(fwd)
}

// clipSegment clips a segment to [xmin,xmax]x[ymin,ymax] (Liang-Barsky).
func clipSegment(x0, y0, x1, y1, xmin, ymin, xmax, ymax float64) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	ps := [4]float64{-dx, dx, -dy, dy}
	qs := [4]float64{x0 - xmin, xmax - x0, y0 - ymin, ymax - y0}
	for i, p := range ps {
		q := qs[i]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// slopeRune picks a line character for a screen direction.
func slopeRune(dx, dy float64) rune {
	adx, ady := math.Abs(dx), math.Abs(dy)*cellAspect
	switch {
	case ady < adx*0.5:
		return '-'
	case adx < ady*0.5:
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

func round(v float64) int { return int(math.Floor(v + 0.5)) }

func (g *Game) drawHUD(dst *core.Screen) {
	st := g.sim.State()
	w := dst.Width()

	status := fmt.Sprintf(" MARBLE RACE  blocks %d  seed %d  bumps %d", st.Blocks, st.Seed, st.Bumps)
	dst.DrawTextColored(0, 0, status, core.ColorCyan)
	timer := fmt.Sprintf("%.2f ", st.Elapsed.Seconds())
	dst.DrawTextColored(w-len(timer), 0, timer, core.ColorBrightWhite)

	switch st.Phase {
	case core.PhaseReady:
		dst.DrawTextCentered(1, "Press an arrow key or WASD to start", core.ColorBrightYellow)
	case core.PhasePlaying:
		drawProgress(dst, 1, g.progress())
	case core.PhaseEnded:
		msg := fmt.Sprintf("FINISHED in %.2fs  |  R new course  |  Q quit", st.Elapsed.Seconds())
		dst.DrawTextCentered(1, msg, core.ColorBrightYellow)
	}
}

// progress returns how far along the course the marble is, in [0, 1].
func (g *Game) progress() float64 {
	line := g.sim.Level().Course().FinishLine()
	if line >= 0 {
		return 1
	}
	return core.Clamp(g.sim.Player().Position().Z()/line, 0, 1)
}

func drawProgress(dst *core.Screen, y int, frac float64) {
	width := core.Clamp(dst.Width()-10, 0, 40)
	if width <= 0 {
		return
	}
	filled := int(frac * float64(width))
	x := (dst.Width() - width - 2) / 2
	dst.SetColored(x, y, '[', core.ColorGray)
	for i := 0; i < width; i++ {
		r, c := '·', core.ColorDarkGray
		if i < filled {
			r, c = '=', core.ColorGreen
		}
		dst.SetColored(x+1+i, y, r, c)
	}
	dst.SetColored(x+width+1, y, ']', core.ColorGray)
}

// drawKeys shows which controls are held this frame.
func drawKeys(dst *core.Screen, in core.InputFrame) {
	keys := []struct {
		label  string
		action core.Action
	}{
		{"←", core.ActionLeft},
		{"↑", core.ActionForward},
		{"↓", core.ActionBackward},
		{"→", core.ActionRight},
		{"space", core.ActionJump},
	}
	total := 0
	for _, k := range keys {
		total += len([]rune(k.label)) + 3
	}
	x := (dst.Width() - total) / 2
	y := dst.Height() - 1
	for _, k := range keys {
		c := core.ColorDarkGray
		if in.Has(k.action) {
			c = core.ColorBrightWhite
		}
		text := "[" + k.label + "]"
		dst.DrawTextColored(x, y, text, c)
		x += len([]rune(text)) + 1
	}
}
