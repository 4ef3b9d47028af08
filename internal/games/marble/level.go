package marble

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/marble-race/internal/config"
	"github.com/vovakirdan/marble-race/internal/physics"
	"github.com/vovakirdan/marble-race/internal/scene"
)

// ObstacleKind is the behavior hosted by one course segment.
type ObstacleKind int

const (
	Spinner ObstacleKind = iota // Bar rotating about the vertical axis
	Limbo                       // Bar moving up and down
	Axe                         // Block swinging left and right
)

// AllKinds is the default set obstacles are drawn from.
var AllKinds = []ObstacleKind{Spinner, Limbo, Axe}

// String returns the kind name as used in config files.
func (k ObstacleKind) String() string {
	switch k {
	case Spinner:
		return "spinner"
	case Limbo:
		return "limbo"
	case Axe:
		return "axe"
	default:
		return fmt.Sprintf("ObstacleKind(%d)", int(k))
	}
}

// ParseObstacleKind converts a config name to an ObstacleKind.
func ParseObstacleKind(s string) (ObstacleKind, error) {
	for _, k := range AllKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("marble: unknown obstacle kind %q", s)
}

// ParseObstacleKinds converts config names. An empty list yields AllKinds.
func ParseObstacleKinds(names []string) ([]ObstacleKind, error) {
	if len(names) == 0 {
		return AllKinds, nil
	}
	kinds := make([]ObstacleKind, 0, len(names))
	for _, n := range names {
		k, err := ParseObstacleKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Generate returns count obstacle kinds drawn uniformly from kinds
// (AllKinds when empty). The same seed always yields the same sequence.
func Generate(count int, seed int64, kinds []ObstacleKind) []ObstacleKind {
	if len(kinds) == 0 {
		kinds = AllKinds
	}
	if count < 0 {
		count = 0
	}
	rng := rand.New(rand.NewSource(seed))
	out := make([]ObstacleKind, count)
	for i := range out {
		out[i] = kinds[rng.Intn(len(kinds))]
	}
	return out
}

// SegmentZ returns the course-axis position of obstacle segment i.
func SegmentZ(i int, spacing float64) float64 {
	return -float64(i+1) * spacing
}

// FinishZ returns the position of the finish segment that follows count
// obstacle segments.
func FinishZ(count int, spacing float64) float64 {
	return -float64(count+1) * spacing
}

// Segment is one obstacle slot of a course.
type Segment struct {
	Index int
	Kind  ObstacleKind
	Z     float64
}

// Course is the generated layout for one (count, seed) pair.
type Course struct {
	Count    int
	Seed     int64
	Spacing  float64
	Segments []Segment
}

// NewCourse generates the layout for count obstacles.
func NewCourse(count int, seed int64, spacing float64, kinds []ObstacleKind) Course {
	seq := Generate(count, seed, kinds)
	c := Course{Count: len(seq), Seed: seed, Spacing: spacing, Segments: make([]Segment, len(seq))}
	for i, k := range seq {
		c.Segments[i] = Segment{Index: i, Kind: k, Z: SegmentZ(i, spacing)}
	}
	return c
}

// FinishZ returns the center of the finish segment.
func (c Course) FinishZ() float64 { return FinishZ(c.Count, c.Spacing) }

// FinishLine returns the z value whose crossing ends a run: the near edge
// of the finish segment.
func (c Course) FinishLine() float64 { return c.FinishZ() + c.Spacing/2 }

// link ties a moving body to the proxy that shows it.
type link struct {
	body  physics.Handle
	proxy int
}

// Level builds a course into the world and scene and owns everything it
// creates there.
type Level struct {
	world  *physics.World
	scene  *scene.Scene
	cfg    config.MarbleConfig
	kinds  []ObstacleKind
	logger *log.Logger

	course    Course
	built     bool
	arena     Arena
	bodies    []physics.Handle
	proxies   []int
	links     []link
	obstacles map[physics.Handle]bool
}

// NewLevel creates an empty level. Call Ensure to build a course.
func NewLevel(world *physics.World, scn *scene.Scene, cfg config.MarbleConfig, logger *log.Logger) (*Level, error) {
	kinds, err := ParseObstacleKinds(cfg.Level.Kinds)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Level{
		world:     world,
		scene:     scn,
		cfg:       cfg,
		kinds:     kinds,
		logger:    logger,
		obstacles: make(map[physics.Handle]bool),
	}, nil
}

// Course returns the current layout.
func (l *Level) Course() Course { return l.course }

// Arena returns the live obstacles.
func (l *Level) Arena() *Arena { return &l.arena }

// IsObstacle reports whether h is one of the level's moving obstacles.
func (l *Level) IsObstacle(h physics.Handle) bool { return l.obstacles[h] }

// BodyCount returns the number of world bodies owned by the level.
func (l *Level) BodyCount() int { return len(l.bodies) }

// Ensure builds the course for (count, seed). It does nothing when that
// course is already built and reports whether it rebuilt.
func (l *Level) Ensure(count int, seed int64) (bool, error) {
	count = max(count, 0)
	if l.built && l.course.Count == count && l.course.Seed == seed {
		return false, nil
	}
	l.Destroy()

	l.course = NewCourse(count, seed, l.cfg.Level.Spacing, l.kinds)
	if err := l.build(); err != nil {
		l.Destroy()
		return false, fmt.Errorf("marble: build course: %w", err)
	}
	l.built = true
	l.logger.Info("course generated", "blocks", count, "seed", seed, "bodies", len(l.bodies))
	return true, nil
}

// Destroy removes every body and proxy the level created.
func (l *Level) Destroy() {
	for _, h := range l.bodies {
		l.world.DestroyBody(h)
	}
	for _, id := range l.proxies {
		l.scene.Remove(id)
	}
	l.bodies = l.bodies[:0]
	l.proxies = l.proxies[:0]
	l.links = l.links[:0]
	l.arena = Arena{}
	clear(l.obstacles)
	l.built = false
}

// Sync copies the pose of every moving level body onto its proxy.
func (l *Level) Sync() {
	for _, lk := range l.links {
		p := l.world.Pose(lk.body)
		l.scene.SetPose(lk.proxy, p.Position, p.Rotation)
	}
}

func (l *Level) build() error {
	c := l.course
	spacing := c.Spacing
	tile := mgl64.Vec3{2, 0.1, spacing / 2}

	// Floor tiles are visual only; one long collider below covers the course.
	l.addProxy(scene.Proxy{Kind: scene.KindStart, HalfExtents: tile, Position: mgl64.Vec3{0, -0.1, 0}})
	for _, seg := range c.Segments {
		l.addProxy(scene.Proxy{Kind: scene.KindFloor, HalfExtents: tile, Position: mgl64.Vec3{0, -0.1, seg.Z}})
	}
	l.addProxy(scene.Proxy{Kind: scene.KindFinish, HalfExtents: tile, Position: mgl64.Vec3{0, -0.1, c.FinishZ()}})

	if err := l.buildBounds(); err != nil {
		return err
	}
	if err := l.buildFinish(); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(obstacleSeed(c.Seed)))
	ocfg := l.cfg.Obstacles
	for _, seg := range c.Segments {
		o := newObstacle(seg, rng, ocfg)
		pose := o.TargetPose(0, ocfg)
		h, err := l.world.CreateBody(physics.BodyDesc{
			Kind:        physics.KinematicPosition,
			Pose:        pose,
			Shape:       physics.Cuboid{HalfExtents: o.HalfExtents(ocfg)},
			Restitution: 0.2,
			Friction:    0,
			UserData:    o.Kind,
		})
		if err != nil {
			return fmt.Errorf("%s obstacle %d: %w", o.Kind, seg.Index, err)
		}
		o.Body = h
		o.Proxy = l.addProxy(scene.Proxy{
			Kind:        scene.KindObstacle,
			HalfExtents: o.HalfExtents(ocfg),
			Position:    pose.Position,
			Rotation:    pose.Rotation,
		})
		l.bodies = append(l.bodies, h)
		l.links = append(l.links, link{body: h, proxy: o.Proxy})
		l.obstacles[h] = true
		l.arena.obstacles = append(l.arena.obstacles, o)
	}
	return nil
}

// buildBounds adds the side walls, the back wall and the floor collider,
// sized to the start segment, the obstacles and the finish segment.
func (l *Level) buildBounds() error {
	length := float64(l.course.Count + 2)
	spacing := l.course.Spacing
	half := spacing / 2
	lcfg := l.cfg.Level
	wallY := lcfg.WallHeight / 2
	wallHalf := lcfg.WallThickness / 2
	centerZ := -(length*half - half) // Middle of the course from start to finish
	sideX := 2 + wallHalf

	walls := []struct {
		kind  scene.Kind
		pos   mgl64.Vec3
		half  mgl64.Vec3
		proxy bool
	}{
		{scene.KindWall, mgl64.Vec3{sideX, wallY, centerZ}, mgl64.Vec3{wallHalf, wallY, length * half}, true},
		{scene.KindWall, mgl64.Vec3{-sideX, wallY, centerZ}, mgl64.Vec3{wallHalf, wallY, length * half}, true},
		{scene.KindWall, mgl64.Vec3{0, wallY, -(length*spacing - half)}, mgl64.Vec3{2, wallY, wallHalf}, true},
		{scene.KindFloor, mgl64.Vec3{0, -0.1, centerZ}, mgl64.Vec3{2, 0.1, length * half}, false},
	}
	for _, w := range walls {
		h, err := l.world.CreateBody(physics.BodyDesc{
			Kind:        physics.Fixed,
			Pose:        physics.NewPose(w.pos),
			Shape:       physics.Cuboid{HalfExtents: w.half},
			Restitution: 0.2,
			Friction:    1,
		})
		if err != nil {
			return fmt.Errorf("bounds: %w", err)
		}
		l.bodies = append(l.bodies, h)
		if w.proxy {
			l.addProxy(scene.Proxy{Kind: w.kind, HalfExtents: w.half, Position: w.pos})
		}
	}
	return nil
}

// buildFinish adds the trophy block standing on the finish segment.
func (l *Level) buildFinish() error {
	half := mgl64.Vec3{0.4, 0.25, 0.4}
	pos := mgl64.Vec3{0, half.Y(), l.course.FinishZ()}
	h, err := l.world.CreateBody(physics.BodyDesc{
		Kind:     physics.Fixed,
		Pose:     physics.NewPose(pos),
		Shape:    physics.Cuboid{HalfExtents: half},
		Friction: 0,
	})
	if err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	l.bodies = append(l.bodies, h)
	l.addProxy(scene.Proxy{Kind: scene.KindFinish, HalfExtents: half, Position: pos})
	return nil
}

func (l *Level) addProxy(p scene.Proxy) int {
	id := l.scene.Add(p)
	l.proxies = append(l.proxies, id)
	return id
}

// obstacleSeed derives the stream for per-obstacle offsets so it does not
// repeat the kind draws.
func obstacleSeed(seed int64) int64 {
	return seed ^ 0x5DEECE66D
}
