package marble

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/marble-race/internal/config"
	"github.com/vovakirdan/marble-race/internal/core"
	"github.com/vovakirdan/marble-race/internal/physics"
	"github.com/vovakirdan/marble-race/internal/scene"
)

// Options configures a Simulation beyond the YAML config.
type Options struct {
	Blocks int              // Obstacle count; 0 keeps cfg.Level.Blocks
	Seed   int64            // Initial course seed
	Now    func() time.Time // Clock for run timestamps; nil means time.Now
	Logger *log.Logger      // nil discards
}

// Simulation is the per-frame driver of one marble race: it owns the
// world, the scene, the course, the marble and the phase machine.
type Simulation struct {
	cfg    config.MarbleConfig
	logger *log.Logger

	world  *physics.World
	scene  *scene.Scene
	level  *Level
	player *Controller
	phase  *PhaseMachine

	playerProxy int
	t           float64 // Simulated seconds
	prev        core.InputFrame
	bumps       int
	lastErr     error
}

// NewSimulation builds the world, the first course and the marble.
func NewSimulation(cfg config.MarbleConfig, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	blocks := cfg.Level.Blocks
	if opts.Blocks > 0 {
		blocks = opts.Blocks
	}

	world := physics.NewWorld(cfg.Physics.Gravity)
	if cfg.Physics.Iterations > 0 {
		world.SetIterations(cfg.Physics.Iterations)
	}
	scn := scene.New()

	level, err := NewLevel(world, scn, cfg, logger)
	if err != nil {
		return nil, err
	}
	if _, err := level.Ensure(blocks, opts.Seed); err != nil {
		return nil, err
	}
	player, err := NewController(world, cfg.Player, cfg.Camera)
	if err != nil {
		return nil, fmt.Errorf("marble: create player: %w", err)
	}

	s := &Simulation{
		cfg:    cfg,
		logger: logger,
		world:  world,
		scene:  scn,
		level:  level,
		player: player,
		phase:  NewPhaseMachine(blocks, opts.Seed, opts.Now),
		prev:   core.NewInputFrame(),
	}
	s.playerProxy = scn.Add(scene.Proxy{
		Kind:     scene.KindPlayer,
		Geometry: scene.Sphere,
		Radius:   cfg.Player.Radius,
		Position: cfg.Player.Spawn,
	})
	s.phase.Subscribe(s.onPhaseChange)
	world.OnCollision(player.Body(), s.onPlayerContact)
	s.sync(0)
	return s, nil
}

// World returns the physics world.
func (s *Simulation) World() *physics.World { return s.world }

// Scene returns the renderable scene.
func (s *Simulation) Scene() *scene.Scene { return s.scene }

// Level returns the course owner.
func (s *Simulation) Level() *Level { return s.level }

// Player returns the marble controller.
func (s *Simulation) Player() *Controller { return s.player }

// Phase returns the phase machine.
func (s *Simulation) Phase() *PhaseMachine { return s.phase }

// Time returns the simulated time in seconds.
func (s *Simulation) Time() float64 { return s.t }

// Bumps returns the obstacle contacts of the current run.
func (s *Simulation) Bumps() int { return s.bumps }

// Input returns the input of the last frame.
func (s *Simulation) Input() core.InputFrame { return s.prev }

// Err returns the last course rebuild failure, if any.
func (s *Simulation) Err() error { return s.lastErr }

// State returns the overlay view of the run.
func (s *Simulation) State() core.GameState {
	return core.GameState{
		Phase:   s.phase.Phase(),
		Elapsed: s.phase.Elapsed(),
		Blocks:  s.phase.Blocks(),
		Seed:    s.phase.Seed(),
		Bumps:   s.bumps,
	}
}

// Restart requests a fresh course. It reports whether the phase changed.
func (s *Simulation) Restart() bool { return s.phase.Restart() }

// Tick runs one frame. dt is the real time since the previous frame in
// seconds; it scales input and camera smoothing while the world always
// advances by exactly one fixed step.
func (s *Simulation) Tick(in core.InputFrame, dt float64) {
	dt = core.Clamp(dt, 0, s.cfg.Physics.MaxDelta)

	// 1. Input and edge detection.
	pressed := in.Pressed(s.prev)
	s.prev = in

	if s.phase.Phase() == core.PhaseReady && pressed.HasAny(core.GameplayActions...) {
		s.phase.Start()
	}
	if pressed.Has(core.ActionRestart) {
		s.phase.Restart()
	}

	// 2. Player impulses and the jump gate.
	if s.phase.Phase() != core.PhaseReady {
		s.player.Move(Directions{
			Forward:  in.Has(core.ActionForward),
			Backward: in.Has(core.ActionBackward),
			Left:     in.Has(core.ActionLeft),
			Right:    in.Has(core.ActionRight),
		}, dt)
		if pressed.Has(core.ActionJump) {
			s.player.TryJump()
		}
	}

	// 3-4. Obstacle targets, then the world step.
	s.Advance()

	// 5. Copy poses onto the scene.
	s.sync(dt)

	// 6. Phase conditions.
	s.checkPhase()
}

// Advance sets every obstacle's kinematic target for the end of the next
// fixed step and then steps the world once. It is the only caller of
// World.Step, so targets always precede the contacts they affect.
func (s *Simulation) Advance() {
	step := s.cfg.Physics.Timestep
	s.level.Arena().Update(s.world, s.t+step, s.cfg.Obstacles)
	s.world.Step(step)
	s.t += step
}

func (s *Simulation) sync(dt float64) {
	s.level.Sync()
	p := s.world.Pose(s.player.Body())
	s.scene.SetPose(s.playerProxy, p.Position, p.Rotation)
	s.player.UpdateCamera(dt)
	s.scene.SetCamera(s.player.Camera())
}

func (s *Simulation) checkPhase() {
	if s.phase.Phase() != core.PhasePlaying {
		return
	}
	pos := s.player.Position()
	switch {
	case pos.Z() < s.level.Course().FinishLine():
		s.phase.End()
	case pos.Y() < s.cfg.Level.FallThreshold:
		s.phase.Fall()
	}
}

func (s *Simulation) onPhaseChange(c PhaseChange) {
	s.logger.Debug("phase change", "from", c.From, "to", c.To, "seed", c.Seed)
	switch c.To {
	case core.PhasePlaying:
		s.bumps = 0
	case core.PhaseEnded:
		s.logger.Info("run finished", "blocks", s.phase.Blocks(), "seed", s.phase.Seed(),
			"time", s.phase.Elapsed().Round(time.Millisecond), "bumps", s.bumps)
	case core.PhaseReady:
		s.player.Respawn()
		if _, err := s.level.Ensure(s.phase.Blocks(), c.Seed); err != nil {
			s.lastErr = err
			s.logger.Error("course rebuild failed", "err", err)
		}
		s.bumps = 0
	}
}

func (s *Simulation) onPlayerContact(ev physics.CollisionEvent) {
	if s.phase.Phase() == core.PhasePlaying && s.level.IsObstacle(ev.Other) {
		s.bumps++
	}
}
