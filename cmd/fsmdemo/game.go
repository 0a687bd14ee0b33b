package main

import (
	"fmt"
	"hash/fnv"
	"image/color"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/statemachine/ecs"
	"github.com/milk9111/statemachine/fsm"
	"github.com/milk9111/statemachine/input"
	"github.com/milk9111/statemachine/logging"
	"github.com/milk9111/statemachine/prefabs"
)

const (
	baseWidth  = 960
	baseHeight = 540

	cellSize = 120
	cellGap  = 24
)

// actor is one entity on screen and the machine definition it runs.
type actor struct {
	entity  ecs.Entity
	machine string
	version int
}

type Game struct {
	frames int

	world     *ecs.World
	scheduler *ecs.Scheduler
	engine    *fsm.Engine
	input     *input.State
	lib       *prefabs.Library
	logger    *bolt.Logger
	actors    []actor
	reloads   <-chan string
	status    string
}

func NewGame(lib *prefabs.Library, machines []string, opts []fsm.Option, reloads <-chan string) (*Game, error) {
	g := &Game{
		world:   ecs.NewWorld(),
		input:   input.New(),
		lib:     lib,
		logger:  logging.Get(),
		reloads: reloads,
	}
	opts = append(opts,
		fsm.WithInputSource(g.input.Source()),
		fsm.WithErrorHandler(func(err error) {
			g.status = err.Error()
			logging.Log(g.logger.Warn(), "fsm error", logging.Err(err))
		}),
	)
	g.engine = fsm.NewEngine(opts...)

	g.scheduler = ecs.NewScheduler(keyboardSystem{state: g.input})
	g.engine.Install(g.scheduler)
	g.scheduler.AddToSet("input.advance", advanceSystem{state: g.input})
	g.scheduler.Configure("input.advance", ecs.After(fsm.SetRemoveDoneMarkers))
	if err := g.scheduler.Build(); err != nil {
		return nil, err
	}

	for _, name := range machines {
		a := actor{entity: g.world.CreateEntity(), machine: name}
		if err := g.attach(&a); err != nil {
			return nil, err
		}
		g.actors = append(g.actors, a)
	}
	return g, nil
}

func (g *Game) attach(a *actor) error {
	m, err := g.lib.Instantiate(a.machine)
	if err != nil {
		return err
	}
	if err := g.engine.Attach(g.world, a.entity, m); err != nil {
		return err
	}
	a.version = g.lib.Version(a.machine)
	return nil
}

// respawn re-attaches every actor whose definition changed since it was
// attached.
func (g *Game) respawn(force bool) {
	for i := range g.actors {
		a := &g.actors[i]
		if !force && a.version == g.lib.Version(a.machine) {
			continue
		}
		g.engine.Detach(g.world, a.entity)
		if err := g.attach(a); err != nil {
			g.status = err.Error()
			logging.Log(g.logger.Error(), "respawn failed", logging.Machine(a.machine), logging.Err(err))
			continue
		}
		g.status = fmt.Sprintf("reloaded %s v%d", a.machine, a.version)
	}
}

func (g *Game) Update() error {
	g.frames++

	select {
	case <-g.reloads:
		g.respawn(false)
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.respawn(true)
	}

	return g.scheduler.Update(g.world)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    tick %d", g.frames, ebiten.ActualFPS(), g.engine.Clock().Number))
	ebitenutil.DebugPrintAt(screen, "J attack  K block  F/E/X events  R respawn", 0, 16)
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 0, baseHeight-20)
	}

	for i, a := range g.actors {
		m, ok := ecs.Get(g.world, a.entity, fsm.MachineComponent)
		if !ok {
			continue
		}
		state := m.Current().String()
		x := float32(cellGap + i*(cellSize+cellGap))
		y := float32(80)
		vector.DrawFilledRect(screen, x, y, cellSize, cellSize, g.stateColor(a.machine, state), false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %s", a.machine, a.entity), int(x), int(y)+cellSize+4)
		ebitenutil.DebugPrintAt(screen, state, int(x), int(y)+cellSize+20)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.1fs", (g.engine.Clock().Elapsed-m.EnteredAt()).Seconds()), int(x), int(y)+cellSize+36)
	}
}

// stateColor prefers the colour from the definition and falls back to a
// named colour picked by hashing the state name.
func (g *Game) stateColor(machine, state string) color.Color {
	if spec, ok := g.lib.Spec(machine); ok {
		if st, ok := spec.States[state]; ok && st.Color != nil {
			return st.Color.Color
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(state))
	return colornames.Map[colornames.Names[h.Sum32()%uint32(len(colornames.Names))]]
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
