// Command fsmdemo shows data-driven state machines reacting to keyboard and
// gamepad input, with hot reload of their definitions.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/statemachine/config"
	"github.com/milk9111/statemachine/logging"
	"github.com/milk9111/statemachine/prefabs"
)

func main() {
	machines := flag.String("machines", "fighter,door,combo", "comma separated machine names to spawn")
	watch := flag.Bool("watch", false, "reload definitions when files change (also $FSM_WATCH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.Init(cfg.Logging())

	lib := prefabs.NewLibrary(prefabs.NewRegistry().AllowDynamic(true), prefabs.WithDir(cfg.MachineDir))
	if err := lib.LoadAll(); err != nil {
		logging.Log(logger.Error(), "some machines failed to load", logging.Err(err))
	}

	reloads := make(chan string, 1)
	if *watch || cfg.Watch {
		w, err := prefabs.NewWatcher(cfg.MachineDir)
		if err != nil {
			logging.Log(logger.Warn(), "hot reload disabled", logging.Path(cfg.MachineDir), logging.Err(err))
		} else {
			defer w.Close()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go lib.Watch(ctx, w, func(path string, err error) {
				if err != nil {
					return
				}
				select {
				case reloads <- path:
				default:
				}
			})
		}
	}

	game, err := NewGame(lib, strings.Split(*machines, ","), cfg.EngineOptions(), reloads)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("fsmdemo")
	ebiten.SetTPS(cfg.TickRate)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
