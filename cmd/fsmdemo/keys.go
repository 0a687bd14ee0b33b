package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/statemachine/ecs"
	"github.com/milk9111/statemachine/input"
)

const stickDeadzone = 0.2

// keyboardSystem polls devices into the shared action state. It runs in the
// default set so the transition pass sees this frame's input.
type keyboardSystem struct {
	state *input.State
}

func (k keyboardSystem) Update(w *ecs.World) {
	attack := ebiten.IsKeyPressed(ebiten.KeyJ) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	block := ebiten.IsKeyPressed(ebiten.KeyK) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)

	moveX, moveY := 0.0, 0.0
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		moveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		moveX += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		moveY -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		moveY += 1
	}
	throttle := 0.0
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		throttle = 1
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Hypot(lx, ly) > stickDeadzone {
			moveX, moveY = lx, ly
		}
		attack = attack || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightLeft)
		block = block || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontBottomLeft)
		if v := ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomRight); v > throttle {
			throttle = v
		}
	}

	k.state.Set("attack", attack)
	k.state.Set("block", block)
	k.state.SetAxis("move", moveX, moveY)
	k.state.SetValue("throttle", throttle)

	// one-shot keys become events
	q := w.Events()
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		q.Emit("interact", "player")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		q.Emit("stagger", nil)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		q.Emit("attack", nil)
	}
}

// advanceSystem closes the input tick after the state machines ran.
type advanceSystem struct {
	state *input.State
}

func (a advanceSystem) Update(*ecs.World) {
	a.state.Advance()
}
