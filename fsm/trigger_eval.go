package fsm

// evaluate is the single interpreter for the trigger tree.
func evaluate(t *Trigger, ctx *Context) Outcome {
	switch t.kind {
	case kindAlways:
		return Satisfied()
	case kindNever:
		return NotSatisfied
	case kindDone:
		v, ok := ctx.World.GetComponent(ctx.Entity, doneKind)
		if !ok {
			return NotSatisfied
		}
		d, ok := v.(*Done)
		if !ok || d.pass != ctx.pass || (t.status != 0 && d.Status != t.status) {
			return NotSatisfied
		}
		return SatisfiedWith(*d)
	case kindEvent:
		i := ctx.findEvent(t.name)
		if i < 0 {
			return NotSatisfied
		}
		if ctx.exclusive {
			ctx.claims = append(ctx.claims, i)
		}
		return SatisfiedWith(ctx.Tick.Events.At(i).Data)
	case kindPressed, kindJustPressed, kindJustReleased, kindValue, kindAxis:
		return evaluateInput(t, ctx.Input())
	case kindAfter:
		if ctx.StateTime() >= t.dur {
			return Satisfied()
		}
		return NotSatisfied
	case kindComponent:
		v, ok := ctx.World.GetComponent(ctx.Entity, t.comp)
		if !ok || (t.pred != nil && !t.pred(v)) {
			return NotSatisfied
		}
		return SatisfiedWith(v)
	case kindFunc:
		return t.fn(ctx)
	case kindScript:
		return t.script.evaluate(ctx)
	case kindNot:
		mark := len(ctx.claims)
		out := evaluate(&t.children[0], ctx)
		ctx.claims = ctx.claims[:mark]
		if out.ok {
			return NotSatisfied
		}
		return Satisfied()
	case kindAll:
		mark := len(ctx.claims)
		var out Outcome
		for i := range t.children {
			out = evaluate(&t.children[i], ctx)
			if !out.ok {
				ctx.claims = ctx.claims[:mark]
				return NotSatisfied
			}
		}
		return out
	case kindAny:
		for i := range t.children {
			if out := evaluate(&t.children[i], ctx); out.ok {
				return out
			}
		}
		return NotSatisfied
	case kindThen:
		return evaluateThen(t, ctx)
	default:
		return NotSatisfied
	}
}

func evaluateInput(t *Trigger, in InputSnapshot) Outcome {
	if in == nil {
		return NotSatisfied
	}
	switch t.kind {
	case kindPressed:
		return boolOutcome(in.Pressed(t.name))
	case kindJustPressed:
		return boolOutcome(in.JustPressed(t.name))
	case kindJustReleased:
		return boolOutcome(in.JustReleased(t.name))
	case kindValue:
		v := in.Value(t.name)
		if v < t.min || v > t.max {
			return NotSatisfied
		}
		return SatisfiedWith(v)
	case kindAxis:
		a := in.Axis(t.name)
		if l := a.Length(); l < t.min || l > t.max {
			return NotSatisfied
		}
		return SatisfiedWith(a)
	}
	return NotSatisfied
}

// evaluateThen arms the sequence when the first child succeeds and only
// considers the second child on a later pass. Progress holds the arming pass
// number; passes start at 1 so zero means idle.
func evaluateThen(t *Trigger, ctx *Context) Outcome {
	progress := ctx.machine.progress
	if t.slot >= len(progress) {
		return NotSatisfied
	}
	armed := progress[t.slot]
	if armed != 0 && armed < ctx.pass {
		return evaluate(&t.children[1], ctx)
	}
	if armed == 0 {
		mark := len(ctx.claims)
		out := evaluate(&t.children[0], ctx)
		ctx.claims = ctx.claims[:mark]
		if out.ok {
			progress[t.slot] = ctx.pass
		}
	}
	return NotSatisfied
}

func boolOutcome(ok bool) Outcome {
	if ok {
		return Satisfied()
	}
	return NotSatisfied
}
