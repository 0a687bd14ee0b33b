package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(out *[]string, name string) System {
	return SystemFunc(func(*World) { *out = append(*out, name) })
}

func TestSchedulerSetOrdering(t *testing.T) {
	var ran []string
	s := NewScheduler()
	s.AddToSet("cleanup", recorder(&ran, "cleanup"))
	s.AddToSet("transition", recorder(&ran, "transition"))
	s.Add(recorder(&ran, "input"))
	s.Configure("cleanup", After("transition"))
	s.Configure("transition", After(DefaultSet))

	require.NoError(t, s.Update(NewWorld()))
	assert.Equal(t, []string{"input", "transition", "cleanup"}, ran)
}

func TestSchedulerBefore(t *testing.T) {
	var ran []string
	s := NewScheduler()
	s.AddToSet("late", recorder(&ran, "late"))
	s.AddToSet("early", recorder(&ran, "early"))
	s.Configure("early", Before("late"))

	require.NoError(t, s.Update(NewWorld()))
	assert.Equal(t, []string{"early", "late"}, ran)
}

func TestSchedulerDeclarationOrderWithoutConstraints(t *testing.T) {
	var ran []string
	s := NewScheduler(recorder(&ran, "a"), recorder(&ran, "b"))
	s.AddToSet("other", recorder(&ran, "c"))

	require.NoError(t, s.Update(NewWorld()))
	assert.Equal(t, []string{"a", "b", "c"}, ran)
	assert.Len(t, s.Systems(), 3)
}

func TestSchedulerCycle(t *testing.T) {
	s := NewScheduler()
	s.Configure("a", After("b"))
	s.Configure("b", After("a"))

	assert.ErrorIs(t, s.Update(NewWorld()), ErrScheduleCycle)
	assert.Nil(t, s.Systems())

	self := NewScheduler()
	self.Configure("a", After("a"))
	assert.ErrorIs(t, self.Build(), ErrScheduleCycle)
}
