package scene

import (
	"strings"
	"testing"

	"github.com/d5/tengo/v2"

	"github.com/spaghettifunk/tundra/engine/math"
)

const walkerScript = `
on_create := func(self) {
	self.state.created = 1
}

on_update := func(self, dt) {
	n := self.state.updates
	if is_undefined(n) {
		n = 0
	}
	self.state.updates = n + 1
	self.translate(1, 0, 0)
}

on_const_update := func(self, dt) {
	self.set_property("last_dt", dt)
}
`

const sprinterScript = `
on_update := func(self, dt) {
	self.state.updates = self.state.updates + 1
	self.translate(0, 10, 0)
}
`

func stateInt(t *testing.T, sc *ScriptComponent, key string) int64 {
	t.Helper()
	if sc.instance == nil {
		t.Fatal("script not attached")
	}
	v, ok := sc.instance.state.Value[key].(*tengo.Int)
	if !ok {
		t.Fatalf("state.%s is %v, want an int", key, sc.instance.state.Value[key])
	}
	return v.Value
}

func TestScriptHooks(t *testing.T) {
	s, _, assets := newTestScene()
	assets.scripts["scripts/walker.tengo"] = walkerScript

	e := s.CreateEntity("walker")
	sc := AddComponent(e, ScriptComponent{Path: "scripts/walker.tengo"})

	s.OnUpdate(0.5)
	s.OnUpdate(0.5)
	s.OnConstUpdate(0.25)

	if got := stateInt(t, sc, "created"); got != 1 {
		t.Errorf("on_create ran %d times", got)
	}
	if got := stateInt(t, sc, "updates"); got != 2 {
		t.Errorf("expected 2 updates, got %d", got)
	}
	if got := GetComponent[TransformComponent](e).Position(); got != math.NewVec3(2, 0, 0) {
		t.Errorf("expected position (2,0,0), got %v", got)
	}
	v, ok := GetComponent[PropertiesComponent](e).Get("last_dt")
	if !ok || v != 0.25 {
		t.Errorf("expected last_dt 0.25, got %v", v)
	}
}

func TestScriptHotReloadKeepsState(t *testing.T) {
	s, _, assets := newTestScene()
	const path = "scripts/walker.tengo"
	assets.scripts[path] = walkerScript

	e := s.CreateEntity("walker")
	sc := AddComponent(e, ScriptComponent{Path: path})
	s.OnUpdate(0.016)

	assets.touch(path, sprinterScript)
	// the change is only picked up by the next update pass
	if !sc.instance.program.hooks[phaseCreate] {
		t.Fatal("program swapped outside of OnUpdate")
	}
	s.OnUpdate(0.016)

	if got := stateInt(t, sc, "updates"); got != 2 {
		t.Errorf("state lost across reload, updates = %d", got)
	}
	if got := GetComponent[TransformComponent](e).Position(); got != math.NewVec3(1, 10, 0) {
		t.Errorf("expected position (1,10,0), got %v", got)
	}
}

func TestScriptBrokenReloadKeepsPrevious(t *testing.T) {
	s, _, assets := newTestScene()
	const path = "scripts/walker.tengo"
	assets.scripts[path] = walkerScript

	e := s.CreateEntity("walker")
	sc := AddComponent(e, ScriptComponent{Path: path})
	s.OnUpdate(0.016)

	assets.touch(path, "on_update := func(self, dt) {")
	s.OnUpdate(0.016)

	if got := stateInt(t, sc, "updates"); got != 2 {
		t.Errorf("previous program should keep running, updates = %d", got)
	}
}

func TestScriptMissingIsInert(t *testing.T) {
	s, _, _ := newTestScene()
	e := s.CreateEntity("ghost")
	sc := AddComponent(e, ScriptComponent{Path: "scripts/missing.tengo"})

	s.OnUpdate(0.016)
	if sc.instance != nil {
		t.Fatal("a missing script must leave the component inert")
	}
}

func TestScriptDestroyHook(t *testing.T) {
	s, _, assets := newTestScene()
	assets.scripts["scripts/bye.tengo"] = `
on_destroy := func(self) {
	self.log("bye")
	self.set_property("gone", true)
}
`
	e := s.CreateEntity("bye")
	AddComponent(e, ScriptComponent{Path: "scripts/bye.tengo"})
	s.OnUpdate(0.016)

	pc := AddComponent(e, PropertiesComponent{})
	s.DestroyEntity(e)
	if v, ok := pc.Get("gone"); !ok || v != true {
		t.Fatalf("on_destroy did not run, got %v", v)
	}
}

func TestCloseReleasesWatches(t *testing.T) {
	s, _, assets := newTestScene()
	assets.scripts["scripts/walker.tengo"] = walkerScript
	AddComponent(s.CreateEntity("walker"), ScriptComponent{Path: "scripts/walker.tengo"})
	if len(assets.watchers) != 1 {
		t.Fatalf("expected one watch, got %d", len(assets.watchers))
	}
	s.Close()
	if len(assets.watchers) != 0 {
		t.Fatal("Close must cancel the watches")
	}
	if s.EntityCount() != 0 {
		t.Fatal("Close must destroy every entity")
	}
}

func TestCompileScriptGlobals(t *testing.T) {
	p, err := compileScript("walker.tengo", []byte(walkerScript))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, name := range []string{"__phase", "__self", "__dt"} {
		if !p.compiled.IsDefined(name) {
			t.Errorf("global %s not declared", name)
		}
	}
	for phase, want := range map[scriptPhase]bool{
		phaseCreate:      true,
		phaseUpdate:      true,
		phaseConstUpdate: true,
		phaseDestroy:     false,
	} {
		if p.hooks[phase] != want {
			t.Errorf("hook %s detected = %v, want %v", phase, p.hooks[phase], want)
		}
	}

	_, err = compileScript("broken.tengo", []byte("on_update := func(self, dt) {"))
	if err == nil || !strings.Contains(err.Error(), "broken.tengo") {
		t.Fatalf("expected a compile error naming the script, got %v", err)
	}
}
