package scene

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/ecs"
	"github.com/spaghettifunk/tundra/engine/math"
)

type scriptPhase string

const (
	phaseCreate      scriptPhase = "create"
	phaseUpdate      scriptPhase = "update"
	phaseConstUpdate scriptPhase = "const_update"
	phaseDestroy     scriptPhase = "destroy"
)

var scriptHooks = []struct {
	phase   scriptPhase
	pattern *regexp.Regexp
	call    string
}{
	{phaseCreate, regexp.MustCompile(`(?m)^\s*on_create\s*:?=`), "on_create(__self)"},
	{phaseUpdate, regexp.MustCompile(`(?m)^\s*on_update\s*:?=`), "on_update(__self, __dt)"},
	{phaseConstUpdate, regexp.MustCompile(`(?m)^\s*on_const_update\s*:?=`), "on_const_update(__self, __dt)"},
	{phaseDestroy, regexp.MustCompile(`(?m)^\s*on_destroy\s*:?=`), "on_destroy(__self)"},
}

// scriptProgram is a compiled script shared by every entity using the path.
type scriptProgram struct {
	path     string
	compiled *tengo.Compiled
	hooks    map[scriptPhase]bool
}

// scriptInstance is the per-entity clone. state survives reloads.
type scriptInstance struct {
	program  *scriptProgram
	compiled *tengo.Compiled
	state    *tengo.Map
	created  bool
}

// scriptEngine compiles tengo scripts, runs their hooks and reloads them
// when the asset watcher reports a change. Watch callbacks only record the
// path; recompilation happens on the thread calling Scene.OnUpdate.
type scriptEngine struct {
	scene    *Scene
	programs map[string]*scriptProgram
	watches  map[string]func()

	mu      sync.Mutex
	pending map[string]struct{}
}

func newScriptEngine(s *Scene) *scriptEngine {
	return &scriptEngine{
		scene:    s,
		programs: make(map[string]*scriptProgram),
		watches:  make(map[string]func()),
		pending:  make(map[string]struct{}),
	}
}

func compileScript(path string, src []byte) (*scriptProgram, error) {
	hooks := make(map[scriptPhase]bool)
	var dispatch strings.Builder
	for _, h := range scriptHooks {
		if !h.pattern.Match(src) {
			continue
		}
		hooks[h.phase] = true
		fmt.Fprintf(&dispatch, "if __phase == %q {\n\t%s\n}\n", string(h.phase), h.call)
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + dispatch.String()))
	for name, value := range map[string]any{
		"__phase": "",
		"__self":  map[string]any{},
		"__dt":    0.0,
	} {
		if err := script.Add(name, value); err != nil {
			return nil, fmt.Errorf("compile script %s: add %s: %w", path, name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile script %s: %w", path, err)
	}
	return &scriptProgram{path: path, compiled: compiled, hooks: hooks}, nil
}

func (se *scriptEngine) program(path string) (*scriptProgram, error) {
	if p, ok := se.programs[path]; ok {
		return p, nil
	}
	if se.scene.assets == nil {
		return nil, fmt.Errorf("load script %s: no asset provider", path)
	}
	src, err := se.scene.assets.LoadScript(path)
	if err != nil {
		return nil, err
	}
	p, err := compileScript(path, src)
	if err != nil {
		return nil, err
	}
	se.programs[path] = p
	se.watch(path)
	return p, nil
}

func (se *scriptEngine) watch(path string) {
	if _, ok := se.watches[path]; ok {
		return
	}
	cancel, err := se.scene.assets.Watch(path, func(changed string) {
		se.mu.Lock()
		se.pending[path] = struct{}{}
		se.mu.Unlock()
	})
	if err != nil {
		core.LogWarn("hot reload disabled for %s: %s", path, err)
		return
	}
	se.watches[path] = cancel
}

// attach compiles the script of sc. Failures are logged and leave the
// component inert.
func (se *scriptEngine) attach(e Entity, sc *ScriptComponent) {
	if sc.Path == "" {
		return
	}
	p, err := se.program(sc.Path)
	if err != nil {
		core.LogError("script for '%s' not loaded: %s", e.Tag(), err)
		return
	}
	sc.instance = &scriptInstance{
		program:  p,
		compiled: p.compiled.Clone(),
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
}

func (se *scriptEngine) detach(e Entity, sc *ScriptComponent) {
	inst := sc.instance
	if inst == nil {
		return
	}
	if inst.created {
		se.call(e, inst, phaseDestroy, 0)
	}
	sc.instance = nil
}

// run calls the phase hook of every script, creating the ones that never
// ran on_create first.
func (se *scriptEngine) run(phase scriptPhase, dt float64) {
	var scripted []Entity
	ecs.Each(se.scene.registry, func(h ecs.Entity, _ *ScriptComponent) {
		scripted = append(scripted, Entity{handle: h, scene: se.scene})
	})
	for _, e := range scripted {
		sc, ok := TryGetComponent[ScriptComponent](e)
		if !ok || sc.instance == nil {
			continue
		}
		inst := sc.instance
		if !inst.created {
			inst.created = true
			se.call(e, inst, phaseCreate, 0)
		}
		if !e.Valid() || sc.instance != inst {
			continue
		}
		se.call(e, inst, phase, dt)
	}
}

func (se *scriptEngine) call(e Entity, inst *scriptInstance, phase scriptPhase, dt float64) {
	if !inst.program.hooks[phase] {
		return
	}
	c := inst.compiled
	if err := c.Set("__phase", string(phase)); err != nil {
		core.LogError("script %s: %s", inst.program.path, err)
		return
	}
	if err := c.Set("__self", se.selfObject(e, inst)); err != nil {
		core.LogError("script %s: %s", inst.program.path, err)
		return
	}
	if err := c.Set("__dt", dt); err != nil {
		core.LogError("script %s: %s", inst.program.path, err)
		return
	}
	if err := c.Run(); err != nil {
		core.LogError("script %s on '%s' failed in %s: %s", inst.program.path, e.Tag(), phase, err)
	}
}

// applyReloads recompiles the scripts changed on disk and swaps the
// program of every instance using them. Instance state is kept.
func (se *scriptEngine) applyReloads() {
	se.mu.Lock()
	if len(se.pending) == 0 {
		se.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(se.pending))
	for p := range se.pending {
		paths = append(paths, p)
	}
	clear(se.pending)
	se.mu.Unlock()

	for _, path := range paths {
		if se.scene.assets == nil {
			break
		}
		src, err := se.scene.assets.LoadScript(path)
		if err != nil {
			core.LogError("reload %s: %s", path, err)
			continue
		}
		p, err := compileScript(path, src)
		if err != nil {
			// keep running the previous version
			core.LogError("reload: %s", err)
			continue
		}
		se.programs[path] = p
		for _, e := range se.scene.Entities() {
			sc, ok := TryGetComponent[ScriptComponent](e)
			if !ok || sc.instance == nil || sc.Path != path {
				continue
			}
			sc.instance.program = p
			sc.instance.compiled = p.compiled.Clone()
		}
		core.LogInfo("script %s reloaded", path)
	}
}

// requestReload queues path as if the watcher reported it.
func (se *scriptEngine) requestReload(path string) {
	se.mu.Lock()
	se.pending[path] = struct{}{}
	se.mu.Unlock()
}

func (se *scriptEngine) close() {
	for path, cancel := range se.watches {
		cancel()
		delete(se.watches, path)
	}
}

func (se *scriptEngine) selfObject(e Entity, inst *scriptInstance) *tengo.ImmutableMap {
	values := map[string]tengo.Object{
		"state": inst.state,
		"id":    &tengo.Int{Value: int64(e.handle.ID)},
	}

	values["tag"] = &tengo.UserFunction{Name: "tag", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: e.Tag()}, nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		tc, ok := TryGetComponent[TransformComponent](e)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return vec3Object(tc.Position()), nil
	}}

	values["set_position"] = &tengo.UserFunction{Name: "set_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, err := vec3Args(args)
		if err != nil {
			return nil, err
		}
		if tc, ok := TryGetComponent[TransformComponent](e); ok {
			tc.SetPosition(v)
		}
		return tengo.UndefinedValue, nil
	}}

	values["translate"] = &tengo.UserFunction{Name: "translate", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, err := vec3Args(args)
		if err != nil {
			return nil, err
		}
		if tc, ok := TryGetComponent[TransformComponent](e); ok {
			tc.Translate(v)
		}
		return tengo.UndefinedValue, nil
	}}

	values["rotation"] = &tengo.UserFunction{Name: "rotation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		tc, ok := TryGetComponent[TransformComponent](e)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return vec3Object(tc.EulerRotation()), nil
	}}

	values["set_rotation"] = &tengo.UserFunction{Name: "set_rotation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, err := vec3Args(args)
		if err != nil {
			return nil, err
		}
		if tc, ok := TryGetComponent[TransformComponent](e); ok {
			tc.SetEulerRotation(v)
		}
		return tengo.UndefinedValue, nil
	}}

	values["property"] = &tengo.UserFunction{Name: "property", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		key, _ := tengo.ToString(args[0])
		pc, ok := TryGetComponent[PropertiesComponent](e)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		v, ok := pc.Get(key)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return tengo.FromInterface(v)
	}}

	values["set_property"] = &tengo.UserFunction{Name: "set_property", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		key, _ := tengo.ToString(args[0])
		pc, ok := TryGetComponent[PropertiesComponent](e)
		if !ok {
			pc = AddComponent(e, PropertiesComponent{})
		}
		pc.Set(key, tengo.ToInterface(args[1]))
		return tengo.UndefinedValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			s, _ := tengo.ToString(a)
			parts = append(parts, s)
		}
		core.LogInfo("[%s] %s", e.Tag(), strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vec3Object(v math.Vec3) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: float64(v.X)},
		&tengo.Float{Value: float64(v.Y)},
		&tengo.Float{Value: float64(v.Z)},
	}}
}

func vec3Args(args []tengo.Object) (math.Vec3, error) {
	if len(args) == 1 {
		if arr, ok := args[0].(*tengo.Array); ok {
			args = arr.Value
		}
	}
	if len(args) != 3 {
		return math.Vec3{}, tengo.ErrWrongNumArguments
	}
	var out [3]float32
	for i, a := range args {
		f, ok := tengo.ToFloat64(a)
		if !ok {
			return math.Vec3{}, tengo.ErrInvalidArgumentType{Name: "xyz", Expected: "float", Found: a.TypeName()}
		}
		out[i] = float32(f)
	}
	return math.NewVec3(out[0], out[1], out[2]), nil
}
