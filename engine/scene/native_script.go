package scene

import (
	"fmt"
	"reflect"

	"github.com/spaghettifunk/tundra/engine/core"
)

// ScriptableEntity is a behavior written in Go. Implementations embed
// ScriptBase, which provides the entity accessor and no-op hooks.
type ScriptableEntity interface {
	OnCreate()
	OnUpdate(dt float64)
	OnConstUpdate(dt float64)
	OnDestroy()

	attach(e Entity)
}

type ScriptBase struct {
	entity Entity
}

func (b *ScriptBase) attach(e Entity) { b.entity = e }

// Entity returns the entity the script is attached to.
func (b *ScriptBase) Entity() Entity { return b.entity }

func (b *ScriptBase) OnCreate()                {}
func (b *ScriptBase) OnUpdate(dt float64)      {}
func (b *ScriptBase) OnConstUpdate(dt float64) {}
func (b *ScriptBase) OnDestroy()               {}

// NativeScriptComponent holds the bound factory and, once the scene ran a
// frame, the live instance.
type NativeScriptComponent struct {
	Instance    ScriptableEntity
	Name        string
	instantiate func() ScriptableEntity
}

// Bind binds the script type T. The instance is created lazily by the next
// update pass.
func Bind[T any, PT interface {
	*T
	ScriptableEntity
}](nsc *NativeScriptComponent) {
	nsc.BindFunc(reflect.TypeFor[T]().Name(), func() ScriptableEntity { return PT(new(T)) })
}

// BindFunc binds a factory. A live instance of the previous binding is
// destroyed first.
func (nsc *NativeScriptComponent) BindFunc(name string, factory func() ScriptableEntity) {
	nsc.destroyInstance()
	nsc.Name = name
	nsc.instantiate = factory
}

func (nsc *NativeScriptComponent) Unbind() {
	nsc.destroyInstance()
	nsc.Name = ""
	nsc.instantiate = nil
}

func (nsc *NativeScriptComponent) Bound() bool {
	return nsc.instantiate != nil
}

func (nsc *NativeScriptComponent) destroyInstance() {
	if nsc.Instance == nil {
		return
	}
	inst := nsc.Instance
	nsc.Instance = nil
	callScript(nsc.Name, "OnDestroy", inst.OnDestroy)
}

func callScript(name, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			core.LogError("native script %s panicked in %s: %v", name, hook, r)
		}
	}()
	fn()
}

// runNativeScripts instantiates unbound instances and then calls hook on
// every native script. The entity list is captured before the pass so
// scripts may create or destroy entities.
func (s *Scene) runNativeScripts(hook string, fn func(ScriptableEntity)) {
	handles := s.nativeScriptEntities()
	for _, h := range handles {
		e := Entity{handle: h, scene: s}
		nsc, ok := TryGetComponent[NativeScriptComponent](e)
		if !ok || !nsc.Bound() {
			continue
		}
		if nsc.Instance == nil {
			inst := nsc.instantiate()
			inst.attach(e)
			nsc.Instance = inst
			callScript(s.scriptName(e, nsc), "OnCreate", inst.OnCreate)

			// OnCreate may remove the component or destroy the entity
			if nsc, ok = TryGetComponent[NativeScriptComponent](e); !ok || nsc.Instance == nil {
				continue
			}
		}
		inst := nsc.Instance
		callScript(s.scriptName(e, nsc), hook, func() { fn(inst) })
	}
}

func (s *Scene) scriptName(e Entity, nsc *NativeScriptComponent) string {
	return fmt.Sprintf("%s on '%s'", nsc.Name, e.Tag())
}
