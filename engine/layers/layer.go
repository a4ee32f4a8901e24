package layers

import (
	"github.com/spaghettifunk/tundra/engine/core"
)

// Layer is a unit of per-frame behavior owned by the application. Layers are
// updated bottom to top and receive events top to bottom.
type Layer interface {
	Name() string
	OnAttach() error
	OnDetach()
	OnUpdate(dt float64)
	OnConstUpdate(dt float64)
	OnGuiRender()
	OnEvent(e *core.Event)
}

// Base implements every Layer hook as a no-op. Embed it and override what
// the layer needs.
type Base struct {
	LayerName string
}

func NewBase(name string) Base {
	return Base{LayerName: name}
}

func (b *Base) Name() string {
	if b.LayerName == "" {
		return "Layer"
	}
	return b.LayerName
}

func (b *Base) OnAttach() error          { return nil }
func (b *Base) OnDetach()                {}
func (b *Base) OnUpdate(dt float64)      {}
func (b *Base) OnConstUpdate(dt float64) {}
func (b *Base) OnGuiRender()             {}
func (b *Base) OnEvent(e *core.Event)    {}
