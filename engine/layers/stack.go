package layers

import (
	"fmt"
	"slices"

	"github.com/spaghettifunk/tundra/engine/core"
)

// LayerStack keeps regular layers below overlays. Layers at index
// [0, insert) are regular layers, the rest are overlays.
type LayerStack struct {
	layers []Layer
	insert int
}

func NewLayerStack() *LayerStack {
	return &LayerStack{}
}

// PushLayer attaches l and places it on top of the regular layers, below
// every overlay. A layer whose OnAttach fails is not pushed.
func (ls *LayerStack) PushLayer(l Layer) error {
	if err := ls.attach(l); err != nil {
		return err
	}
	ls.layers = slices.Insert(ls.layers, ls.insert, l)
	ls.insert++
	return nil
}

// PushOverlay attaches l and places it on top of the stack.
func (ls *LayerStack) PushOverlay(l Layer) error {
	if err := ls.attach(l); err != nil {
		return err
	}
	ls.layers = append(ls.layers, l)
	return nil
}

func (ls *LayerStack) attach(l Layer) error {
	if l == nil {
		return fmt.Errorf("push layer: nil layer")
	}
	if slices.Contains(ls.layers, l) {
		return fmt.Errorf("push layer %s: already in the stack", l.Name())
	}
	if err := l.OnAttach(); err != nil {
		return fmt.Errorf("attach layer %s: %w", l.Name(), err)
	}
	core.LogDebug("layer %s attached", l.Name())
	return nil
}

// PopLayer detaches a regular layer. It reports false when l is not one.
func (ls *LayerStack) PopLayer(l Layer) bool {
	i := slices.Index(ls.layers[:ls.insert], l)
	if i < 0 {
		return false
	}
	ls.layers = slices.Delete(ls.layers, i, i+1)
	ls.insert--
	l.OnDetach()
	return true
}

// PopOverlay detaches an overlay. It reports false when l is not one.
func (ls *LayerStack) PopOverlay(l Layer) bool {
	i := slices.Index(ls.layers[ls.insert:], l)
	if i < 0 {
		return false
	}
	i += ls.insert
	ls.layers = slices.Delete(ls.layers, i, i+1)
	l.OnDetach()
	return true
}

func (ls *LayerStack) Len() int {
	return len(ls.layers)
}

// Layers returns a copy of the layers bottom to top, so callers may push or
// pop while ranging over it.
func (ls *LayerStack) Layers() []Layer {
	return slices.Clone(ls.layers)
}

// Contains reports whether l is still attached.
func (ls *LayerStack) Contains(l Layer) bool {
	return slices.Contains(ls.layers, l)
}

// Reverse returns a copy of the layers top to bottom.
func (ls *LayerStack) Reverse() []Layer {
	out := slices.Clone(ls.layers)
	slices.Reverse(out)
	return out
}

// Dispatch hands e to the layers from the top down and stops at the first
// layer that marks it handled.
func (ls *LayerStack) Dispatch(e *core.Event) {
	for _, l := range ls.Reverse() {
		if e.Handled {
			return
		}
		if ls.Contains(l) {
			l.OnEvent(e)
		}
	}
}

// Clear detaches every layer from the top down.
func (ls *LayerStack) Clear() {
	for i := len(ls.layers) - 1; i >= 0; i-- {
		ls.layers[i].OnDetach()
	}
	ls.layers = nil
	ls.insert = 0
}
