package layers

import (
	"errors"
	"slices"
	"testing"

	"github.com/spaghettifunk/tundra/engine/core"
)

type recorder struct {
	Base
	log       *[]string
	attachErr error
	handles   bool
	onEvent   func()
}

func newRecorder(name string, log *[]string) *recorder {
	return &recorder{Base: NewBase(name), log: log}
}

func (p *recorder) OnAttach() error {
	*p.log = append(*p.log, "attach "+p.Name())
	return p.attachErr
}

func (p *recorder) OnDetach() {
	*p.log = append(*p.log, "detach "+p.Name())
}

func (p *recorder) OnEvent(e *core.Event) {
	*p.log = append(*p.log, "event "+p.Name())
	e.Handled = p.handles
	if p.onEvent != nil {
		p.onEvent()
	}
}

func names(ls []Layer) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Name()
	}
	return out
}

// go test -run ^TestLayerOrder$ . -count 1
func TestLayerOrder(t *testing.T) {
	var log []string
	ls := NewLayerStack()
	a, b := newRecorder("a", &log), newRecorder("b", &log)
	o1, o2 := newRecorder("o1", &log), newRecorder("o2", &log)

	for _, push := range []func() error{
		func() error { return ls.PushLayer(a) },
		func() error { return ls.PushOverlay(o1) },
		func() error { return ls.PushLayer(b) },
		func() error { return ls.PushOverlay(o2) },
	} {
		if err := push(); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"a", "b", "o1", "o2"}
	if got := names(ls.Layers()); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	slices.Reverse(want)
	if got := names(ls.Reverse()); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDispatchStopsWhenHandled(t *testing.T) {
	cases := []struct {
		name    string
		handler string
		want    []string
	}{
		{"nobody", "", []string{"event o", "event b", "event a"}},
		{"overlay", "o", []string{"event o"}},
		{"middle", "b", []string{"event o", "event b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var log []string
			ls := NewLayerStack()
			layers := map[string]*recorder{}
			for _, n := range []string{"a", "b"} {
				layers[n] = newRecorder(n, &log)
				_ = ls.PushLayer(layers[n])
			}
			layers["o"] = newRecorder("o", &log)
			_ = ls.PushOverlay(layers["o"])
			if tc.handler != "" {
				layers[tc.handler].handles = true
			}

			log = nil
			e := core.NewKeyEvent(core.KEY_A, true)
			ls.Dispatch(e)
			if !slices.Equal(log, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, log)
			}
			if e.Handled != (tc.handler != "") {
				t.Fatalf("unexpected handled state %v", e.Handled)
			}
		})
	}
}

func TestPopAndClear(t *testing.T) {
	var log []string
	ls := NewLayerStack()
	a, o := newRecorder("a", &log), newRecorder("o", &log)
	_ = ls.PushLayer(a)
	_ = ls.PushOverlay(o)

	if ls.PopLayer(o) {
		t.Fatal("an overlay must not be popped as a layer")
	}
	if ls.PopOverlay(a) {
		t.Fatal("a layer must not be popped as an overlay")
	}
	if !ls.PopLayer(a) || ls.Len() != 1 {
		t.Fatal("PopLayer failed")
	}

	b := newRecorder("b", &log)
	_ = ls.PushLayer(b)
	if got := names(ls.Layers()); !slices.Equal(got, []string{"b", "o"}) {
		t.Fatalf("layer pushed after a pop must stay below overlays, got %v", got)
	}

	log = nil
	ls.Clear()
	if !slices.Equal(log, []string{"detach o", "detach b"}) {
		t.Fatalf("Clear must detach top down, got %v", log)
	}
	if ls.Len() != 0 {
		t.Fatal("stack not empty after Clear")
	}
}

func TestFailedAttachIsNotPushed(t *testing.T) {
	var log []string
	ls := NewLayerStack()
	bad := newRecorder("bad", &log)
	bad.attachErr = errors.New("no gpu")

	err := ls.PushLayer(bad)
	if err == nil || !errors.Is(err, bad.attachErr) {
		t.Fatalf("expected the attach error, got %v", err)
	}
	if ls.Len() != 0 {
		t.Fatal("a failed layer must not be pushed")
	}
	if err := ls.PushOverlay(nil); err == nil {
		t.Fatal("nil layers must be rejected")
	}
}

// go test -run ^TestDispatchWhileStackChanges$ . -count 1
func TestDispatchWhileStackChanges(t *testing.T) {
	var log []string
	ls := NewLayerStack()
	a, b, c := newRecorder("a", &log), newRecorder("b", &log), newRecorder("c", &log)
	for _, l := range []*recorder{a, b, c} {
		if err := ls.PushLayer(l); err != nil {
			t.Fatal(err)
		}
	}
	c.onEvent = func() {
		ls.PopLayer(c)
		ls.PopLayer(b)
	}

	log = nil
	ls.Dispatch(core.NewCloseEvent())

	want := []string{"event c", "detach c", "detach b", "event a"}
	if !slices.Equal(log, want) {
		t.Fatalf("got %v, want %v", log, want)
	}

	snapshot := ls.Layers()
	snapshot[0] = nil
	if got := names(ls.Layers()); !slices.Equal(got, []string{"a"}) {
		t.Fatalf("Layers must return a copy, stack is now %v", got)
	}
	if ls.Contains(b) || !ls.Contains(a) {
		t.Error("Contains does not follow the stack")
	}
}
