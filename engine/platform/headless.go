package platform

import (
	"sync"

	"github.com/spaghettifunk/tundra/engine/containers"
	"github.com/spaghettifunk/tundra/engine/core"
)

const headlessQueueSize = 256

// HeadlessWindow has no surface. Events pushed from any goroutine are
// delivered by the next OnUpdate, in push order.
type HeadlessWindow struct {
	mu       sync.Mutex
	queue    *containers.RingQueue[*core.Event]
	width    uint32
	height   uint32
	vsync    bool
	callback EventCallback
	polls    uint64
}

func NewHeadlessWindow(width, height uint32) *HeadlessWindow {
	return &HeadlessWindow{
		queue:  containers.NewRingQueue[*core.Event](headlessQueueSize),
		width:  width,
		height: height,
	}
}

// Push queues e for the next OnUpdate. It fails when the queue is full.
func (w *HeadlessWindow) Push(e *core.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queue.Enqueue(e)
}

func (w *HeadlessWindow) Width() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *HeadlessWindow) Height() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

func (w *HeadlessWindow) SetEventCallback(fn EventCallback) { w.callback = fn }

func (w *HeadlessWindow) SetVSync(enabled bool) { w.vsync = enabled }

func (w *HeadlessWindow) VSync() bool { return w.vsync }

// Polls returns how many times OnUpdate ran.
func (w *HeadlessWindow) Polls() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polls
}

func (w *HeadlessWindow) OnUpdate() {
	w.mu.Lock()
	w.polls++
	events := make([]*core.Event, 0, w.queue.Len())
	for !w.queue.IsEmpty() {
		e, _ := w.queue.Dequeue()
		if we, ok := e.Data.(*core.WindowEvent); ok && e.Code == core.EVENT_CODE_WINDOW_RESIZE {
			w.width, w.height = we.Width, we.Height
		}
		events = append(events, e)
	}
	w.mu.Unlock()

	if w.callback == nil {
		return
	}
	for _, e := range events {
		w.callback(e)
	}
}

func (w *HeadlessWindow) Shutdown() error {
	return nil
}

var _ Window = (*HeadlessWindow)(nil)
