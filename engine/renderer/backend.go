package renderer

import (
	"sync"

	"github.com/spaghettifunk/tundra/engine/core"
)

// Backend turns recorded frames into pixels. GPU backends live outside of
// this module; the engine ships a logging and a recording one.
type Backend interface {
	Initialize(appName string, width, height uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(frame *Frame) error
	EndFrame(frame *Frame) error
}

// LogBackend reports a summary of the frames at debug level.
type LogBackend struct {
	// Every is the number of frames between two reports.
	Every uint64
}

func (b *LogBackend) Initialize(appName string, width, height uint32) error {
	core.LogInfo("log renderer backend initialized for '%s' (%dx%d)", appName, width, height)
	return nil
}

func (b *LogBackend) Shutdown() error { return nil }

func (b *LogBackend) Resized(width, height uint32) error {
	core.LogDebug("viewport resized to %dx%d", width, height)
	return nil
}

func (b *LogBackend) BeginFrame(frame *Frame) error { return nil }

func (b *LogBackend) EndFrame(frame *Frame) error {
	every := b.Every
	if every == 0 {
		every = 120
	}
	if frame.Number%every == 0 {
		core.LogDebug("frame %d: %d draws, %d lights", frame.Number, len(frame.Draws), len(frame.Lights))
	}
	return nil
}

// RecordingBackend keeps every frame it receives.
type RecordingBackend struct {
	mu     sync.Mutex
	frames []*Frame
	width  uint32
	height uint32
}

func (b *RecordingBackend) Initialize(appName string, width, height uint32) error {
	b.width, b.height = width, height
	return nil
}

func (b *RecordingBackend) Shutdown() error { return nil }

func (b *RecordingBackend) Resized(width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = width, height
	return nil
}

func (b *RecordingBackend) BeginFrame(frame *Frame) error { return nil }

func (b *RecordingBackend) EndFrame(frame *Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, frame)
	return nil
}

func (b *RecordingBackend) Frames() []*Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Frame(nil), b.frames...)
}

// Last returns the most recent frame or nil.
func (b *RecordingBackend) Last() *Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) == 0 {
		return nil
	}
	return b.frames[len(b.frames)-1]
}

func (b *RecordingBackend) Viewport() (uint32, uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}
