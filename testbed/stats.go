package testbed

import (
	"time"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/layers"
)

// StatsLayer is an overlay that logs the frame statistics once per
// interval. The grave key toggles it.
type StatsLayer struct {
	layers.Base

	metrics  *core.Metrics
	interval time.Duration
	elapsed  float64
	visible  bool
	reports  int
}

func NewStatsLayer(metrics *core.Metrics, interval time.Duration) *StatsLayer {
	if interval <= 0 {
		interval = time.Second
	}
	return &StatsLayer{
		Base:     layers.NewBase("Stats"),
		metrics:  metrics,
		interval: interval,
		visible:  true,
	}
}

func (l *StatsLayer) Visible() bool { return l.visible }
func (l *StatsLayer) Reports() int  { return l.reports }

func (l *StatsLayer) OnUpdate(dt float64) {
	l.elapsed += dt
}

func (l *StatsLayer) OnGuiRender() {
	if !l.visible || l.elapsed < l.interval.Seconds() {
		return
	}
	l.elapsed = 0
	l.reports++
	fps, frameTime := l.metrics.Frame()
	core.LogInfo("%.0f fps, %.2f ms/frame, %d frames", fps, frameTime, l.metrics.TotalFrames)
}

func (l *StatsLayer) OnEvent(e *core.Event) {
	core.Dispatch(e, core.EVENT_CODE_KEY_PRESSED, func(e *core.Event) bool {
		ke, ok := e.Data.(*core.KeyEvent)
		if !ok || ke.KeyCode != core.KEY_GRAVE {
			return false
		}
		l.visible = !l.visible
		return true
	})
}
