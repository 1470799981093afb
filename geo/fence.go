package geo

import "sync"

const DefaultRadius = 100.0

type Result struct {
	Distance float64 `json:"distance"`
	Exited   bool    `json:"exited"`
}

// Check compares candidate against a circle of radius meters around center.
func Check(center, candidate Point, radius float64) Result {
	d := Distance(center, candidate)
	return Result{Distance: d, Exited: d > radius}
}

type ExitFunc func(center, position Point, distance float64)

// Watcher keeps the reference point of one capture or editing session.
// The first observed position becomes the center unless one was set explicitly.
type Watcher struct {
	mu     sync.Mutex
	radius float64
	center *Point
	OnExit ExitFunc
}

func NewWatcher(radius float64, onExit ExitFunc) *Watcher {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Watcher{radius: radius, OnExit: onExit}
}

func (w *Watcher) Radius() float64 {
	return w.radius
}

func (w *Watcher) SetCenter(p Point) {
	w.mu.Lock()
	w.center = &p
	w.mu.Unlock()
}

func (w *Watcher) Center() (Point, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.center == nil {
		return Point{}, false
	}
	return *w.center, true
}

func (w *Watcher) Reset() {
	w.mu.Lock()
	w.center = nil
	w.mu.Unlock()
}

// Observe records a new position and reports whether it lies outside the fence.
func (w *Watcher) Observe(p Point) Result {
	w.mu.Lock()
	if w.center == nil {
		w.center = &p
		w.mu.Unlock()
		return Result{}
	}
	center := *w.center
	onExit := w.OnExit
	w.mu.Unlock()

	res := Check(center, p, w.radius)
	if res.Exited && onExit != nil {
		onExit(center, p, res.Distance)
	}
	return res
}
