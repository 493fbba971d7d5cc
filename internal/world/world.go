package world

import (
	"sync"

	"github.com/annel0/mmo-dimension/internal/logging"
)

// World владеет набором прикреплённых измерений и назначает им
// идентификаторы экземпляров. Идентификаторы выдаются монотонным
// счётчиком от нуля и уникальны в пределах процесса.
type World struct {
	mu     sync.RWMutex
	dims   map[int32]*Dimension
	nextID int32
	tick   int64
	log    *logging.Logger
}

// NewWorld создаёт мир без измерений
func NewWorld() *World {
	return &World{
		dims: make(map[int32]*Dimension),
		log:  logging.GetWorldLogger(),
	}
}

// Attach прикрепляет измерение к миру и возвращает назначенный
// идентификатор. Повторное прикрепление того же экземпляра (к этому или
// любому другому миру) отклоняется: (0, false), состояние мира не меняется.
func (w *World) Attach(d *Dimension) (int32, bool) {
	w.mu.Lock()
	id := w.nextID
	if !d.attach(id) {
		w.mu.Unlock()
		return 0, false
	}
	w.nextID++
	w.dims[id] = d
	w.mu.Unlock()

	w.log.Info("Измерение %q прикреплено с ID %d", d.Type().Name, id)
	return id, true
}

// Dimension возвращает измерение по идентификатору экземпляра
func (w *World) Dimension(id int32) (*Dimension, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	d, ok := w.dims[id]
	return d, ok
}

// Dimensions возвращает срез всех прикреплённых измерений
func (w *World) Dimensions() []*Dimension {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make([]*Dimension, 0, len(w.dims))
	for _, d := range w.dims {
		result = append(result, d)
	}
	return result
}

// CurrentTick возвращает номер последнего выполненного тика
func (w *World) CurrentTick() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tick
}

// Tick продвигает все измерения на один игровой тик
func (w *World) Tick() {
	w.mu.Lock()
	w.tick++
	tick := w.tick
	w.mu.Unlock()

	for _, d := range w.Dimensions() {
		d.DoTick(tick)
	}
}
