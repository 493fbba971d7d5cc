package world

import (
	"math/rand"
	"sync"

	"github.com/annel0/mmo-dimension/internal/protocol"
	"github.com/annel0/mmo-dimension/internal/world/entity"
)

// Длительность погодной фазы в тиках по умолчанию (10–30 минут при 20 TPS)
const (
	DefaultWeatherMinDuration = 12000
	DefaultWeatherMaxDuration = 36000
)

// WeatherConfig — параметры планировщика погоды измерения
type WeatherConfig struct {
	MinDurationTicks int64 // Минимум тиков между сменами погоды
	MaxDurationTicks int64 // Максимум тиков между сменами погоды
	Seed             int64 // Зерно генератора (0 — недетерминированно)
}

// normalized возвращает конфиг с подставленными значениями по умолчанию
func (c WeatherConfig) normalized() WeatherConfig {
	if c.MinDurationTicks <= 0 {
		c.MinDurationTicks = DefaultWeatherMinDuration
	}
	if c.MaxDurationTicks < c.MinDurationTicks {
		c.MaxDurationTicks = c.MinDurationTicks * 3
	}
	return c
}

// WeatherState хранит интенсивности дождя и грозы измерения и планирует
// их смену. Интенсивность 0 — явление неактивно, >0 — активно с уровнем.
// Гроза подразумевает дождь на уровне правил, а не структуры: состояние
// не мешает выставить грозу без дождя, это дело вызывающего.
type WeatherState struct {
	mu      sync.Mutex
	rain    int32
	thunder int32

	nextChange int64 // Тик следующей плановой смены погоды
	cfg        WeatherConfig
	rng        *rand.Rand

	// players отдаёт всех игроков измерения (для Broadcast без целей)
	players func() []*entity.Player

	// onChange уведомляет измерение о смене погоды (событие на шину)
	onChange func(rain, thunder int32)
}

// NewWeatherState создаёт планировщик погоды. Первая смена назначается
// на минимальную длительность от нулевого тика.
func NewWeatherState(cfg WeatherConfig, players func() []*entity.Player) *WeatherState {
	cfg = cfg.normalized()

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	return &WeatherState{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(seed)),
		nextChange: cfg.MinDurationTicks,
		players:    players,
	}
}

// Rain возвращает текущую интенсивность дождя
func (w *WeatherState) Rain() int32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rain
}

// Thunder возвращает текущую интенсивность грозы
func (w *WeatherState) Thunder() int32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.thunder
}

// SetRain выставляет интенсивность дождя (командный/скриптовый путь).
// Плановая смена не переносится; рассылку вызывающий делает сам.
func (w *WeatherState) SetRain(level int32) {
	w.mu.Lock()
	w.rain = level
	w.mu.Unlock()
	w.notify()
}

// SetThunder выставляет интенсивность грозы
func (w *WeatherState) SetThunder(level int32) {
	w.mu.Lock()
	w.thunder = level
	w.mu.Unlock()
	w.notify()
}

// Tick продвигает планировщик. При наступлении запланированного тика
// погода переключается (ясно ⇄ осадки), назначается следующая смена и
// новое состояние рассылается всем игрокам измерения.
func (w *WeatherState) Tick(current int64) {
	w.mu.Lock()
	if current < w.nextChange {
		w.mu.Unlock()
		return
	}

	if w.rain > 0 || w.thunder > 0 {
		w.rain = 0
		w.thunder = 0
	} else {
		// 1..3: лёгкий/средний/сильный дождь, гроза — в четверти случаев
		w.rain = int32(w.rng.Intn(3)) + 1
		if w.rng.Intn(4) == 0 {
			w.thunder = w.rain
		}
	}

	span := w.cfg.MaxDurationTicks - w.cfg.MinDurationTicks
	w.nextChange = current + w.cfg.MinDurationTicks
	if span > 0 {
		w.nextChange += w.rng.Int63n(span + 1)
	}
	w.mu.Unlock()

	w.notify()
	w.Broadcast(nil)
}

// Broadcast отправляет снимок погоды указанным игрокам. Пустой или nil
// targets — всем игрокам измерения. Каждый получатель получает пару
// пакетов (дождь и гроза): активное явление — как начало с уровнем,
// неактивное — как окончание. Доставка кладёт пакеты в исходящий буфер
// игрока, сетевой ввод-вывод остаётся за транспортом.
func (w *WeatherState) Broadcast(targets []*entity.Player) {
	w.mu.Lock()
	rain, thunder := w.rain, w.thunder
	w.mu.Unlock()

	if len(targets) == 0 {
		if w.players == nil {
			return
		}
		targets = w.players()
	}

	rainPkt := weatherPacket(protocol.WeatherRain, rain)
	thunderPkt := weatherPacket(protocol.WeatherThunder, thunder)

	for _, p := range targets {
		p.Send(rainPkt, thunderPkt)
	}
}

// notify дёргает хук смены погоды с текущим снимком
func (w *WeatherState) notify() {
	if w.onChange == nil {
		return
	}
	w.mu.Lock()
	rain, thunder := w.rain, w.thunder
	w.mu.Unlock()
	w.onChange(rain, thunder)
}

// weatherPacket строит пакет для одного явления: уровень передаётся
// только при начале, окончание всегда с нулевым уровнем
func weatherPacket(el protocol.WeatherElement, level int32) protocol.WeatherEventPacket {
	if level > 0 {
		return protocol.WeatherEventPacket{Element: el, Starting: true, Level: level}
	}
	return protocol.WeatherEventPacket{Element: el, Starting: false}
}
