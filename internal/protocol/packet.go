package protocol

// PacketID идентифицирует тип исходящего пакета.
// Кодирование в байты выполняет внешний кодек транспорта;
// здесь пакеты — только структуры-носители данных.
type PacketID uint8

const (
	PacketIDWeatherEvent PacketID = iota + 1
	PacketIDChunkData
	PacketIDBlockUpdate
	PacketIDTileUpdate
)

// Packet — исходящее протокольное сообщение
type Packet interface {
	PacketID() PacketID
}

// WeatherElement различает дождь и грозу
type WeatherElement uint8

const (
	WeatherRain WeatherElement = iota
	WeatherThunder
)

// String возвращает имя элемента погоды
func (e WeatherElement) String() string {
	switch e {
	case WeatherRain:
		return "rain"
	case WeatherThunder:
		return "thunder"
	default:
		return "unknown"
	}
}

// WeatherEventPacket сообщает клиенту о начале или окончании погодного явления.
// Level передаётся только при начале (Starting=true), иначе 0.
type WeatherEventPacket struct {
	Element  WeatherElement
	Starting bool
	Level    int32
}

// PacketID возвращает идентификатор пакета
func (p WeatherEventPacket) PacketID() PacketID { return PacketIDWeatherEvent }

// ChunkDataPacket — скомпилированное представление чанка для отправки клиенту.
// Payload — сериализованный кодеком блоб; кэшируется до инвалидации.
type ChunkDataPacket struct {
	ChunkX, ChunkZ int32
	Payload        []byte
}

// PacketID возвращает идентификатор пакета
func (p *ChunkDataPacket) PacketID() PacketID { return PacketIDChunkData }

// BlockUpdatePacket сообщает об изменении одного блока
type BlockUpdatePacket struct {
	X, Z  int
	Block uint16
}

// PacketID возвращает идентификатор пакета
func (p BlockUpdatePacket) PacketID() PacketID { return PacketIDBlockUpdate }

// TileUpdatePacket сообщает о добавлении или удалении тайл-сущности
type TileUpdatePacket struct {
	TileID  uint64
	X, Z    int
	Removed bool
}

// PacketID возвращает идентификатор пакета
func (p TileUpdatePacket) PacketID() PacketID { return PacketIDTileUpdate }
