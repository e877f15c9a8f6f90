package storage

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/annel0/voxel-terrain/internal/voxel"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrCorruptRegion возвращается, когда содержимое региона не удаётся разобрать
var ErrCorruptRegion = errors.New("повреждённые данные региона")

// Compression определяет сжатие полезной нагрузки региона
type Compression byte

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
)

// ParseCompression разбирает имя сжатия из конфигурации
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "zstd":
		return CompressionZstd, nil
	case "none":
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("неизвестное сжатие %q", name)
	}
}

func (c Compression) String() string {
	if c == CompressionZstd {
		return "zstd"
	}
	return "none"
}

// Заголовок: магия, версия формата, байт сжатия
var regionMagic = []byte("VXRG")

const (
	formatVersion = 1
	headerSize    = 6
)

// Номера полей сообщений
const (
	fieldRegionChunks = 1

	fieldChunkX         = 1
	fieldChunkY         = 2
	fieldChunkPositions = 3
	fieldChunkStates    = 4
)

// ChunkData - сохраняемая форма чанка: координата и плоские массивы позиций (x,y чередуются) и состояний
type ChunkData struct {
	Coord     vec.Vec2
	Positions []float32
	States    []int32
}

// RegionData - список чанков региона в порядке вставки
type RegionData struct {
	Chunks []ChunkData
}

// ChunkDataFromField снимает сохраняемую копию поля
func ChunkDataFromField(f *voxel.Field) ChunkData {
	cd := ChunkData{
		Coord:     f.Coord,
		Positions: make([]float32, 0, f.Len()*2),
		States:    make([]int32, 0, f.Len()),
	}
	for i := 0; i < f.Len(); i++ {
		v := f.At(i)
		cd.Positions = append(cd.Positions, v.Position.X(), v.Position.Y())
		cd.States = append(cd.States, int32(v.State))
	}
	return cd
}

// Field восстанавливает поле; число ячеек должно быть полным квадратом
func (cd ChunkData) Field() (*voxel.Field, error) {
	n := len(cd.States)
	res := int(math.Sqrt(float64(n)))
	for res*res < n {
		res++
	}
	if n == 0 || res*res != n || len(cd.Positions) != 2*n {
		return nil, fmt.Errorf("%w: чанк %v содержит %d состояний и %d координат", ErrCorruptRegion, cd.Coord, n, len(cd.Positions))
	}

	f := voxel.NewField(cd.Coord, res)
	for i := 0; i < n; i++ {
		f.SetVoxel(i, voxel.Voxel{
			State:    int(cd.States[i]),
			Position: mgl32.Vec2{cd.Positions[2*i], cd.Positions[2*i+1]},
		})
	}
	return f, nil
}

// Find возвращает индекс записи чанка или -1
func (r *RegionData) Find(coord vec.Vec2) int {
	for i := range r.Chunks {
		if r.Chunks[i].Coord == coord {
			return i
		}
	}
	return -1
}

// Upsert заменяет запись с той же координатой или добавляет новую в конец
func (r *RegionData) Upsert(cd ChunkData) (replaced bool) {
	if i := r.Find(cd.Coord); i >= 0 {
		r.Chunks[i] = cd
		return true
	}
	r.Chunks = append(r.Chunks, cd)
	return false
}

// Codec кодирует регионы в protobuf wire-формат со сжатием zstd
type Codec struct {
	compression  Compression
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

// NewCodec создаёт кодек; распаковщик создаётся всегда, чтобы читать файлы с любым сжатием
func NewCodec(compression Compression) (*Codec, error) {
	c := &Codec{compression: compression}

	var err error
	if compression == CompressionZstd {
		c.compressor, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("не удалось создать zstd компрессор: %w", err)
		}
	}
	c.decompressor, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать zstd декомпрессор: %w", err)
	}
	return c, nil
}

// Close освобождает ресурсы zstd
func (c *Codec) Close() {
	if c.compressor != nil {
		c.compressor.Close()
	}
	if c.decompressor != nil {
		c.decompressor.Close()
	}
}

// Encode сериализует регион целиком
func (c *Codec) Encode(r *RegionData) ([]byte, error) {
	var payload []byte
	for i := range r.Chunks {
		payload = protowire.AppendTag(payload, fieldRegionChunks, protowire.BytesType)
		payload = protowire.AppendBytes(payload, appendChunk(nil, &r.Chunks[i]))
	}

	out := make([]byte, 0, headerSize+len(payload))
	out = append(out, regionMagic...)
	out = append(out, formatVersion, byte(c.compression))

	switch c.compression {
	case CompressionNone:
		return append(out, payload...), nil
	case CompressionZstd:
		return c.compressor.EncodeAll(payload, out), nil
	default:
		return nil, fmt.Errorf("неизвестное сжатие %d", c.compression)
	}
}

// Decode разбирает регион; пустые данные означают пустой регион
func (c *Codec) Decode(data []byte) (*RegionData, error) {
	if len(data) == 0 {
		return &RegionData{}, nil
	}
	if len(data) < headerSize || !bytes.Equal(data[:4], regionMagic) {
		return nil, fmt.Errorf("%w: неверный заголовок", ErrCorruptRegion)
	}
	if data[4] != formatVersion {
		return nil, fmt.Errorf("%w: неподдерживаемая версия %d", ErrCorruptRegion, data[4])
	}

	payload := data[headerSize:]
	switch Compression(data[5]) {
	case CompressionNone:
	case CompressionZstd:
		var err error
		payload, err = c.decompressor.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRegion, err)
		}
	default:
		return nil, fmt.Errorf("%w: неизвестное сжатие %d", ErrCorruptRegion, data[5])
	}

	r := &RegionData{}
	for len(payload) > 0 {
		num, typ, n := protowire.ConsumeTag(payload)
		if n < 0 {
			return nil, wireError(n)
		}
		payload = payload[n:]

		if num == fieldRegionChunks && typ == protowire.BytesType {
			msg, m := protowire.ConsumeBytes(payload)
			if m < 0 {
				return nil, wireError(m)
			}
			cd, err := consumeChunk(msg)
			if err != nil {
				return nil, err
			}
			r.Chunks = append(r.Chunks, cd)
			payload = payload[m:]
			continue
		}

		m := protowire.ConsumeFieldValue(num, typ, payload)
		if m < 0 {
			return nil, wireError(m)
		}
		payload = payload[m:]
	}
	return r, nil
}

func appendChunk(b []byte, cd *ChunkData) []byte {
	b = protowire.AppendTag(b, fieldChunkX, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(cd.Coord.X)))
	b = protowire.AppendTag(b, fieldChunkY, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(cd.Coord.Y)))

	positions := make([]byte, 0, len(cd.Positions)*4)
	for _, p := range cd.Positions {
		positions = protowire.AppendFixed32(positions, math.Float32bits(p))
	}
	b = protowire.AppendTag(b, fieldChunkPositions, protowire.BytesType)
	b = protowire.AppendBytes(b, positions)

	var states []byte
	for _, s := range cd.States {
		states = protowire.AppendVarint(states, protowire.EncodeZigZag(int64(s)))
	}
	b = protowire.AppendTag(b, fieldChunkStates, protowire.BytesType)
	b = protowire.AppendBytes(b, states)
	return b
}

func consumeChunk(b []byte) (ChunkData, error) {
	var cd ChunkData
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return cd, wireError(n)
		}
		b = b[n:]

		switch {
		case num == fieldChunkX && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return cd, wireError(m)
			}
			cd.Coord.X = int(protowire.DecodeZigZag(v))
			b = b[m:]
		case num == fieldChunkY && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return cd, wireError(m)
			}
			cd.Coord.Y = int(protowire.DecodeZigZag(v))
			b = b[m:]
		case num == fieldChunkPositions && typ == protowire.BytesType:
			packed, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return cd, wireError(m)
			}
			for len(packed) > 0 {
				v, k := protowire.ConsumeFixed32(packed)
				if k < 0 {
					return cd, wireError(k)
				}
				cd.Positions = append(cd.Positions, math.Float32frombits(v))
				packed = packed[k:]
			}
			b = b[m:]
		case num == fieldChunkStates && typ == protowire.BytesType:
			packed, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return cd, wireError(m)
			}
			for len(packed) > 0 {
				v, k := protowire.ConsumeVarint(packed)
				if k < 0 {
					return cd, wireError(k)
				}
				cd.States = append(cd.States, int32(protowire.DecodeZigZag(v)))
				packed = packed[k:]
			}
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return cd, wireError(m)
			}
			b = b[m:]
		}
	}
	return cd, nil
}

func wireError(n int) error {
	return fmt.Errorf("%w: %v", ErrCorruptRegion, protowire.ParseError(n))
}
