package block

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/voxelworld/internal/logging"
)

// Ошибки конфигурации реестра
var (
	ErrMissingAir     = errors.New("block registry: Air must be registered")
	ErrInvalidTexture = errors.New("block registry: texture origin outside atlas")
)

// maxTypes - количество значений BlockType (uint8)
const maxTypes = 256

// Registry - неизменяемая таблица свойств блоков.
// Создаётся один раз при старте и передаётся по ссылке всем, кому нужны свойства.
// Для незарегистрированного типа возвращаются свойства Air; первое обращение
// к каждому такому типу логируется один раз и попадает в UnknownTypes.
type Registry struct {
	props      [maxTypes]Properties
	registered [maxTypes]bool
	types      []BlockType

	unknownMu sync.Mutex
	unknown   map[BlockType]struct{}
	logger    *logging.Logger
}

// NewRegistry создаёт реестр из набора определений. Определения копируются.
func NewRegistry(defs map[BlockType]Properties) (*Registry, error) {
	air, ok := defs[Air]
	if !ok {
		return nil, ErrMissingAir
	}

	r := &Registry{
		unknown: make(map[BlockType]struct{}),
		logger:  logging.GetBlockLogger(),
	}

	// Все слоты по умолчанию ведут себя как Air
	for i := range r.props {
		r.props[i] = air
	}

	for t, p := range defs {
		for face, uv := range p.Textures {
			if !validUV(uv.U) || !validUV(uv.V) {
				return nil, fmt.Errorf("%w: %s %s (%.3f, %.3f)", ErrInvalidTexture, t, Face(face), uv.U, uv.V)
			}
		}
		r.props[t] = p
		r.registered[t] = true
		r.types = append(r.types, t)
	}

	sort.Slice(r.types, func(i, j int) bool { return r.types[i] < r.types[j] })
	return r, nil
}

// lookup возвращает свойства типа, отмечая незарегистрированные типы
// validUV проверяет, что координата лежит в [0,1); NaN не проходит
func validUV(v float32) bool {
	return v >= 0 && v < 1
}

func (r *Registry) lookup(t BlockType) *Properties {
	if !r.registered[t] {
		r.reportUnknown(t)
	}
	return &r.props[t]
}

// reportUnknown фиксирует незарегистрированный тип (один раз на тип)
func (r *Registry) reportUnknown(t BlockType) {
	r.unknownMu.Lock()
	_, seen := r.unknown[t]
	if !seen {
		r.unknown[t] = struct{}{}
	}
	r.unknownMu.Unlock()

	if !seen {
		r.logger.Warn("Незарегистрированный тип блока %d, используются свойства Air", uint8(t))
	}
}

// IsAir сообщает, что ячейка пустая: Air или незарегистрированный тип
func (r *Registry) IsAir(t BlockType) bool {
	if t == Air {
		return true
	}
	if !r.registered[t] {
		r.reportUnknown(t)
		return true
	}
	return false
}

// IsTransparent сообщает, пропускает ли блок свет (видны ли грани соседей)
func (r *Registry) IsTransparent(t BlockType) bool {
	return r.lookup(t).Transparent
}

// IsSolid сообщает, является ли блок твёрдым
func (r *Registry) IsSolid(t BlockType) bool {
	return r.lookup(t).Solid
}

// IsLiquid сообщает, является ли блок жидкостью
func (r *Registry) IsLiquid(t BlockType) bool {
	return r.lookup(t).Liquid
}

// TextureOrigin возвращает начало тайла атласа для грани блока
func (r *Registry) TextureOrigin(t BlockType, face Face) UV {
	if face >= FaceCount {
		return UV{}
	}
	return r.lookup(t).Textures[face]
}

// Name возвращает имя блока
func (r *Registry) Name(t BlockType) string {
	return r.lookup(t).Name
}

// Properties возвращает копию записи свойств
func (r *Registry) Properties(t BlockType) Properties {
	return *r.lookup(t)
}

// Registered сообщает, есть ли у типа собственная запись
func (r *Registry) Registered(t BlockType) bool {
	return r.registered[t]
}

// Types возвращает зарегистрированные типы по возрастанию
func (r *Registry) Types() []BlockType {
	out := make([]BlockType, len(r.types))
	copy(out, r.types)
	return out
}

// UnknownTypes возвращает типы, запрошенные без регистрации (диагностика конфигурации)
func (r *Registry) UnknownTypes() []BlockType {
	r.unknownMu.Lock()
	defer r.unknownMu.Unlock()

	out := make([]BlockType, 0, len(r.unknown))
	for t := range r.unknown {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
