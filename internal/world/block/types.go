package block

import "fmt"

// BlockType представляет тип (материал) блока. Хранится в каждой ячейке чанка.
type BlockType uint8

// Константы типов блоков
const (
	Air BlockType = iota // 0 - пустое пространство
	Grass
	Dirt
	Stone
	Sand
	Water
	Wood
	Leaves

	// Count всегда последний: количество известных типов
	Count
)

// String возвращает отладочное имя типа (без обращения к реестру)
func (t BlockType) String() string {
	switch t {
	case Air:
		return "Air"
	case Grass:
		return "Grass"
	case Dirt:
		return "Dirt"
	case Stone:
		return "Stone"
	case Sand:
		return "Sand"
	case Water:
		return "Water"
	case Wood:
		return "Wood"
	case Leaves:
		return "Leaves"
	default:
		return fmt.Sprintf("BlockType(%d)", uint8(t))
	}
}

// Face определяет грань блока
type Face uint8

const (
	Front  Face = iota // +Z
	Back               // -Z
	Left               // -X
	Right              // +X
	Top                // +Y
	Bottom             // -Y

	// FaceCount всегда последний: количество граней
	FaceCount
)

// Faces перечисляет грани в фиксированном порядке обхода при построении меша
var Faces = [FaceCount]Face{Front, Back, Left, Right, Top, Bottom}

// String возвращает имя грани
func (f Face) String() string {
	switch f {
	case Front:
		return "front"
	case Back:
		return "back"
	case Left:
		return "left"
	case Right:
		return "right"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return fmt.Sprintf("Face(%d)", uint8(f))
	}
}

// Offset возвращает направление грани (единичный шаг к соседней ячейке)
func (f Face) Offset() (dx, dy, dz int) {
	switch f {
	case Front:
		return 0, 0, 1
	case Back:
		return 0, 0, -1
	case Left:
		return -1, 0, 0
	case Right:
		return 1, 0, 0
	case Top:
		return 0, 1, 0
	case Bottom:
		return 0, -1, 0
	default:
		return 0, 0, 0
	}
}

// Атлас текстур: сетка 4x4 тайла, размер тайла в нормализованных координатах
const (
	AtlasTiles = 4
	TileSize   = float32(1.0) / AtlasTiles
)

// UV - нижний левый тексель тайла в атласе
type UV struct {
	U float32
	V float32
}

// Properties описывает свойства типа блока
type Properties struct {
	Name        string
	Transparent bool
	Solid       bool
	Liquid      bool
	// Textures[face] - начало тайла для каждой грани
	Textures [FaceCount]UV
}

// UniformTextures возвращает одинаковый тайл для всех граней
func UniformTextures(uv UV) [FaceCount]UV {
	var t [FaceCount]UV
	for i := range t {
		t[i] = uv
	}
	return t
}

// SidedTextures возвращает тайлы: side для боковых граней, top и bottom отдельно
func SidedTextures(side, top, bottom UV) [FaceCount]UV {
	return [FaceCount]UV{
		Front:  side,
		Back:   side,
		Left:   side,
		Right:  side,
		Top:    top,
		Bottom: bottom,
	}
}
