package block

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// blockFile - формат файла определений блоков
type blockFile struct {
	Blocks []blockDef `yaml:"blocks"`
}

type blockDef struct {
	ID          int                  `yaml:"id"`
	Name        string               `yaml:"name"`
	Transparent bool                 `yaml:"transparent"`
	Solid       bool                 `yaml:"solid"`
	Liquid      bool                 `yaml:"liquid"`
	Textures    map[string][]float32 `yaml:"textures"`
}

// faceKeys - ключи конкретных граней в файле
var faceKeys = map[string]Face{
	"front":  Front,
	"back":   Back,
	"left":   Left,
	"right":  Right,
	"top":    Top,
	"bottom": Bottom,
}

// LoadRegistry читает таблицу блоков из YAML файла.
//
// Пример:
//
//	blocks:
//	  - id: 1
//	    name: Grass
//	    solid: true
//	    textures:
//	      side: [0, 0]
//	      top: [0, 0.25]
//	      bottom: [0.25, 0]
//
// Ключи граней применяются по порядку: all, затем side (четыре боковые грани),
// затем конкретные грани.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read block definitions: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry строит реестр из YAML содержимого
func ParseRegistry(data []byte) (*Registry, error) {
	var file blockFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse block definitions: %w", err)
	}

	defs := make(map[BlockType]Properties, len(file.Blocks))
	for _, def := range file.Blocks {
		if def.ID < 0 || def.ID >= maxTypes {
			return nil, fmt.Errorf("block %q: id %d out of range [0,%d)", def.Name, def.ID, maxTypes)
		}
		t := BlockType(def.ID)
		if _, dup := defs[t]; dup {
			return nil, fmt.Errorf("block %q: duplicate id %d", def.Name, def.ID)
		}

		textures, err := resolveTextures(def.Textures)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", def.Name, err)
		}

		name := def.Name
		if name == "" {
			name = t.String()
		}

		defs[t] = Properties{
			Name:        name,
			Transparent: def.Transparent,
			Solid:       def.Solid,
			Liquid:      def.Liquid,
			Textures:    textures,
		}
	}

	return NewRegistry(defs)
}

func resolveTextures(raw map[string][]float32) ([FaceCount]UV, error) {
	var out [FaceCount]UV

	parse := func(key string) (UV, bool, error) {
		v, ok := raw[key]
		if !ok {
			return UV{}, false, nil
		}
		if len(v) != 2 {
			return UV{}, false, fmt.Errorf("texture %q: expected [u, v], got %d values", key, len(v))
		}
		return UV{U: v[0], V: v[1]}, true, nil
	}

	for key := range raw {
		if key == "all" || key == "side" {
			continue
		}
		if _, ok := faceKeys[key]; !ok {
			return out, fmt.Errorf("unknown texture key %q", key)
		}
	}

	if uv, ok, err := parse("all"); err != nil {
		return out, err
	} else if ok {
		out = UniformTextures(uv)
	}

	if uv, ok, err := parse("side"); err != nil {
		return out, err
	} else if ok {
		out[Front], out[Back], out[Left], out[Right] = uv, uv, uv, uv
	}

	for key, face := range faceKeys {
		uv, ok, err := parse(key)
		if err != nil {
			return out, err
		}
		if ok {
			out[face] = uv
		}
	}

	return out, nil
}
