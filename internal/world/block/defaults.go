package block

// DefaultDefinitions возвращает стандартную таблицу из восьми блоков.
// Начала тайлов - нижний левый тексель в атласе 4x4.
func DefaultDefinitions() map[BlockType]Properties {
	return map[BlockType]Properties{
		Air: {
			Name:        "Air",
			Transparent: true,
			Textures:    UniformTextures(UV{0, 0}),
		},
		Grass: {
			Name:     "Grass",
			Solid:    true,
			Textures: SidedTextures(UV{0, 0}, UV{0, 0.25}, UV{0.25, 0}), // бок, трава сверху, земля снизу
		},
		Dirt: {
			Name:     "Dirt",
			Solid:    true,
			Textures: UniformTextures(UV{0.25, 0}),
		},
		Stone: {
			Name:     "Stone",
			Solid:    true,
			Textures: UniformTextures(UV{0.5, 0}),
		},
		Sand: {
			Name:     "Sand",
			Solid:    true,
			Textures: UniformTextures(UV{0.75, 0}),
		},
		Water: {
			Name:        "Water",
			Transparent: true,
			Liquid:      true,
			Textures:    UniformTextures(UV{0, 0.25}),
		},
		Wood: {
			Name:     "Wood",
			Solid:    true,
			Textures: SidedTextures(UV{0.25, 0.25}, UV{0.5, 0.25}, UV{0.5, 0.25}), // кора по бокам, срез сверху и снизу
		},
		Leaves: {
			Name:        "Leaves",
			Transparent: true, // полупрозрачные
			Solid:       true,
			Textures:    UniformTextures(UV{0.75, 0.25}),
		},
	}
}

// Default создаёт реестр со стандартной таблицей блоков
func Default() *Registry {
	r, err := NewRegistry(DefaultDefinitions())
	if err != nil {
		// Стандартная таблица валидна по построению
		panic(err)
	}
	return r
}
