package bind_group_loader

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// bindingFile is the on-disk shape of a binding description. The bindings member is either
// a list of sets (a list of lists of entries) or, in the older flat form, one list of entries
// treated as a single set.
type bindingFile struct {
	Bindings json.RawMessage `json:"bindings"`
}

type rawEntry struct {
	Slot       *uint32  `json:"slot"`
	Visibility []string `json:"visibility"`
	Type       *string  `json:"type"`

	UniformConfig        *bufferConfig         `json:"uniform_config"`
	StorageConfig        *bufferConfig         `json:"storage_config"`
	TextureConfig        *textureConfig        `json:"texture_config"`
	SamplerConfig        *samplerConfig        `json:"sampler_config"`
	StorageTextureConfig *storageTextureConfig `json:"storage_texture_config"`
}

type bufferConfig struct {
	Dynamic        bool   `json:"dynamic"`
	ReadOnly       bool   `json:"read_only"`
	MinBindingSize uint64 `json:"min_binding_size"`
}

type textureConfig struct {
	Dimension     *string `json:"dimension"`
	ComponentType *string `json:"component_type"`
	Multisampled  bool    `json:"multisampled"`
}

type samplerConfig struct {
	Comparison bool `json:"comparison"`
}

type storageTextureConfig struct {
	Dimension     *string `json:"dimension"`
	ComponentType *string `json:"component_type"`
	Format        *string `json:"format"`
	ReadOnly      bool    `json:"readonly"`
}

// parseBindingSets decodes and validates a binding description. Every error names the
// offending file and field.
//
// Parameters:
//   - path: the file path, used in error messages
//   - data: the raw JSON
//
// Returns:
//   - [][]Binding: the validated sets, one per layout
//   - error: a *resource.ConfigError on the first problem found
func parseBindingSets(path string, data []byte) ([][]Binding, error) {
	var file bindingFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, resource.NewConfigError(path, "", "", fmt.Errorf("%w: %v", resource.ErrMalformed, err))
	}
	if len(file.Bindings) == 0 || bytes.Equal(bytes.TrimSpace(file.Bindings), []byte("null")) {
		return nil, resource.NewConfigError(path, "bindings", "", resource.ErrMissingField)
	}

	rawSets, err := decodeSets(file.Bindings)
	if err != nil {
		return nil, resource.NewConfigError(path, "bindings", "", fmt.Errorf("%w: %v", resource.ErrMalformed, err))
	}
	if len(rawSets) == 0 {
		return nil, resource.NewConfigError(path, "bindings", "", fmt.Errorf("%w: no binding sets", resource.ErrMalformed))
	}

	sets := make([][]Binding, 0, len(rawSets))
	for i, rawSet := range rawSets {
		seen := make(map[uint32]bool, len(rawSet))
		set := make([]Binding, 0, len(rawSet))
		for j, raw := range rawSet {
			field := fmt.Sprintf("bindings[%d][%d]", i, j)
			b, err := parseEntry(path, field, raw)
			if err != nil {
				return nil, err
			}
			if seen[b.Slot] {
				return nil, resource.NewConfigError(path, field+".slot", fmt.Sprint(b.Slot),
					fmt.Errorf("%w: duplicate slot", resource.ErrMalformed))
			}
			seen[b.Slot] = true
			set = append(set, b)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// decodeSets accepts both the nested and the flat layout of the bindings member.
func decodeSets(raw json.RawMessage) ([][]rawEntry, error) {
	var nested [][]rawEntry
	if err := json.Unmarshal(raw, &nested); err == nil {
		return nested, nil
	}
	var flat []rawEntry
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return [][]rawEntry{flat}, nil
}

func parseEntry(path, field string, raw rawEntry) (Binding, error) {
	var b Binding
	if raw.Slot == nil {
		return b, resource.NewConfigError(path, field+".slot", "", resource.ErrMissingField)
	}
	b.Slot = *raw.Slot

	if len(raw.Visibility) == 0 {
		return b, resource.NewConfigError(path, field+".visibility", "", resource.ErrMissingField)
	}
	for _, name := range raw.Visibility {
		stage, ok := visibilityNames[name]
		if !ok {
			return b, resource.NewConfigError(path, field+".visibility", name, resource.ErrUnknownValue)
		}
		b.Visibility |= stage
	}

	if raw.Type == nil {
		return b, resource.NewConfigError(path, field+".type", "", resource.ErrMissingField)
	}
	bindingType, ok := bindingTypeNames[*raw.Type]
	if !ok {
		return b, resource.NewConfigError(path, field+".type", *raw.Type, resource.ErrUnknownValue)
	}
	b.Type = bindingType

	switch bindingType {
	case BindingTypeUniform:
		if cfg := raw.UniformConfig; cfg != nil {
			b.Dynamic = cfg.Dynamic
			b.MinBindingSize = cfg.MinBindingSize
		}
	case BindingTypeStorage:
		if cfg := raw.StorageConfig; cfg != nil {
			b.Dynamic = cfg.Dynamic
			b.ReadOnly = cfg.ReadOnly
			b.MinBindingSize = cfg.MinBindingSize
		}
	case BindingTypeSampler:
		if cfg := raw.SamplerConfig; cfg != nil {
			b.Comparison = cfg.Comparison
		}
	case BindingTypeTexture:
		return parseTexture(path, field+".texture_config", raw.TextureConfig, b)
	case BindingTypeStorageTexture:
		return parseStorageTexture(path, field+".storage_texture_config", raw.StorageTextureConfig, b)
	}
	return b, nil
}

func parseTexture(path, field string, cfg *textureConfig, b Binding) (Binding, error) {
	if cfg == nil {
		return b, resource.NewConfigError(path, field, "", resource.ErrMissingField)
	}
	dimension, err := lookup(path, field+".dimension", cfg.Dimension, dimensionNames)
	if err != nil {
		return b, err
	}
	sampleType, err := lookup(path, field+".component_type", cfg.ComponentType, componentTypeNames)
	if err != nil {
		return b, err
	}
	if cfg.Multisampled && dimension != wgpu.TextureViewDimension2D {
		return b, resource.NewConfigError(path, field+".multisampled", *cfg.Dimension,
			fmt.Errorf("%w: multisampled textures must be 2d", resource.ErrUnsupported))
	}
	b.Dimension = dimension
	b.SampleType = sampleType
	b.Multisampled = cfg.Multisampled
	return b, nil
}

func parseStorageTexture(path, field string, cfg *storageTextureConfig, b Binding) (Binding, error) {
	if cfg == nil {
		return b, resource.NewConfigError(path, field, "", resource.ErrMissingField)
	}
	dimension, err := lookup(path, field+".dimension", cfg.Dimension, dimensionNames)
	if err != nil {
		return b, err
	}
	if !storageDimensions[dimension] {
		return b, resource.NewConfigError(path, field+".dimension", *cfg.Dimension,
			fmt.Errorf("%w: not a storage texture dimension", resource.ErrUnsupported))
	}
	if cfg.ComponentType == nil {
		return b, resource.NewConfigError(path, field+".component_type", "", resource.ErrMissingField)
	}
	component := *cfg.ComponentType
	switch component {
	case "float", "sint", "uint":
	default:
		return b, resource.NewConfigError(path, field+".component_type", component, resource.ErrUnknownValue)
	}
	texel, err := lookup(path, field+".format", cfg.Format, texelFormatNames)
	if err != nil {
		return b, err
	}
	if texel.component != component {
		return b, resource.NewConfigError(path, field+".format", *cfg.Format,
			fmt.Errorf("%w: format reads as %s, component_type is %s", resource.ErrMalformed, texel.component, component))
	}
	b.Dimension = dimension
	b.Format = texel.format
	b.ReadOnly = cfg.ReadOnly
	return b, nil
}

// lookup resolves a required enum string against its table.
func lookup[T any](path, field string, value *string, table map[string]T) (T, error) {
	var zero T
	if value == nil {
		return zero, resource.NewConfigError(path, field, "", resource.ErrMissingField)
	}
	v, ok := table[*value]
	if !ok {
		return zero, resource.NewConfigError(path, field, *value, resource.ErrUnknownValue)
	}
	return v, nil
}
