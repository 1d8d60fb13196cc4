package scene

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest is a YAML scene description: named assets and the entities that use them.
//
//	models:
//	  cube: models/cube.glb
//	entities:
//	  - model: cube
//	    transform: {position: [0, 1, 0]}
//	    grid: {count: [10, 1, 5], spacing: [2, 0, 2]}
type Manifest struct {
	Models     map[string]string `yaml:"models"`
	HeightMaps map[string]string `yaml:"heightmaps"`
	Entities   []EntitySpec      `yaml:"entities"`
}

// EntitySpec describes one entity, or a grid of identical entities.
type EntitySpec struct {
	Name             string                `yaml:"name"`
	Model            string                `yaml:"model"`
	HeightMap        string                `yaml:"heightmap"`
	HeightScale      float32               `yaml:"height_scale"`
	Transform        TransformSpec         `yaml:"transform"`
	Grid             *GridSpec             `yaml:"grid"`
	PointLight       *PointLightSpec       `yaml:"point_light"`
	DirectionalLight *DirectionalLightSpec `yaml:"directional_light"`
	LightMarker      bool                  `yaml:"light_marker"`
}

// TransformSpec is a transform with the rotation given as XYZ Euler angles in degrees.
type TransformSpec struct {
	Position [3]float32  `yaml:"position"`
	Rotation [3]float32  `yaml:"rotation"`
	Scale    *[3]float32 `yaml:"scale"`
}

// GridSpec repeats an entity Count[0] x Count[1] x Count[2] times, offset by Spacing per step.
type GridSpec struct {
	Count   [3]int     `yaml:"count"`
	Spacing [3]float32 `yaml:"spacing"`
}

// PointLightSpec overrides point light defaults. Omitted fields keep light.NewPointLight values.
type PointLightSpec struct {
	Ambient     *[3]float32 `yaml:"ambient"`
	Diffuse     *[3]float32 `yaml:"diffuse"`
	Specular    *[3]float32 `yaml:"specular"`
	Attenuation *[3]float32 `yaml:"attenuation"`
}

// DirectionalLightSpec overrides directional light defaults.
type DirectionalLightSpec struct {
	Direction    *[3]float32 `yaml:"direction"`
	Ambient      *[3]float32 `yaml:"ambient"`
	Diffuse      *[3]float32 `yaml:"diffuse"`
	Specular     *[3]float32 `yaml:"specular"`
	CastsShadows *bool       `yaml:"casts_shadows"`
	HalfExtent   float32     `yaml:"half_extent"`
	Distance     float32     `yaml:"distance"`
}

// LoadManifest reads and validates a manifest file.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - *Manifest: the manifest
//   - error: error if the file cannot be read, parsed or references unknown assets
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	return m, nil
}

// ParseManifest decodes a manifest document. Unknown keys are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every entity references declared assets and has sane grid counts.
func (m *Manifest) Validate() error {
	for i, spec := range m.Entities {
		if spec.Model != "" {
			if _, ok := m.Models[spec.Model]; !ok {
				return fmt.Errorf("entity %d: unknown model %q", i, spec.Model)
			}
		}
		if spec.HeightMap != "" {
			if _, ok := m.HeightMaps[spec.HeightMap]; !ok {
				return fmt.Errorf("entity %d: unknown heightmap %q", i, spec.HeightMap)
			}
		}
		if g := spec.Grid; g != nil {
			for _, c := range g.Count {
				if c < 1 {
					return fmt.Errorf("entity %d: grid counts must be at least 1, got %v", i, g.Count)
				}
			}
		}
	}
	return nil
}

// ModelSource hands out model handles, usually an *asset.Store[model.Model].
type ModelSource interface {
	Load(path string) (asset.Handle[model.Model], error)
}

// HeightMapSource hands out height map handles, usually an *asset.Store[heightmap.HeightMap].
type HeightMapSource interface {
	Load(path string) (asset.Handle[heightmap.HeightMap], error)
}

// Spawn loads every referenced asset relative to root and spawns the entities into w in manifest order.
// Asset loads only enqueue; the entities are usable before their assets upload.
//
// Parameters:
//   - w: the world to populate
//   - root: the directory asset paths are relative to
//   - models: the model source, may be nil when the manifest declares no models
//   - heightMaps: the height map source, may be nil when the manifest declares no height maps
//
// Returns:
//   - []Entity: the spawned entities
//   - error: error if an asset cannot be loaded
func (m *Manifest) Spawn(w World, root string, models ModelSource, heightMaps HeightMapSource) ([]Entity, error) {
	modelHandles := map[string]asset.Handle[model.Model]{}
	for _, name := range slices.Sorted(maps.Keys(m.Models)) {
		path := m.Models[name]
		if models == nil {
			return nil, fmt.Errorf("model %q declared without a model source", name)
		}
		h, err := models.Load(resolve(root, path))
		if err != nil {
			return nil, errors.Wrapf(err, "model %q", name)
		}
		modelHandles[name] = h
	}

	hmHandles := map[string]asset.Handle[heightmap.HeightMap]{}
	for _, name := range slices.Sorted(maps.Keys(m.HeightMaps)) {
		path := m.HeightMaps[name]
		if heightMaps == nil {
			return nil, fmt.Errorf("heightmap %q declared without a heightmap source", name)
		}
		h, err := heightMaps.Load(resolve(root, path))
		if err != nil {
			return nil, errors.Wrapf(err, "heightmap %q", name)
		}
		hmHandles[name] = h
	}

	var spawned []Entity
	for _, spec := range m.Entities {
		base := spec.Transform.toTransform()
		opts := spec.components(modelHandles, hmHandles)

		count, spacing := [3]int{1, 1, 1}, mgl32.Vec3{}
		if spec.Grid != nil {
			count, spacing = spec.Grid.Count, spec.Grid.Spacing
		}
		for x := range count[0] {
			for y := range count[1] {
				for z := range count[2] {
					t := base
					t.Position = base.Position.Add(mgl32.Vec3{
						float32(x) * spacing[0],
						float32(y) * spacing[1],
						float32(z) * spacing[2],
					})
					spawned = append(spawned, w.Spawn(append([]EntityBuilderOption{WithTransform(t)}, opts...)...))
				}
			}
		}
	}
	return spawned, nil
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, filepath.FromSlash(path))
}

func (s TransformSpec) toTransform() Transform {
	t := NewTransform(s.Position)
	if s.Rotation != ([3]float32{}) {
		t.Rotation = mgl32.AnglesToQuat(
			mgl32.DegToRad(s.Rotation[0]),
			mgl32.DegToRad(s.Rotation[1]),
			mgl32.DegToRad(s.Rotation[2]),
			mgl32.XYZ,
		)
	}
	if s.Scale != nil {
		t.Scale = *s.Scale
	}
	return t
}

func (s EntitySpec) components(models map[string]asset.Handle[model.Model], hms map[string]asset.Handle[heightmap.HeightMap]) []EntityBuilderOption {
	var opts []EntityBuilderOption
	if s.Model != "" {
		opts = append(opts, WithModel(models[s.Model]))
	}
	if s.HeightMap != "" {
		opts = append(opts, WithHeightMap(hms[s.HeightMap], s.HeightScale))
	}
	if p := s.PointLight; p != nil {
		l := light.NewPointLight()
		setVec(&l.Ambient, p.Ambient)
		setVec(&l.Diffuse, p.Diffuse)
		setVec(&l.Specular, p.Specular)
		if a := p.Attenuation; a != nil {
			l.Constant, l.Linear, l.Quadratic = a[0], a[1], a[2]
		}
		opts = append(opts, WithPointLight(l))
	}
	if d := s.DirectionalLight; d != nil {
		var dopts []light.DirectionalLightBuilderOption
		if v := d.Direction; v != nil {
			dopts = append(dopts, light.WithDirection(v[0], v[1], v[2]))
		}
		if d.CastsShadows != nil {
			dopts = append(dopts, light.WithCastsShadows(*d.CastsShadows))
		}
		l := light.NewDirectionalLight(dopts...)
		setVec(&l.Ambient, d.Ambient)
		setVec(&l.Diffuse, d.Diffuse)
		setVec(&l.Specular, d.Specular)
		if d.HalfExtent > 0 {
			l.HalfExtent = d.HalfExtent
		}
		if d.Distance > 0 {
			l.Distance = d.Distance
		}
		opts = append(opts, WithDirectionalLight(l))
	}
	if s.LightMarker {
		opts = append(opts, WithLightMarker())
	}
	return opts
}

func setVec(dst *mgl32.Vec3, v *[3]float32) {
	if v != nil {
		*dst = *v
	}
}
