package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/ecs"
	"github.com/spaghettifunk/tundra/engine/math"
	"github.com/spaghettifunk/tundra/engine/renderer"
)

type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

var ErrUnknownFormat = errors.New("unknown scene format")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return FormatTOML, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

type sceneFile struct {
	Scene sceneDoc `toml:"Scene" yaml:"Scene"`
}

type sceneDoc struct {
	Title      string                `toml:"Title" yaml:"Title"`
	Properties map[string]any        `toml:"Properties,omitempty" yaml:"Properties,omitempty"`
	Entities   map[string]*entityDoc `toml:"Entities" yaml:"Entities"`
}

type entityDoc struct {
	Id                   *uint32         `toml:"Id,omitempty" yaml:"Id,omitempty"`
	UUID                 string          `toml:"UUID,omitempty" yaml:"UUID,omitempty"`
	TagComponent         *tagDoc         `toml:"TagComponent,omitempty" yaml:"TagComponent,omitempty"`
	TransformComponent   *transformDoc   `toml:"TransformComponent,omitempty" yaml:"TransformComponent,omitempty"`
	CameraComponent      *cameraDoc      `toml:"CameraComponent,omitempty" yaml:"CameraComponent,omitempty"`
	LightComponent       *lightDoc       `toml:"LightComponent,omitempty" yaml:"LightComponent,omitempty"`
	ModelComponent       *modelDoc       `toml:"ModelComponent,omitempty" yaml:"ModelComponent,omitempty"`
	ScriptComponent      *scriptDoc      `toml:"ScriptComponent,omitempty" yaml:"ScriptComponent,omitempty"`
	TextComponent        *textDoc        `toml:"TextComponent,omitempty" yaml:"TextComponent,omitempty"`
	RigidBodyComponent   *rigidBodyDoc   `toml:"RigidBodyComponent,omitempty" yaml:"RigidBodyComponent,omitempty"`
	BoxColliderComponent *boxColliderDoc `toml:"BoxColliderComponent,omitempty" yaml:"BoxColliderComponent,omitempty"`
	PropertiesComponent  map[string]any  `toml:"PropertiesComponent,omitempty" yaml:"PropertiesComponent,omitempty"`
}

type tagDoc struct {
	Tag string `toml:"Tag" yaml:"Tag"`
}

// Rotation is in radians.
type transformDoc struct {
	Position []float32 `toml:"Position" yaml:"Position,flow"`
	Rotation []float32 `toml:"Rotation" yaml:"Rotation,flow"`
	Scale    []float32 `toml:"Scale" yaml:"Scale,flow"`
}

type cameraDoc struct {
	Primary          bool    `toml:"Primary" yaml:"Primary"`
	FixedAspectRatio bool    `toml:"FixedAspectRatio" yaml:"FixedAspectRatio"`
	ProjectionType   string  `toml:"ProjectionType" yaml:"ProjectionType"`
	PerspectiveFOV   float32 `toml:"PerspectiveFOV" yaml:"PerspectiveFOV"`
	PerspectiveNear  float32 `toml:"PerspectiveNear" yaml:"PerspectiveNear"`
	PerspectiveFar   float32 `toml:"PerspectiveFar" yaml:"PerspectiveFar"`
	OrthographicSize float32 `toml:"OrthographicSize" yaml:"OrthographicSize"`
	OrthographicNear float32 `toml:"OrthographicNear" yaml:"OrthographicNear"`
	OrthographicFar  float32 `toml:"OrthographicFar" yaml:"OrthographicFar"`
}

type lightDoc struct {
	Type      string    `toml:"Type" yaml:"Type"`
	Color     []float32 `toml:"Color" yaml:"Color,flow"`
	Intensity float32   `toml:"Intensity" yaml:"Intensity"`
	Radius    float32   `toml:"Radius,omitempty" yaml:"Radius,omitempty"`
	Active    *bool     `toml:"Active,omitempty" yaml:"Active,omitempty"`
}

type modelDoc struct {
	Path     string `toml:"Path" yaml:"Path"`
	Drawable *bool  `toml:"Drawable,omitempty" yaml:"Drawable,omitempty"`
}

type scriptDoc struct {
	Path string `toml:"Path" yaml:"Path"`
}

type textDoc struct {
	Content  string    `toml:"Content" yaml:"Content"`
	Font     string    `toml:"Font" yaml:"Font"`
	Color    []float32 `toml:"Color,omitempty" yaml:"Color,omitempty,flow"`
	Drawable *bool     `toml:"Drawable,omitempty" yaml:"Drawable,omitempty"`
}

type rigidBodyDoc struct {
	Type          string  `toml:"Type" yaml:"Type"`
	FixedRotation bool    `toml:"FixedRotation" yaml:"FixedRotation"`
	Mass          float32 `toml:"Mass,omitempty" yaml:"Mass,omitempty"`
}

type boxColliderDoc struct {
	Offset      []float32 `toml:"Offset" yaml:"Offset,flow"`
	Size        []float32 `toml:"Size" yaml:"Size,flow"`
	Friction    float32   `toml:"Friction" yaml:"Friction"`
	Restitution float32   `toml:"Restitution" yaml:"Restitution"`
}

// Serializer reads and writes a Scene as TOML or YAML.
type Serializer struct {
	scene *Scene
}

func NewSerializer(s *Scene) *Serializer {
	return &Serializer{scene: s}
}

func (sz *Serializer) SerializeFile(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := sz.Marshal(format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scene %s: %w", path, err)
	}
	core.LogInfo("scene '%s' saved to %s", sz.scene.Title, path)
	return nil
}

func (sz *Serializer) DeserializeFile(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scene %s: %w", path, err)
	}
	if err := sz.Unmarshal(data, format); err != nil {
		return fmt.Errorf("scene %s: %w", path, err)
	}
	core.LogInfo("scene '%s' loaded from %s (%d entities)", sz.scene.Title, path, sz.scene.EntityCount())
	return nil
}

func (sz *Serializer) Marshal(format Format) ([]byte, error) {
	doc := sceneFile{Scene: sceneDoc{
		Title:      sz.scene.Title,
		Properties: sz.scene.Properties,
		Entities:   make(map[string]*entityDoc),
	}}
	for i, e := range sz.scene.Entities() {
		doc.Scene.Entities[strconv.Itoa(i)] = serializeEntity(e)
	}
	switch format {
	case FormatYAML:
		return yaml.Marshal(&doc)
	default:
		return toml.Marshal(&doc)
	}
}

func (sz *Serializer) Unmarshal(data []byte, format Format) error {
	var doc sceneFile
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = toml.Unmarshal(data, &doc)
	}
	if err != nil {
		return fmt.Errorf("decode scene: %w", err)
	}

	s := sz.scene
	if doc.Scene.Title != "" {
		s.Title = doc.Scene.Title
	}
	for k, v := range doc.Scene.Properties {
		s.Properties[k] = v
	}

	explicit, auto := orderEntities(doc.Scene.Entities)
	if len(explicit) > 0 && *explicit[0].Id >= ecs.MaxEntities {
		return fmt.Errorf("decode scene: entity %q id %d: %w", tagOf(explicit[0]), *explicit[0].Id, ecs.ErrEntityLimit)
	}
	for _, ed := range explicit {
		e, err := s.CreateEntityWithHint(*ed.Id, tagOf(ed))
		if err != nil {
			return err
		}
		sz.deserializeEntity(e, ed)
	}
	for _, ed := range auto {
		sz.deserializeEntity(s.CreateEntity(tagOf(ed)), ed)
	}
	return nil
}

// orderEntities returns the entities with an explicit id by descending id,
// then the others by ascending key.
func orderEntities(entities map[string]*entityDoc) ([]*entityDoc, []*entityDoc) {
	var explicit []*entityDoc
	type keyed struct {
		key string
		doc *entityDoc
	}
	var auto []keyed
	for k, ed := range entities {
		if ed == nil {
			continue
		}
		if ed.Id != nil {
			explicit = append(explicit, ed)
		} else {
			auto = append(auto, keyed{k, ed})
		}
	}
	sort.Slice(explicit, func(i, j int) bool { return *explicit[i].Id > *explicit[j].Id })
	sort.Slice(auto, func(i, j int) bool {
		a, errA := strconv.Atoi(auto[i].key)
		b, errB := strconv.Atoi(auto[j].key)
		if errA != nil || errB != nil {
			return auto[i].key < auto[j].key
		}
		return a < b
	})
	out := make([]*entityDoc, len(auto))
	for i, k := range auto {
		out[i] = k.doc
	}
	return explicit, out
}

func tagOf(ed *entityDoc) string {
	if ed.TagComponent != nil {
		return ed.TagComponent.Tag
	}
	return ""
}

func serializeEntity(e Entity) *entityDoc {
	id := e.handle.ID
	ed := &entityDoc{Id: &id}
	if u := e.UUID(); u != uuid.Nil {
		ed.UUID = u.String()
	}
	if tc, ok := TryGetComponent[TagComponent](e); ok {
		ed.TagComponent = &tagDoc{Tag: tc.Tag}
	}
	if tc, ok := TryGetComponent[TransformComponent](e); ok {
		ed.TransformComponent = &transformDoc{
			Position: tc.Position().Slice(),
			Rotation: tc.EulerRotation().Slice(),
			Scale:    tc.Scale().Slice(),
		}
	}
	if cc, ok := TryGetComponent[CameraComponent](e); ok {
		fov, pn, pf := cc.Camera.Perspective()
		size, on, of := cc.Camera.Orthographic()
		ed.CameraComponent = &cameraDoc{
			Primary:          cc.Primary,
			FixedAspectRatio: cc.FixedAspectRatio,
			ProjectionType:   cc.Camera.ProjectionType().String(),
			PerspectiveFOV:   fov,
			PerspectiveNear:  pn,
			PerspectiveFar:   pf,
			OrthographicSize: size,
			OrthographicNear: on,
			OrthographicFar:  of,
		}
	}
	if lc, ok := TryGetComponent[LightComponent](e); ok {
		active := lc.Active
		ed.LightComponent = &lightDoc{
			Type:      lc.Light.Type.String(),
			Color:     lc.Light.Color.Slice(),
			Intensity: lc.Light.Intensity,
			Radius:    lc.Light.Radius,
			Active:    &active,
		}
	}
	if mc, ok := TryGetComponent[ModelComponent](e); ok {
		drawable := mc.Drawable
		ed.ModelComponent = &modelDoc{Path: mc.Path, Drawable: &drawable}
	}
	if sc, ok := TryGetComponent[ScriptComponent](e); ok {
		ed.ScriptComponent = &scriptDoc{Path: sc.Path}
	}
	if txt, ok := TryGetComponent[TextComponent](e); ok {
		drawable := txt.Drawable
		ed.TextComponent = &textDoc{
			Content:  txt.Text.Content,
			Font:     txt.FontPath,
			Color:    txt.Text.Color.Slice(),
			Drawable: &drawable,
		}
	}
	if rb, ok := TryGetComponent[RigidBodyComponent](e); ok {
		ed.RigidBodyComponent = &rigidBodyDoc{Type: rb.Type.String(), FixedRotation: rb.FixedRotation, Mass: rb.Mass}
	}
	if bc, ok := TryGetComponent[BoxColliderComponent](e); ok {
		ed.BoxColliderComponent = &boxColliderDoc{
			Offset:      []float32{bc.Offset.X, bc.Offset.Y},
			Size:        []float32{bc.Size.X, bc.Size.Y},
			Friction:    bc.Friction,
			Restitution: bc.Restitution,
		}
	}
	if pc, ok := TryGetComponent[PropertiesComponent](e); ok && len(pc.Values) > 0 {
		ed.PropertiesComponent = pc.Values
	}
	return ed
}

func (sz *Serializer) deserializeEntity(e Entity, ed *entityDoc) {
	s := sz.scene
	if ed.UUID != "" {
		if u, err := uuid.Parse(ed.UUID); err == nil {
			AddOrReplaceComponent(e, IDComponent{ID: u})
		} else {
			core.LogWarn("entity '%s' has an invalid UUID %q, keeping a generated one", e.Tag(), ed.UUID)
		}
	}
	if td := ed.TransformComponent; td != nil {
		tc := GetComponent[TransformComponent](e)
		scale := math.NewVec3One()
		if len(td.Scale) > 0 {
			scale = math.NewVec3FromSlice(td.Scale)
		}
		tc.SetPositionRotationScale(
			math.NewVec3FromSlice(td.Position),
			math.NewQuatFromEuler(math.NewVec3FromSlice(td.Rotation)),
			scale,
		)
	}
	if cd := ed.CameraComponent; cd != nil {
		cam := NewSceneCamera()
		if ParseProjectionType(cd.ProjectionType) == ProjectionOrthographic {
			cam.SetOrthographic(orDefault(cd.OrthographicSize, 10), orDefault(cd.OrthographicNear, -1), orDefault(cd.OrthographicFar, 1))
		} else {
			cam.SetPerspective(orDefault(cd.PerspectiveFOV, math.DegToRad(45)), orDefault(cd.PerspectiveNear, 0.01), orDefault(cd.PerspectiveFar, 1000))
		}
		AddComponent(e, CameraComponent{Camera: cam, Primary: cd.Primary, FixedAspectRatio: cd.FixedAspectRatio})
	}
	if ld := ed.LightComponent; ld != nil {
		light := renderer.NewLight()
		light.Type = renderer.ParseLightType(ld.Type)
		light.Color = math.NewVec4FromSlice(ld.Color, light.Color)
		light.Intensity = ld.Intensity
		light.Radius = ld.Radius
		AddComponent(e, LightComponent{Light: light, Active: boolOr(ld.Active, true)})
	}
	if md := ed.ModelComponent; md != nil {
		AddComponent(e, ModelComponent{Path: md.Path, Model: s.loadModel(md.Path), Drawable: boolOr(md.Drawable, true)})
	}
	if sd := ed.ScriptComponent; sd != nil {
		AddComponent(e, ScriptComponent{Path: sd.Path})
	}
	if td := ed.TextComponent; td != nil {
		AddComponent(e, TextComponent{
			Text: renderer.Text{
				Content: td.Content,
				Font:    s.loadFont(td.Font),
				Color:   math.NewVec4FromSlice(td.Color, math.NewVec4One()),
			},
			FontPath: td.Font,
			Drawable: boolOr(td.Drawable, true),
		})
	}
	if bd := ed.BoxColliderComponent; bd != nil {
		bc := NewBoxColliderComponent()
		if len(bd.Offset) >= 2 {
			bc.Offset = math.NewVec2(bd.Offset[0], bd.Offset[1])
		}
		if len(bd.Size) >= 2 {
			bc.Size = math.NewVec2(bd.Size[0], bd.Size[1])
		}
		bc.Friction = bd.Friction
		bc.Restitution = bd.Restitution
		AddComponent(e, bc)
	}
	if rd := ed.RigidBodyComponent; rd != nil {
		AddComponent(e, RigidBodyComponent{Type: ParseBodyType(rd.Type), FixedRotation: rd.FixedRotation, Mass: rd.Mass})
	}
	if len(ed.PropertiesComponent) > 0 {
		AddComponent(e, PropertiesComponent{Values: ed.PropertiesComponent})
	}
}

// loadModel logs missing assets and returns nil so the entity still loads.
func (s *Scene) loadModel(path string) *renderer.Model {
	if path == "" || s.assets == nil {
		return nil
	}
	m, err := s.assets.LoadModel(path)
	if err != nil {
		core.LogWarn("model %s not loaded: %s", path, err)
		return nil
	}
	return m
}

func (s *Scene) loadFont(path string) *renderer.Font {
	if path == "" || s.assets == nil {
		return nil
	}
	f, err := s.assets.LoadFont(path)
	if err != nil {
		core.LogWarn("font %s not loaded: %s", path, err)
		return nil
	}
	return f
}

func orDefault(v, fallback float32) float32 {
	if v == 0 {
		return fallback
	}
	return v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
