package renderer

import (
	"github.com/spaghettifunk/tundra/engine/math"
)

// Camera supplies the projection used by BeginScene. The view comes from the
// camera's world transform.
type Camera interface {
	Projection() math.Mat4
}

// Drawable is anything the renderer accepts between BeginScene and EndScene.
type Drawable interface {
	DrawableName() string
}

/**
 * @brief Represents a Texture.
 */
type Texture struct {
	/** @brief The texture name. */
	Name string
	/** @brief The texture width. */
	Width uint32
	/** @brief The texture height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Indicates if the texture has transparency. */
	HasTransparency bool
	/** @brief Raw RGBA pixels, row major. */
	Pixels []uint8
}

type Mesh struct {
	Name     string
	Vertices []math.Vertex3D
	Indices  []uint32
	Material string
	Texture  *Texture
	Extents  math.Extents3D
	Center   math.Vec3
}

// Model is a loaded mesh collection.
type Model struct {
	Name   string
	Meshes []*Mesh
}

func (m *Model) DrawableName() string {
	if m == nil {
		return ""
	}
	return m.Name
}

func (m *Model) VertexCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += len(mesh.Vertices)
	}
	return n
}

type LightType uint8

const (
	LightTypeDirectional LightType = iota
	LightTypePoint
)

func (t LightType) String() string {
	if t == LightTypePoint {
		return "point"
	}
	return "directional"
}

func ParseLightType(s string) LightType {
	if s == "point" {
		return LightTypePoint
	}
	return LightTypeDirectional
}

type Light struct {
	Type      LightType
	Color     math.Vec4
	Intensity float32
	// Only used by point lights.
	Radius float32
}

func NewLight() Light {
	return Light{Type: LightTypeDirectional, Color: math.NewVec4One(), Intensity: 1}
}

type FontGlyph struct {
	Codepoint rune
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type FontKerning struct {
	Codepoint0 rune
	Codepoint1 rune
	Amount     int16
}

// Font is a bitmap font atlas description.
type Font struct {
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32
	Pages      []string
	Glyphs     map[rune]FontGlyph
	Kernings   map[[2]rune]int16
}

type Text struct {
	Content string
	Font    *Font
	Color   math.Vec4
}

func (t *Text) DrawableName() string {
	return "text"
}

// Measure returns the width and height of the text in font pixels.
func (t *Text) Measure() (float32, float32) {
	if t.Font == nil {
		return 0, 0
	}
	var width, lineWidth float32
	lines := 1
	var prev rune
	for _, r := range t.Content {
		if r == '\n' {
			width = max(width, lineWidth)
			lineWidth = 0
			prev = 0
			lines++
			continue
		}
		g, ok := t.Font.Glyphs[r]
		if !ok {
			prev = 0
			continue
		}
		lineWidth += float32(g.XAdvance)
		if prev != 0 {
			lineWidth += float32(t.Font.Kernings[[2]rune{prev, r}])
		}
		prev = r
	}
	width = max(width, lineWidth)
	return width, float32(lines) * float32(t.Font.LineHeight)
}
