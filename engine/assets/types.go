package assets

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrUnknownAssetType = errors.New("unknown asset type")
	ErrWrongAssetType   = errors.New("asset has a different type")
	ErrClosed           = errors.New("asset manager is shut down")
	ErrWatchDisabled    = errors.New("file watching is disabled")
)

type AssetType uint8

const (
	AssetTypeNone AssetType = iota
	AssetTypeTexture
	AssetTypeModel
	AssetTypeBitmapFont
	AssetTypeTrueTypeFont
	AssetTypeScript
	AssetTypeShader
	AssetTypeScene
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeTexture:
		return "texture"
	case AssetTypeModel:
		return "model"
	case AssetTypeBitmapFont:
		return "bitmap font"
	case AssetTypeTrueTypeFont:
		return "truetype font"
	case AssetTypeScript:
		return "script"
	case AssetTypeShader:
		return "shader"
	case AssetTypeScene:
		return "scene"
	}
	return "none"
}

type AssetInfo struct {
	Path       string
	Type       AssetType
	Size       int64
	ModTime    time.Time
	LastLoaded time.Time
}

// Loader turns a file into an engine resource.
type Loader interface {
	Load(path string) (any, error)
}

func determineAssetType(path string) AssetType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return AssetTypeTexture
	case ".obj":
		return AssetTypeModel
	case ".fnt":
		return AssetTypeBitmapFont
	case ".ttf", ".otf":
		return AssetTypeTrueTypeFont
	case ".tengo":
		return AssetTypeScript
	case ".vert", ".frag", ".glsl", ".spv":
		return AssetTypeShader
	case ".toml", ".yaml", ".yml":
		return AssetTypeScene
	default:
		return AssetTypeNone
	}
}
