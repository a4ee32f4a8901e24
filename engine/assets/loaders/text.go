package loaders

import (
	"os"
)

// TextLoader returns the raw bytes of scripts and shader sources.
type TextLoader struct{}

func (tl *TextLoader) Load(path string) (any, error) {
	return os.ReadFile(path)
}
