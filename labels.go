package ggmix

import (
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// LabelSize is the point size of edit-mode labels.
const LabelSize = 14

var (
	labelOnce   sync.Once
	labelSource *text.FontSource
)

// DefaultLabelFace returns a Go Regular face of the given size, or nil if the
// embedded font cannot be parsed.
func DefaultLabelFace(size float64) text.Face {
	labelOnce.Do(func() {
		src, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			Logger().Warn("ggmix: label font unavailable", "err", err)
			return
		}
		labelSource = src
	})
	if labelSource == nil {
		return nil
	}
	return labelSource.Face(size)
}
