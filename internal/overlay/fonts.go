package overlay

import (
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontCache хранит начертания по размеру в физических пикселях.
type fontCache struct {
	once  sync.Once
	font  *opentype.Font
	mu    sync.Mutex
	faces map[int]font.Face
}

func newFontCache() *fontCache {
	return &fontCache{faces: make(map[int]font.Face)}
}

// face возвращает начертание Go Regular нужного размера; если шрифт не
// разобрался, используется растровый 7x13.
func (fc *fontCache) face(size float64) font.Face {
	fc.once.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err == nil {
			fc.font = f
		}
	})
	if fc.font == nil {
		return basicfont.Face7x13
	}

	key := int(math.Round(size * 4))
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if f, ok := fc.faces[key]; ok {
		return f
	}
	f, err := opentype.NewFace(fc.font, &opentype.FaceOptions{
		Size:    float64(key) / 4,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	fc.faces[key] = f
	return f
}
