package overlay

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontOnce    sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font

	faceMu    sync.Mutex
	faceCache = map[faceKey]*cachedFace{}
)

type faceKey struct {
	bold bool
	size float64
}

// cachedFace serializes drawing through a font.Face, which is not safe for
// concurrent use: its glyph rasterization buffers are shared state.
type cachedFace struct {
	mu   sync.Mutex
	face font.Face
}

func parseFonts() {
	var err error
	regularFont, err = opentype.Parse(goregular.TTF)
	if err != nil {
		panic(err) // embedded font, cannot fail
	}
	boldFont, err = opentype.Parse(gobold.TTF)
	if err != nil {
		panic(err)
	}
}

// face returns a cached font face for the given weight and pixel size.
// Callers must hold the returned mutex for the duration of measuring and
// drawing.
func face(bold bool, size float64) *cachedFace {
	fontOnce.Do(parseFonts)

	faceMu.Lock()
	defer faceMu.Unlock()

	key := faceKey{bold: bold, size: size}
	if f, ok := faceCache[key]; ok {
		return f
	}

	src := regularFont
	if bold {
		src = boldFont
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic(err)
	}
	cf := &cachedFace{face: f}
	faceCache[key] = cf
	return cf
}
