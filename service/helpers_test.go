package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/TIANLI0/MaskBlur/config"
	"github.com/TIANLI0/MaskBlur/utils"
	"github.com/stretchr/testify/require"
)

// testMaskPNG 生成一个中间带白色方块的黑色掩码
func testMaskPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{A: 255}
			if x > w/4 && x < 3*w/4 && y > h/4 && y < 3*h/4 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testMaskURI(t *testing.T, w, h int) string {
	return utils.EncodeDataURI("image/png", testMaskPNG(t, w, h))
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Limits: config.LimitsConfig{MaxPayloadSize: 50 * 1024 * 1024},
		Blur: config.BlurConfig{
			Backend:       "bild",
			DefaultRadius: 16,
			MaxConcurrent: 2,
			QueueTimeout:  5,
		},
		Output: config.OutputConfig{
			MaskDir:   dir + "/mask_outputs",
			SourceDir: dir + "/source_outputs",
		},
	}
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func decodeImage(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}
