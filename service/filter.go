package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/convolution"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Filter 对编码后的图片做高斯模糊，输出固定为 PNG
type Filter interface {
	Blur(src []byte, radius int) ([]byte, error)
}

var filters = map[string]func() Filter{
	"bild": func() Filter { return BildFilter{} },
}

func registerFilter(name string, fn func() Filter) {
	filters[name] = fn
}

// NewFilter 按名称创建模糊后端
func NewFilter(name string) (Filter, error) {
	fn, ok := filters[name]
	if !ok {
		names := make([]string, 0, len(filters))
		for n := range filters {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown blur backend %q (available: %v)", name, names)
	}
	return fn(), nil
}

// BildFilter 纯 Go 实现，radius 即标准差
type BildFilter struct{}

func (BildFilter) Blur(src []byte, radius int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var blurred *image.RGBA
	if radius <= 0 {
		blurred = clone.AsRGBA(img)
	} else {
		k := GaussianKernel(float64(radius))
		opts := convolution.Options{Bias: 0, Wrap: false, KeepAlpha: false}
		blurred = convolution.Convolve(img, k, &opts)
		blurred = convolution.Convolve(blurred, k.Transposed(), &opts)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, blurred); err != nil {
		return nil, fmt.Errorf("failed to encode %s as png: %w", format, err)
	}
	return buf.Bytes(), nil
}

// GaussianKernel 一维高斯核，标准差为 sigma，长度 2*ceil(3σ)+1，已归一化
func GaussianKernel(sigma float64) convolution.Matrix {
	half := int(math.Ceil(sigma * 3))
	k := convolution.NewKernel(2*half+1, 1)
	twoSigmaSq := 2 * sigma * sigma
	for i := range k.Matrix {
		x := float64(i - half)
		k.Matrix[i] = math.Exp(-(x * x) / twoSigmaSq)
	}
	return k.Normalized()
}
