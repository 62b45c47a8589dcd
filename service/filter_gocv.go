//go:build gocv
// +build gocv

package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

func init() {
	registerFilter("gocv", func() Filter { return GoCVFilter{} })
}

// GoCVFilter 基于 OpenCV 的模糊后端
type GoCVFilter struct{}

func (GoCVFilter) Blur(src []byte, radius int) ([]byte, error) {
	img, err := gocv.IMDecode(src, gocv.IMReadUnchanged)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, errors.New("failed to decode image")
	}

	out := img
	// OpenCV 要求 sigma > 0，非正半径按原图输出
	if radius > 0 {
		blurred := gocv.NewMat()
		defer blurred.Close()
		sigma := float64(radius)
		gocv.GaussianBlur(img, &blurred, image.Point{}, sigma, sigma, gocv.BorderReflect101)
		out = blurred
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	defer buf.Close()

	return bytes.Clone(buf.GetBytes()), nil
}
