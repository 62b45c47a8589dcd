package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TIANLI0/MaskBlur/model"
	"github.com/TIANLI0/MaskBlur/utils"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	items map[string]string
	sets  int
	err   error
}

func (c *memoryCache) GetPreview(_ context.Context, key string) (string, bool, error) {
	if c.err != nil {
		return "", false, c.err
	}
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *memoryCache) SetPreview(_ context.Context, key, value string) error {
	c.sets++
	if c.items == nil {
		c.items = map[string]string{}
	}
	c.items[key] = value
	return c.err
}

func newTestMaskService(t *testing.T, cache PreviewCache) *MaskService {
	cfg := testConfig(t)
	return NewMaskService(cfg, NewBlurService(&cfg.Blur, BildFilter{}), cache)
}

func intPtr(v int) *int { return &v }

func TestFilenames(t *testing.T) {
	require.Equal(t, "mask_M_T_16px.png", MaskFilename("M", "T", 16))
	require.Equal(t, "source_M_T.png", SourceFilename("M", "T"))
}

func TestMaskService_PreviewRoundTrip(t *testing.T) {
	svc := newTestMaskService(t, nil)
	raw := testMaskPNG(t, 20, 12)

	resp, err := svc.Preview(context.Background(), &model.BlurRequest{
		Mask:       utils.EncodeDataURI("image/png", raw),
		Mode:       "inpaint",
		BlurRadius: intPtr(3),
	})
	require.NoError(t, err)
	require.Equal(t, "inpaint", resp.Mode)
	require.True(t, strings.HasPrefix(resp.BlurredMask, "data:image/png;base64,"))

	want, err := BildFilter{}.Blur(raw, 3)
	require.NoError(t, err)
	got, err := utils.DecodeDataURI(resp.BlurredMask)
	require.NoError(t, err)
	require.Equal(t, want, got)

	w, h := decodeDims(t, got)
	require.Equal(t, 20, w)
	require.Equal(t, 12, h)
}

func TestMaskService_PreviewErrors(t *testing.T) {
	svc := newTestMaskService(t, nil)

	_, err := svc.Preview(context.Background(), &model.BlurRequest{})
	require.Equal(t, model.InvalidPayload, model.KindOf(err))

	_, err = svc.Preview(context.Background(), &model.BlurRequest{Mask: "data:image/png;base64"})
	require.Equal(t, model.InvalidPayload, model.KindOf(err))

	_, err = svc.Preview(context.Background(), &model.BlurRequest{Mask: utils.EncodeDataURI("image/png", []byte("junk"))})
	require.Equal(t, model.FilterFailure, model.KindOf(err))
}

func TestMaskService_PreviewCache(t *testing.T) {
	cache := &memoryCache{}
	svc := newTestMaskService(t, cache)
	mask := testMaskURI(t, 8, 8)
	req := &model.BlurRequest{Mask: mask, Mode: "outpaint"}

	first, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)
	require.Contains(t, cache.items, PreviewKey(utils.StringMD5(mask), 16))

	second, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, cache.sets)
}

func TestMaskService_PreviewCacheErrorIgnored(t *testing.T) {
	svc := newTestMaskService(t, &memoryCache{err: errors.New("redis down")})

	resp, err := svc.Preview(context.Background(), &model.BlurRequest{Mask: testMaskURI(t, 8, 8)})
	require.NoError(t, err)
	require.NotEmpty(t, resp.BlurredMask)
}

func TestMaskService_Export(t *testing.T) {
	svc := newTestMaskService(t, nil)
	raw := testMaskPNG(t, 16, 16)
	source := []byte("source image bytes")

	resp, err := svc.Export(context.Background(), &model.BlurRequest{
		Mask:        utils.EncodeDataURI("image/png", raw),
		SourceImage: utils.EncodeDataURI("image/png", source),
		Mode:        "M",
		Timestamp:   "T",
		BlurRadius:  intPtr(16),
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "mask_M_T_16px.png", resp.MaskFilename)
	require.Equal(t, "source_M_T.png", resp.SourceFilename)
	require.Equal(t, "M", resp.Mode)

	gotMask, err := os.ReadFile(filepath.Join(svc.maskDir, resp.MaskFilename))
	require.NoError(t, err)
	want, err := BildFilter{}.Blur(raw, 16)
	require.NoError(t, err)
	require.Equal(t, want, gotMask)

	gotSource, err := os.ReadFile(filepath.Join(svc.sourceDir, resp.SourceFilename))
	require.NoError(t, err)
	require.Equal(t, source, gotSource)
}

func TestMaskService_ExportDefaultRadius(t *testing.T) {
	svc := newTestMaskService(t, nil)

	resp, err := svc.Export(context.Background(), &model.BlurRequest{
		Mask:        testMaskURI(t, 8, 8),
		SourceImage: testMaskURI(t, 8, 8),
		Mode:        "inpaint",
		Timestamp:   "1700000000",
	})
	require.NoError(t, err)
	require.Equal(t, "mask_inpaint_1700000000_16px.png", resp.MaskFilename)
}

func TestMaskService_ExportOverwrites(t *testing.T) {
	svc := newTestMaskService(t, nil)
	req := func(source string) *model.BlurRequest {
		return &model.BlurRequest{
			Mask:        testMaskURI(t, 8, 8),
			SourceImage: utils.EncodeDataURI("image/png", []byte(source)),
			Mode:        "M",
			Timestamp:   "T",
		}
	}

	_, err := svc.Export(context.Background(), req("first"))
	require.NoError(t, err)
	_, err = svc.Export(context.Background(), req("second"))
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(svc.sourceDir, "source_M_T.png"))
	require.NoError(t, err)
	require.Equal(t, "second", string(got))
}

func TestMaskService_ExportTooLarge(t *testing.T) {
	svc := newTestMaskService(t, nil)
	svc.maxSize = 1024

	_, err := svc.Export(context.Background(), &model.BlurRequest{
		Mask:        strings.Repeat("a", 600),
		SourceImage: strings.Repeat("b", 600),
		Mode:        "M",
		Timestamp:   "T",
	})
	require.Equal(t, model.PayloadTooLarge, model.KindOf(err))
	require.ErrorContains(t, err, "1024")

	_, statErr := os.Stat(svc.maskDir)
	require.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(svc.sourceDir)
	require.True(t, os.IsNotExist(statErr))
}

func TestMaskService_ExportInvalidPayload(t *testing.T) {
	svc := newTestMaskService(t, nil)
	valid := testMaskURI(t, 8, 8)

	tests := []struct {
		name string
		req  model.BlurRequest
	}{
		{"missing mask", model.BlurRequest{SourceImage: valid, Mode: "M", Timestamp: "T"}},
		{"missing source", model.BlurRequest{Mask: valid, Mode: "M", Timestamp: "T"}},
		{"mask without separator", model.BlurRequest{Mask: "data:image/png;base64", SourceImage: valid, Mode: "M", Timestamp: "T"}},
		{"source without separator", model.BlurRequest{Mask: valid, SourceImage: "garbage", Mode: "M", Timestamp: "T"}},
		{"mode escapes dir", model.BlurRequest{Mask: valid, SourceImage: valid, Mode: "../x", Timestamp: "T"}},
		{"timestamp with slash", model.BlurRequest{Mask: valid, SourceImage: valid, Mode: "M", Timestamp: "2024/01/01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Export(context.Background(), &tt.req)
			require.Equal(t, model.InvalidPayload, model.KindOf(err))
		})
	}
}

func TestMaskService_ExportWriteFailure(t *testing.T) {
	svc := newTestMaskService(t, nil)
	// 用普通文件占住输出目录路径
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	svc.maskDir = blocker

	_, err := svc.Export(context.Background(), &model.BlurRequest{
		Mask:        testMaskURI(t, 8, 8),
		SourceImage: testMaskURI(t, 8, 8),
		Mode:        "M",
		Timestamp:   "T",
	})
	require.Equal(t, model.WriteFailure, model.KindOf(err))
}
