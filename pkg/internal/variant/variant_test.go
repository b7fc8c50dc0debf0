package variant_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
)

// pngBytes 生成一幅可解码的 PNG 图片.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	return buf.Bytes()
}

// TestDispatchImageWins 图片内容同时满足图片判定与兜底判定时，声明在前的图片变体胜出.
func TestDispatchImageWins(t *testing.T) {
	m, err := variant.DefaultManifest(variant.DefaultPPOI)
	if err != nil {
		t.Fatalf("DefaultManifest: %v", err)
	}

	f := &model.File{}
	p := &variant.Pending{Name: "photo.png", Data: pngBytes(t, 16, 16)}

	k, err := m.Dispatch(f, p)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if k.Name != "image" {
		t.Errorf("winning kind = %q, want image", k.Name)
	}

	if p.Kind != "image" {
		t.Errorf("pending kind = %q, want image", p.Kind)
	}

	if f.ImageWidth == nil || *f.ImageWidth != 16 {
		t.Errorf("ImageWidth = %v, want 16", f.ImageWidth)
	}

	if f.ImageHeight == nil || *f.ImageHeight != 16 {
		t.Errorf("ImageHeight = %v, want 16", f.ImageHeight)
	}

	if f.ImagePPOI != variant.DefaultPPOI {
		t.Errorf("ImagePPOI = %q, want %q", f.ImagePPOI, variant.DefaultPPOI)
	}
}

// TestDispatchConfiguredPPOI 图片主关注点缺省值取自清单配置，已有值不被改写.
func TestDispatchConfiguredPPOI(t *testing.T) {
	m, err := variant.DefaultManifest("0.25x0.75")
	if err != nil {
		t.Fatalf("DefaultManifest: %v", err)
	}

	f := &model.File{}
	if _, err := m.Dispatch(f, &variant.Pending{Name: "a.png", Data: pngBytes(t, 8, 8)}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if f.ImagePPOI != "0.25x0.75" {
		t.Errorf("ImagePPOI = %q, want configured default", f.ImagePPOI)
	}

	// 行上已有的主关注点优先于缺省值
	g := &model.File{ImagePPOI: "0.1x0.9"}
	if _, err := m.Dispatch(g, &variant.Pending{Name: "b.png", Data: pngBytes(t, 8, 8)}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if g.ImagePPOI != "0.1x0.9" {
		t.Errorf("ImagePPOI = %q, want preexisting value kept", g.ImagePPOI)
	}
}

// TestDispatchNonImageFallsThrough 非图片内容落入兜底下载变体.
func TestDispatchNonImageFallsThrough(t *testing.T) {
	m, err := variant.DefaultManifest(variant.DefaultPPOI)
	if err != nil {
		t.Fatalf("DefaultManifest: %v", err)
	}

	f := &model.File{}
	p := &variant.Pending{Name: "report.pdf", Data: []byte("%PDF-1.4 not an image")}

	k, err := m.Dispatch(f, p)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if k.Name != "download" {
		t.Errorf("winning kind = %q, want download", k.Name)
	}
}

// TestDispatchClearsOtherSlots 分发命中后其余槽位被清空.
func TestDispatchClearsOtherSlots(t *testing.T) {
	m, err := variant.DefaultManifest(variant.DefaultPPOI)
	if err != nil {
		t.Fatalf("DefaultManifest: %v", err)
	}

	w, h := 10, 10
	f := &model.File{ImageFile: "cabinet/old.png", ImageWidth: &w, ImageHeight: &h}
	p := &variant.Pending{Name: "notes.txt", Data: []byte("plain text")}

	if _, err := m.Dispatch(f, p); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if f.ImageFile != "" {
		t.Errorf("ImageFile = %q, want cleared", f.ImageFile)
	}

	if f.ImageWidth != nil || f.ImageHeight != nil {
		t.Errorf("image dims = (%v, %v), want cleared", f.ImageWidth, f.ImageHeight)
	}
}

// TestDispatchNoAcceptingVariant 没有兜底变体时分发报错并指明被拒内容.
func TestDispatchNoAcceptingVariant(t *testing.T) {
	m, err := variant.NewManifest(variant.ImageKind(""))
	if err != nil {
		t.Fatalf("NewManifest: %v", err)
	}

	f := &model.File{}
	p := &variant.Pending{Name: "blob.bin", Data: []byte{0x00, 0x01}}

	_, err = m.Dispatch(f, p)

	var nav *variant.NoAcceptingVariantError
	if !errors.As(err, &nav) {
		t.Fatalf("err = %v, want NoAcceptingVariantError", err)
	}

	if nav.Name != "blob.bin" {
		t.Errorf("rejected name = %q, want blob.bin", nav.Name)
	}
}

// TestNewManifestConfigErrors 清单登记时的配置错误立即暴露.
func TestNewManifestConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		kinds []variant.Kind
	}{
		{"empty manifest", nil},
		{"duplicate name", []variant.Kind{variant.DownloadKind(), variant.DownloadKind()}},
		{"missing accept", []variant.Kind{{
			Name:  "broken",
			Field: "broken_file",
			Get:   func(f *model.File) string { return "" },
			Set:   func(f *model.File, key string) {},
		}}},
		{"missing accessors", []variant.Kind{{
			Name:   "broken",
			Field:  "broken_file",
			Accept: func(*variant.Pending) bool { return true },
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := variant.NewManifest(tt.kinds...)

			var cerr *variant.ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("err = %v, want ConfigError", err)
			}
		})
	}
}

// TestValidateExactlyOneSlot 恰好一个槽位有值才通过校验.
func TestValidateExactlyOneSlot(t *testing.T) {
	m, err := variant.DefaultManifest(variant.DefaultPPOI)
	if err != nil {
		t.Fatalf("DefaultManifest: %v", err)
	}

	tests := []struct {
		name    string
		file    model.File
		wantErr bool
	}{
		{"image only", model.File{ImageFile: "cabinet/a.png"}, false},
		{"download only", model.File{DownloadFile: "cabinet/a.pdf"}, false},
		{"no slot", model.File{}, true},
		{"both slots", model.File{ImageFile: "cabinet/a.png", DownloadFile: "cabinet/a.pdf"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Validate(&tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr = %v", err, tt.wantErr)
			}

			if tt.wantErr {
				var verr *model.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("err = %v, want ValidationError", err)
				}
			}
		})
	}
}
