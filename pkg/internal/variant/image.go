package variant

import (
	"bytes"
	"image"
	"image/png"
	"io"

	// 注册常见光栅格式的解码器
	_ "image/gif"
	_ "image/jpeg"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
)

// DefaultPPOI 图片主关注点默认值（居中）.
const DefaultPPOI = "0.5x0.5"

// ImageKind 图片变体：只有能完整解码并重新编码的光栅图片才被接受，
// 不信任扩展名.命中后记录宽高与主关注点；defaultPPOI 为主关注点缺省值
// （来自 library.default_ppoi），传空串时取居中.
func ImageKind(defaultPPOI string) Kind {
	if defaultPPOI == "" {
		defaultPPOI = DefaultPPOI
	}

	return Kind{
		Name:   "image",
		Field:  "image_file",
		Accept: acceptImage,
		Get: func(f *model.File) string {
			return f.ImageFile
		},
		Set: func(f *model.File, key string) {
			f.ImageFile = key
			if key == "" {
				f.ImageWidth = nil
				f.ImageHeight = nil
			}
		},
		OnAccept: func(f *model.File, p *Pending) {
			recordImageMeta(f, p, defaultPPOI)
		},
	}
}

// acceptImage 尝试解码整幅图片并重新编码，任一步失败则拒绝.
func acceptImage(p *Pending) bool {
	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return false
	}

	// 重新编码验证像素数据可读，而非仅头部合法
	if err := png.Encode(io.Discard, img); err != nil {
		return false
	}

	return true
}

// recordImageMeta 记录宽高，PPOI 缺省取 defaultPPOI.
func recordImageMeta(f *model.File, p *Pending, defaultPPOI string) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data))
	if err != nil {
		return
	}

	w, h := cfg.Width, cfg.Height
	f.ImageWidth = &w
	f.ImageHeight = &h

	if f.ImagePPOI == "" {
		f.ImagePPOI = defaultPPOI
	}
}
