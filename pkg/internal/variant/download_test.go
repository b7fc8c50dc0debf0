package variant_test

import (
	"testing"

	"github.com/yeisme/mediacabinet/pkg/internal/variant"
)

// TestClassifyDownload 分类是全函数：任意文件名恰好得到一个标签，兜底为 other.
func TestClassifyDownload(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.JPG", "image"},
		{"photo.jpeg", "image"},
		{"scan.tiff", "image"},
		{"clip.mp4", "video"},
		{"clip.MPEG", "video"},
		{"song.mp3", "audio"},
		{"voice.wav", "audio"},
		{"manual.pdf", "pdf"},
		{"banner.swf", "swf"},
		{"readme.txt", "txt"},
		{"letter.rtf", "rtf"},
		{"bundle.zip", "zip"},
		{"essay.doc", "doc"},
		{"essay.docx", "doc"},
		{"sheet.xls", "xls"},
		{"sheet.xlsx", "xls"},
		{"deck.ppt", "ppt"},
		{"deck.pptx", "ppt"},
		{"binary.bin", "other"},
		{"no-extension", "other"},
		{"", "other"},
		{"archive.tar.gz", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := variant.ClassifyDownload(tt.name); got != tt.want {
				t.Errorf("ClassifyDownload(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

// TestDownloadTypeTagsEndsWithOther 标签表以 other 收尾.
func TestDownloadTypeTagsEndsWithOther(t *testing.T) {
	tags := variant.DownloadTypeTags()
	if len(tags) == 0 {
		t.Fatal("no tags")
	}

	if tags[len(tags)-1] != variant.DownloadTypeOther {
		t.Errorf("last tag = %q, want %q", tags[len(tags)-1], variant.DownloadTypeOther)
	}
}
