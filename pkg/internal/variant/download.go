package variant

import (
	"regexp"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
)

// DownloadTypeOther 兜底分类标签.
const DownloadTypeOther = "other"

// downloadTypes 有序的 (标签, 扩展名规则) 表.只看文件名扩展、忽略大小写，
// 首个命中即返回；表以无条件的 other 收尾，分类因此是全函数.
var downloadTypes = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"image", regexp.MustCompile(`(?i)\.(bmp|jpe?g|jp2|jxr|gif|png|tiff?)$`)},
	{"video", regexp.MustCompile(`(?i)\.(mov|m[14]v|mp4|avi|mpe?g|qt|ogv|wmv|flv)$`)},
	{"audio", regexp.MustCompile(`(?i)\.(au|mp3|m4a|wma|oga|ram|wav)$`)},
	{"pdf", regexp.MustCompile(`(?i)\.pdf$`)},
	{"swf", regexp.MustCompile(`(?i)\.swf$`)},
	{"txt", regexp.MustCompile(`(?i)\.txt$`)},
	{"rtf", regexp.MustCompile(`(?i)\.rtf$`)},
	{"zip", regexp.MustCompile(`(?i)\.zip$`)},
	{"doc", regexp.MustCompile(`(?i)\.docx?$`)},
	{"xls", regexp.MustCompile(`(?i)\.xlsx?$`)},
	{"ppt", regexp.MustCompile(`(?i)\.pptx?$`)},
}

// ClassifyDownload 把文件名映射为粗粒度展示分类.纯函数，永不失败；
// 分类只用于展示，绝不参与接受判定.
func ClassifyDownload(name string) string {
	for _, dt := range downloadTypes {
		if dt.re.MatchString(name) {
			return dt.tag
		}
	}

	return DownloadTypeOther
}

// DownloadTypeTags 按优先顺序返回全部分类标签（含 other），供列表过滤使用.
func DownloadTypeTags() []string {
	tags := make([]string, 0, len(downloadTypes)+1)
	for _, dt := range downloadTypes {
		tags = append(tags, dt.tag)
	}

	return append(tags, DownloadTypeOther)
}

// DownloadKind 通用下载变体：无条件接受，作为清单的兜底项声明在最后.
// 保存前按文件名补全 download_type 派生字段.
func DownloadKind() Kind {
	return Kind{
		Name:  "download",
		Field: "download_file",
		Accept: func(*Pending) bool {
			return true
		},
		Get: func(f *model.File) string {
			return f.DownloadFile
		},
		Set: func(f *model.File, key string) {
			f.DownloadFile = key
			if key == "" {
				f.DownloadType = ""
			}
		},
		BeforeSave: func(f *model.File) {
			if f.DownloadFile != "" {
				f.DownloadType = ClassifyDownload(f.DownloadFile)
			}
		},
	}
}

// DefaultManifest 参考清单：图片判定在前，download 兜底在后.
// defaultPPOI 透传给图片变体作主关注点缺省值.在进程启动时调用一次，
// 配置错误直接使启动失败.
func DefaultManifest(defaultPPOI string) (*Manifest, error) {
	return NewManifest(ImageKind(defaultPPOI), DownloadKind())
}
