// Package variant 实现文件变体槽位的登记与分发：一个具体文件类型携带一份
// 有序的变体清单（manifest），上传内容按声明顺序逐个询问接受判定，第一个
// 接受者获得槽位.清单在进程启动时登记并校验，配置错误不会进入请求路径.
package variant

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
)

// Pending 尚未提交到对象存储的新内容.
// Committed 与 Key 由保存协议维护：内容在对象存储落键之前 Committed 恒为
// false，覆盖保存分支只在未提交状态下生效.
type Pending struct {
	Name        string // 上传方给出的文件名
	ContentType string
	Data        []byte

	Kind      string // 接受该内容的变体名，由 Dispatch 填写
	Committed bool   // 是否已在对象存储落键
	Key       string // 落键后的对象键
}

// Size 内容字节数.
func (p *Pending) Size() int64 {
	return int64(len(p.Data))
}

// Reader 返回内容的读取器.
func (p *Pending) Reader() io.Reader {
	return bytes.NewReader(p.Data)
}

// Kind 一个变体槽位的登记记录.Accept 判定内容是否属于该变体；Get/Set
// 读写槽位持有的对象键；OnAccept 在分发命中后记录变体元数据；BeforeSave
// 在行保存前补全派生字段.
type Kind struct {
	Name  string
	Field string

	Accept     func(p *Pending) bool
	Get        func(f *model.File) string
	Set        func(f *model.File, key string)
	OnAccept   func(f *model.File, p *Pending)
	BeforeSave func(f *model.File)
}

// ConfigError 清单登记错误，在启动时抛出.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "variant manifest misconfigured: " + e.Reason
}

// NoAcceptingVariantError 没有任何变体接受上传内容.
type NoAcceptingVariantError struct {
	Name string
}

func (e *NoAcceptingVariantError) Error() string {
	return fmt.Sprintf("no variant kind accepts %q", e.Name)
}

// Manifest 具体文件类型的有序变体清单.
type Manifest struct {
	kinds []Kind
}

// NewManifest 登记变体清单并立即校验：名称/字段不得重复，Accept/Get/Set
// 缺一不可.校验失败返回 *ConfigError.
func NewManifest(kinds ...Kind) (*Manifest, error) {
	if len(kinds) == 0 {
		return nil, &ConfigError{Reason: "no variant kinds declared"}
	}

	names := make(map[string]struct{}, len(kinds))
	fields := make(map[string]struct{}, len(kinds))

	for _, k := range kinds {
		if k.Name == "" {
			return nil, &ConfigError{Reason: "variant kind with empty name"}
		}

		if _, dup := names[k.Name]; dup {
			return nil, &ConfigError{Reason: fmt.Sprintf("duplicate variant kind %q", k.Name)}
		}

		names[k.Name] = struct{}{}

		if k.Field == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("variant kind %q has no slot field", k.Name)}
		}

		if _, dup := fields[k.Field]; dup {
			return nil, &ConfigError{Reason: fmt.Sprintf("duplicate slot field %q", k.Field)}
		}

		fields[k.Field] = struct{}{}

		if k.Accept == nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("variant kind %q has no acceptance handler", k.Name)}
		}

		if k.Get == nil || k.Set == nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("variant kind %q has no slot accessors", k.Name)}
		}
	}

	return &Manifest{kinds: kinds}, nil
}

// Kinds 按声明顺序返回清单.
func (m *Manifest) Kinds() []Kind {
	return m.kinds
}

// KindByName 按名称查找变体.
func (m *Manifest) KindByName(name string) (*Kind, bool) {
	for i := range m.kinds {
		if m.kinds[i].Name == name {
			return &m.kinds[i], true
		}
	}

	return nil, false
}

// Dispatch 按声明顺序询问各变体的接受判定，第一个接受者胜出：其余槽位
// 清空，Pending 记录胜出变体名，OnAccept 钩子记录元数据.没有接受者时
// 返回 *NoAcceptingVariantError.除槽位赋值外无任何持久化副作用.
func (m *Manifest) Dispatch(f *model.File, p *Pending) (*Kind, error) {
	for i := range m.kinds {
		k := &m.kinds[i]
		if !k.Accept(p) {
			continue
		}

		p.Kind = k.Name

		// 其余槽位清空，保证恰好一个槽位有值
		for j := range m.kinds {
			if j != i {
				m.kinds[j].Set(f, "")
			}
		}

		if k.OnAccept != nil {
			k.OnAccept(f, p)
		}

		return k, nil
	}

	return nil, &NoAcceptingVariantError{Name: p.Name}
}

// Validate 校验恰好一个槽位有值，违例返回字段级 ValidationError.
func (m *Manifest) Validate(f *model.File) error {
	populated := make([]string, 0, 1)

	for i := range m.kinds {
		if m.kinds[i].Get(f) != "" {
			populated = append(populated, m.kinds[i].Field)
		}
	}

	switch len(populated) {
	case 1:
		return nil
	case 0:
		verr := model.NewValidationError()
		for i := range m.kinds {
			verr.Add(m.kinds[i].Field, "no file given")
		}

		return verr
	default:
		verr := model.NewValidationError()
		for _, field := range populated {
			verr.Add(field, "only one file slot may be populated")
		}

		return verr
	}
}

// RunBeforeSave 执行所有变体的保存前钩子.
func (m *Manifest) RunBeforeSave(f *model.File) {
	for i := range m.kinds {
		if m.kinds[i].BeforeSave != nil {
			m.kinds[i].BeforeSave(f)
		}
	}
}
