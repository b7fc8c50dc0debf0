package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/storage/s3"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
	nlog "github.com/yeisme/mediacabinet/pkg/log"
)

// ErrFileNotFound 文件行不存在.
var ErrFileNotFound = errors.New("file not found")

// unsafeKeyChars 对象键中不保留的字符.
var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]+`)

// sanitizeName 清洗上传文件名为对象键片段.
func sanitizeName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))

	base = unsafeKeyChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")

	if base == "" {
		base = "file"
	}

	return base
}

// uniqueKey 生成带日期前缀的对象键；与既有对象冲突时追加 ulid 后缀，
// 保证键不重复.
func (s *CabinetService) uniqueKey(ctx context.Context, name string) string {
	base := sanitizeName(name)
	datePath := time.Now().UTC().Format("2006/01")
	key := fmt.Sprintf("%s/%s/%s", s.lib.GetKeyPrefix(), datePath, base)

	// 只有确认键下无对象才能复用基础键.键被占用，或 Stat 因瞬时故障
	// 无法确认空闲时，都退到带随机后缀的新键，绝不冒险覆盖别人的字节
	if _, err := s.store.Stat(ctx, key); errors.Is(err, s3.ErrObjectNotFound) {
		return key
	}

	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	suffix := strings.ToLower(ulid.Make().String())

	return fmt.Sprintf("%s/%s/%s_%s%s", s.lib.GetKeyPrefix(), datePath, stem, suffix, ext)
}

// SaveFile 持久化一次内容变更，遵守覆盖安全协议：
//
//   - 默认路径：新内容先在全新唯一键下落盘，行保存成功后才清理旧对象，
//     中途失败不会让行指向不存在的内容；
//   - 覆盖路径：仅当 Overwrite 为真、原行存在且 pending 仍未提交时生效.
//     捕获旧槽位键，删除原行全部对象，把新字节强制写到捕获的键下
//     （绕过唯一化），随后保存行；
//   - 无论走哪条路径，返回前 Overwrite 一律归零，且该标志不落库.
//
// pending 为 nil 表示纯元数据保存.存储写入失败先于一切删除动作向上传播.
func (s *CabinetService) SaveFile(ctx context.Context, file *model.File, pending *variant.Pending) (err error) {
	// 单次有效，任何路径返回前都归零
	defer func() {
		file.Overwrite = false
	}()

	var original *model.File

	if file.ID != 0 {
		var prior model.File
		if e := s.db.WithContext(ctx).First(&prior, file.ID).Error; e == nil {
			original = &prior
		} else if !errors.Is(e, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load original row: %w", e)
		}
	}

	// 未分发的内容先走变体分发
	if pending != nil && pending.Kind == "" {
		if _, e := s.manifest.Dispatch(file, pending); e != nil {
			return e
		}
	}

	var kind *variant.Kind

	if pending != nil {
		k, ok := s.manifest.KindByName(pending.Kind)
		if !ok {
			return &variant.ConfigError{Reason: fmt.Sprintf("pending content references unknown kind %q", pending.Kind)}
		}

		kind = k
	}

	// 覆盖转换守卫：显式观察 pending 的未提交状态，而不是依赖调用顺序
	overwrite := file.Overwrite && original != nil && pending != nil && !pending.Committed &&
		original.ActiveKey() != ""

	freshKey := ""

	switch {
	case overwrite:
		target := original.ActiveKey()

		// 先清掉原行的全部对象，再把新字节写到捕获的键下
		for _, old := range original.StoredKeys() {
			if e := s.store.Remove(ctx, old); e != nil {
				return e
			}
		}

		if e := s.store.Put(ctx, target, pending.Reader(), pending.Size(), pending.ContentType); e != nil {
			return e
		}

		pending.Committed = true
		pending.Key = target
		kind.Set(file, target)

	case pending != nil && !pending.Committed:
		key := s.uniqueKey(ctx, pending.Name)

		if e := s.store.Put(ctx, key, pending.Reader(), pending.Size(), pending.ContentType); e != nil {
			return e
		}

		pending.Committed = true
		pending.Key = key
		freshKey = key
		kind.Set(file, key)
	}

	// 派生字段：每次保存由填充槽位重算
	s.manifest.RunBeforeSave(file)

	file.FileName = path.Base(file.ActiveKey())
	if pending != nil {
		file.FileSize = pending.Size()
	} else if key := file.ActiveKey(); key != "" {
		if size, e := s.store.Stat(ctx, key); e == nil {
			file.FileSize = size
		}
	}

	if e := s.manifest.Validate(file); e != nil {
		// 本次保存刚写入的新对象不能遗留
		if freshKey != "" {
			if re := s.store.Remove(ctx, freshKey); re != nil {
				nlog.Logger().Warn().Err(re).Str("key", freshKey).Msg("cleanup of rejected upload failed")
			}
		}

		return e
	}

	if e := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(file).Error
	}); e != nil {
		if freshKey != "" {
			if re := s.store.Remove(ctx, freshKey); re != nil {
				nlog.Logger().Warn().Err(re).Str("key", freshKey).Msg("cleanup of uncommitted upload failed")
			}
		}

		return fmt.Errorf("save file row: %w", e)
	}

	// 非覆盖路径：行保存成功后才清理被替换的旧对象
	if !overwrite && original != nil {
		current := make(map[string]struct{}, 2)
		for _, k := range file.StoredKeys() {
			current[k] = struct{}{}
		}

		for _, old := range original.StoredKeys() {
			if _, kept := current[old]; kept {
				continue
			}

			if e := s.store.Remove(ctx, old); e != nil {
				nlog.Logger().Warn().Err(e).Str("key", old).Msg("stale object cleanup failed")
			}
		}
	}

	s.invalidateListCache(ctx)
	s.publishFileSaved(file, pending, original, overwrite)

	return nil
}

// GetFile 读取单条文件行.
func (s *CabinetService) GetFile(ctx context.Context, id uint) (*model.File, error) {
	var file model.File
	if err := s.db.WithContext(ctx).First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}

		return nil, err
	}

	return &file, nil
}

// DeleteFile 删除文件行并清除其全部槽位对象.行删除在前（事务内），对象
// 删除失败只记录告警，孤儿由清扫任务兜底.
func (s *CabinetService) DeleteFile(ctx context.Context, id uint) error {
	file, err := s.GetFile(ctx, id)
	if err != nil {
		return err
	}

	removed := file.StoredKeys()

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&model.File{}, id).Error
	}); err != nil {
		return fmt.Errorf("delete file row: %w", err)
	}

	for _, key := range removed {
		if e := s.store.Remove(ctx, key); e != nil {
			nlog.Logger().Warn().Err(e).Str("key", key).Msg("slot object cleanup failed")
		}
	}

	s.invalidateListCache(ctx)
	s.publishFileDeleted(file, removed)

	return nil
}

// PresignFile 返回文件当前槽位对象的预签名下载链接.
func (s *CabinetService) PresignFile(ctx context.Context, file *model.File) (string, error) {
	key := file.ActiveKey()
	if key == "" {
		return "", fmt.Errorf("file %d has no stored content", file.ID)
	}

	return s.store.PresignGet(ctx, key, time.Duration(s.lib.PresignExpiry)*time.Second)
}

// PresignKey 为任意已落键的对象生成预签名下载链接.
func (s *CabinetService) PresignKey(ctx context.Context, key string) (string, error) {
	return s.store.PresignGet(ctx, key, time.Duration(s.lib.PresignExpiry)*time.Second)
}
