package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/oklog/ulid/v2"

	"github.com/yeisme/mediacabinet/pkg/cache"
	ctxPkg "github.com/yeisme/mediacabinet/pkg/context"
	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/types"
	nlog "github.com/yeisme/mediacabinet/pkg/log"
)

const (
	listCacheVersionKey = "cabinet:list:ver"
	lastFolderKeyPrefix = "cabinet:last_folder:"

	// FolderSelectorLast 列表参数 folder=last：回到上次浏览的文件夹.
	FolderSelectorLast = "last"
)

// lastFolderKey 按操作者身份分键，互相不串；匿名访问归并到一个键下.
func lastFolderKey(ctx context.Context) string {
	user := ctxPkg.GetUser(ctx)
	if user == "" {
		user = "anonymous"
	}

	return lastFolderKeyPrefix + user
}

// listCacheVersion 读取缓存命名空间版本，无则生成.版本在每次写操作后
// 轮换，老条目自然过期，省去逐键失效.
func (s *CabinetService) listCacheVersion(ctx context.Context) string {
	if s.listCache == nil {
		return ""
	}

	if ver, err := cache.Get[string](ctx, s.listCache, listCacheVersionKey); err == nil && ver != "" {
		return ver
	}

	ver := ulid.Make().String()
	if err := cache.Set(ctx, s.listCache, listCacheVersionKey, ver, 0); err != nil {
		nlog.Logger().Warn().Err(err).Msg("list cache version init failed")
	}

	return ver
}

// invalidateListCache 轮换缓存版本.
func (s *CabinetService) invalidateListCache(ctx context.Context) {
	if s.listCache == nil {
		return
	}

	if err := cache.Set(ctx, s.listCache, listCacheVersionKey, ulid.Make().String(), 0); err != nil {
		nlog.Logger().Warn().Err(err).Msg("list cache invalidation failed")
	}
}

// listCacheKey 由版本与查询参数哈希出缓存键.
func listCacheKey(ver string, q *types.ListFilesQuery) string {
	h := xxhash.New()
	_, _ = h.WriteString(ver)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(q.Folder)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(q.Q)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(q.FileType)

	return fmt.Sprintf("cabinet:list:%x", h.Sum64())
}

// rememberLastFolder 按操作者记录最近浏览/上传的文件夹，folder=last 时解析.
func (s *CabinetService) rememberLastFolder(ctx context.Context, id uint) {
	if s.listCache == nil {
		return
	}

	if err := cache.Set(ctx, s.listCache, lastFolderKey(ctx), id, 0); err != nil {
		nlog.Logger().Warn().Err(err).Msg("remember last folder failed")
	}
}

// lastFolder 读取当前操作者最近浏览的文件夹 ID.
func (s *CabinetService) lastFolder(ctx context.Context) (uint, bool) {
	if s.listCache == nil {
		return 0, false
	}

	id, err := cache.Get[uint](ctx, s.listCache, lastFolderKey(ctx))
	if err != nil || id == 0 {
		return 0, false
	}

	return id, true
}

// fileItem 构造文件展示视图.
func fileItem(f *model.File, path string) types.FileItem {
	return types.FileItem{
		ID:            f.ID,
		FolderID:      f.FolderID,
		FileName:      f.FileName,
		FileSize:      f.FileSize,
		HumanFileSize: f.HumanFileSize(),
		Caption:       f.Caption,
		Copyright:     f.Copyright,
		ImageFile:     f.ImageFile,
		ImageWidth:    f.ImageWidth,
		ImageHeight:   f.ImageHeight,
		ImagePPOI:     f.ImagePPOI,
		ImageAltText:  f.ImageAltText,
		DownloadFile:  f.DownloadFile,
		DownloadType:  f.DownloadType,
		Path:          path,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// applyFileTypeFilter 补充列表过滤：image 过滤图片槽位，其余值匹配
// download_type 派生字段.
func applyFileTypeFilter(q *types.ListFilesQuery, files []model.File) []model.File {
	if q.FileType == "" {
		return files
	}

	filtered := files[:0]

	for _, f := range files {
		switch {
		case q.FileType == "image" && f.ImageFile != "":
			filtered = append(filtered, f)
		case f.DownloadType == q.FileType:
			filtered = append(filtered, f)
		}
	}

	return filtered
}

// ListFiles 列表/搜索入口.
//
// 搜索词非空时搜索是全局的：文件夹参数被忽略，每条命中带上完整祖先路径.
// 否则按文件夹视图返回；folder 缺省或失效回落到根视图（只列根文件夹，
// 不列文件），失效时以 Stale 标记提示调用方.结果短暂缓存于 KV.
func (s *CabinetService) ListFiles(ctx context.Context, q *types.ListFilesQuery) (*types.ListFilesResponse, error) {
	ver := s.listCacheVersion(ctx)
	cacheKey := ""

	// folder=last 按操作者各自解析，不能落进共享缓存
	if ver != "" && s.lib.ListCacheTTL > 0 && q.Folder != FolderSelectorLast {
		cacheKey = listCacheKey(ver, q)
		if resp, err := cache.Get[types.ListFilesResponse](ctx, s.listCache, cacheKey); err == nil {
			// 命中也要刷新 last folder，浏览轨迹不因缓存断档
			if resp.Folder != nil {
				s.rememberLastFolder(ctx, resp.Folder.ID)
			}

			return &resp, nil
		}
	}

	var (
		resp *types.ListFilesResponse
		err  error
	)

	if q.Q != "" {
		resp, err = s.searchFiles(ctx, q)
	} else {
		resp, err = s.listFolderView(ctx, q)
	}

	if err != nil {
		return nil, err
	}

	if cacheKey != "" {
		ttl := time.Duration(s.lib.ListCacheTTL) * time.Second
		if cerr := cache.Set(ctx, s.listCache, cacheKey, *resp, ttl); cerr != nil {
			nlog.Logger().Warn().Err(cerr).Msg("list cache store failed")
		}
	}

	return resp, nil
}

// searchFiles 全局搜索 file_name，命中行补祖先路径.
func (s *CabinetService) searchFiles(ctx context.Context, q *types.ListFilesQuery) (*types.ListFilesResponse, error) {
	var files []model.File
	if err := s.db.WithContext(ctx).
		Where("file_name LIKE ?", "%"+q.Q+"%").
		Order("file_name").
		Find(&files).Error; err != nil {
		return nil, err
	}

	files = applyFileTypeFilter(q, files)

	// 同文件夹的路径只算一次
	paths := make(map[uint]string)

	items := make([]types.FileItem, 0, len(files))

	for i := range files {
		f := &files[i]

		path, ok := paths[f.FolderID]
		if !ok {
			folder, err := s.GetFolder(ctx, f.FolderID)
			if err != nil {
				return nil, err
			}

			path, err = s.FolderPath(ctx, folder)
			if err != nil {
				return nil, err
			}

			paths[f.FolderID] = path
		}

		items = append(items, fileItem(f, path))
	}

	return &types.ListFilesResponse{
		Folders: []types.FolderResponse{},
		Files:   items,
		Query:   q.Q,
	}, nil
}

// resolveFolderSelector 把 folder 参数解析为具体文件夹；返回 nil 表示根视图.
func (s *CabinetService) resolveFolderSelector(ctx context.Context, selector string) (folder *model.Folder, stale bool) {
	if selector == "" {
		return nil, false
	}

	if selector == FolderSelectorLast {
		id, ok := s.lastFolder(ctx)
		if !ok {
			return nil, false
		}

		f, err := s.GetFolder(ctx, id)
		if err != nil {
			return nil, false
		}

		return f, false
	}

	id, err := strconv.ParseUint(selector, 10, 32)
	if err != nil {
		return nil, true
	}

	f, err := s.GetFolder(ctx, uint(id))
	if err != nil {
		return nil, true
	}

	return f, false
}

// listFolderView 文件夹视图：根视图只列根文件夹，具体文件夹列其子文件夹
// 与直属文件.
func (s *CabinetService) listFolderView(ctx context.Context, q *types.ListFilesQuery) (*types.ListFilesResponse, error) {
	folder, stale := s.resolveFolderSelector(ctx, q.Folder)

	scope := s.db.WithContext(ctx).Model(&model.Folder{}).Order("name")
	if folder == nil {
		scope = scope.Where("parent_id IS NULL")
	} else {
		scope = scope.Where("parent_id = ?", folder.ID)
	}

	var subfolders []model.Folder
	if err := scope.Find(&subfolders).Error; err != nil {
		return nil, err
	}

	annotated, err := s.AnnotateCounts(ctx, subfolders)
	if err != nil {
		return nil, err
	}

	resp := &types.ListFilesResponse{
		Folders: annotated,
		Files:   []types.FileItem{},
		Stale:   stale,
	}

	if folder == nil {
		return resp, nil
	}

	path, err := s.FolderPath(ctx, folder)
	if err != nil {
		return nil, err
	}

	resp.Folder = &types.FolderResponse{
		ID:        folder.ID,
		Name:      folder.Name,
		ParentID:  folder.ParentID,
		Path:      path,
		CreatedAt: folder.CreatedAt,
		UpdatedAt: folder.UpdatedAt,
	}

	var files []model.File
	if err := s.db.WithContext(ctx).
		Where("folder_id = ?", folder.ID).
		Order("file_name").
		Find(&files).Error; err != nil {
		return nil, err
	}

	files = applyFileTypeFilter(q, files)

	for i := range files {
		resp.Files = append(resp.Files, fileItem(&files[i], ""))
	}

	s.rememberLastFolder(ctx, folder.ID)

	return resp, nil
}
