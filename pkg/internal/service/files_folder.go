package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/types"
)

// ErrFolderNotFound 文件夹不存在.
var ErrFolderNotFound = errors.New("folder not found")

// FolderNotEmptyError 删除被仍引用该子树的文件阻止.
type FolderNotEmptyError struct {
	ID    uint
	Files int64
}

func (e *FolderNotEmptyError) Error() string {
	return fmt.Sprintf("folder %d still referenced by %d file(s)", e.ID, e.Files)
}

// GetFolder 读取单个文件夹.
func (s *CabinetService) GetFolder(ctx context.Context, id uint) (*model.Folder, error) {
	var folder model.Folder
	if err := s.db.WithContext(ctx).First(&folder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFolderNotFound
		}

		return nil, err
	}

	return &folder, nil
}

// AncestorsIncludingSelf 沿父指针上溯，返回 child→root 顺序的路径.
func (s *CabinetService) AncestorsIncludingSelf(ctx context.Context, folder *model.Folder) ([]model.Folder, error) {
	chain := []model.Folder{*folder}

	node := folder
	for node.ParentID != nil {
		parent, err := s.GetFolder(ctx, *node.ParentID)
		if err != nil {
			return nil, fmt.Errorf("broken parent chain at folder %d: %w", node.ID, err)
		}

		chain = append(chain, *parent)
		node = parent
	}

	return chain, nil
}

// FolderPath 展示路径："祖先 / … / 自身"（root→child 方向拼接）.
func (s *CabinetService) FolderPath(ctx context.Context, folder *model.Folder) (string, error) {
	chain, err := s.AncestorsIncludingSelf(ctx, folder)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		names = append(names, chain[i].Name)
	}

	return strings.Join(names, " / "), nil
}

// validateFolder 创建/更新前的树校验：名称、根级重名、同级重名、成环.
func (s *CabinetService) validateFolder(ctx context.Context, folder *model.Folder) error {
	verr := model.NewValidationError()

	name := strings.TrimSpace(folder.Name)
	if name == "" {
		verr.Add("name", "name must not be empty")
	} else if len(name) > model.MaxFolderNameLen {
		verr.Add("name", fmt.Sprintf("name longer than %d characters", model.MaxFolderNameLen))
	}

	folder.Name = name

	// 重名检查：根级没有数据库唯一约束兜底，必须在这里查询拦截；
	// 同级重名一并拦截，避免把约束冲突泄漏成 500
	dup := s.db.WithContext(ctx).Model(&model.Folder{}).Where("name = ?", name)
	if folder.ParentID == nil {
		dup = dup.Where("parent_id IS NULL")
	} else {
		dup = dup.Where("parent_id = ?", *folder.ParentID)
	}

	if folder.ID != 0 {
		dup = dup.Where("id <> ?", folder.ID)
	}

	var count int64
	if err := dup.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		if folder.ParentID == nil {
			verr.Add("name", "root folder with this name already exists")
		} else {
			verr.Add("name", "sibling folder with this name already exists")
		}
	}

	// 成环检查：自身 ID 不得出现在新的祖先链上
	if folder.ParentID != nil && folder.ID != 0 {
		if *folder.ParentID == folder.ID {
			verr.Add("parent_id", "folder cannot be its own parent")
		} else {
			parent, err := s.GetFolder(ctx, *folder.ParentID)
			if err != nil {
				verr.Add("parent_id", "parent folder does not exist")
			} else {
				chain, err := s.AncestorsIncludingSelf(ctx, parent)
				if err != nil {
					return err
				}

				for _, node := range chain {
					if node.ID == folder.ID {
						verr.Add("parent_id", "folder cannot be moved below itself")

						break
					}
				}
			}
		}
	} else if folder.ParentID != nil {
		if _, err := s.GetFolder(ctx, *folder.ParentID); err != nil {
			verr.Add("parent_id", "parent folder does not exist")
		}
	}

	if verr.HasErrors() {
		return verr
	}

	return nil
}

// CreateFolder 创建文件夹.
func (s *CabinetService) CreateFolder(ctx context.Context, req *types.CreateFolderRequest) (*model.Folder, error) {
	folder := &model.Folder{Name: req.Name, ParentID: req.ParentID}

	if err := s.validateFolder(ctx, folder); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(folder).Error
	}); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	s.invalidateListCache(ctx)
	s.publishFolderCreated(ctx, folder)

	return folder, nil
}

// UpdateFolder 重命名或移动文件夹.
func (s *CabinetService) UpdateFolder(ctx context.Context, id uint, req *types.UpdateFolderRequest) (*model.Folder, error) {
	folder, err := s.GetFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	folder.Name = req.Name
	folder.ParentID = req.ParentID

	if err := s.validateFolder(ctx, folder); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(folder).Error
	}); err != nil {
		return nil, fmt.Errorf("update folder: %w", err)
	}

	s.invalidateListCache(ctx)

	return folder, nil
}

// DescendantIDs 返回含自身的后代 ID 集合.逐层查询而非递归 CTE，树深度
// 在编辑场景下很小.
func (s *CabinetService) DescendantIDs(ctx context.Context, rootID uint) ([]uint, error) {
	ids := []uint{rootID}
	frontier := []uint{rootID}

	for len(frontier) > 0 {
		var children []uint
		if err := s.db.WithContext(ctx).Model(&model.Folder{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}

		ids = append(ids, children...)
		frontier = children
	}

	return ids, nil
}

// DeleteFolder 删除文件夹.子树内仍有文件引用时拒绝（不级联），否则整棵
// 空子树在一个事务内移除，返回被删节点 ID.
func (s *CabinetService) DeleteFolder(ctx context.Context, id uint) ([]uint, error) {
	folder, err := s.GetFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	ids, err := s.DescendantIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	var blocking int64
	if err := s.db.WithContext(ctx).Model(&model.File{}).
		Where("folder_id IN ?", ids).
		Count(&blocking).Error; err != nil {
		return nil, err
	}

	if blocking > 0 {
		return nil, &FolderNotEmptyError{ID: id, Files: blocking}
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&model.Folder{}, ids).Error
	}); err != nil {
		return nil, fmt.Errorf("delete folder subtree: %w", err)
	}

	s.invalidateListCache(ctx)
	s.publishFolderDeleted(folder, ids)

	return ids, nil
}

// FolderChoices 全部文件夹的 (id, 完整路径标签) 下拉项，按路径深度优先、
// 同级按名称排序.
func (s *CabinetService) FolderChoices(ctx context.Context) ([]types.FolderChoice, error) {
	var folders []model.Folder
	if err := s.db.WithContext(ctx).Order("name").Find(&folders).Error; err != nil {
		return nil, err
	}

	byParent := make(map[uint][]*model.Folder)

	var roots []*model.Folder

	for i := range folders {
		f := &folders[i]
		if f.ParentID == nil {
			roots = append(roots, f)
		} else {
			byParent[*f.ParentID] = append(byParent[*f.ParentID], f)
		}
	}

	choices := make([]types.FolderChoice, 0, len(folders))

	var walk func(node *model.Folder, prefix string)
	walk = func(node *model.Folder, prefix string) {
		label := node.Name
		if prefix != "" {
			label = prefix + " / " + node.Name
		}

		choices = append(choices, types.FolderChoice{ID: node.ID, Label: label})

		for _, child := range byParent[node.ID] {
			walk(child, label)
		}
	}

	for _, root := range roots {
		walk(root, "")
	}

	return choices, nil
}

// AnnotateCounts 为一组文件夹标注直接子文件夹数与直接文件数.两次分组
// 查询，避免每行一查.
func (s *CabinetService) AnnotateCounts(ctx context.Context, folders []model.Folder) ([]types.FolderResponse, error) {
	out := make([]types.FolderResponse, 0, len(folders))
	if len(folders) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}

	type grouped struct {
		ID    uint
		Count int64
	}

	folderCounts := make(map[uint]int64, len(ids))

	var rows []grouped
	if err := s.db.WithContext(ctx).Model(&model.Folder{}).
		Select("parent_id AS id, COUNT(*) AS count").
		Where("parent_id IN ?", ids).
		Group("parent_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		folderCounts[r.ID] = r.Count
	}

	fileCounts := make(map[uint]int64, len(ids))

	rows = rows[:0]
	if err := s.db.WithContext(ctx).Model(&model.File{}).
		Select("folder_id AS id, COUNT(*) AS count").
		Where("folder_id IN ?", ids).
		Group("folder_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		fileCounts[r.ID] = r.Count
	}

	for _, f := range folders {
		out = append(out, types.FolderResponse{
			ID:          f.ID,
			Name:        f.Name,
			ParentID:    f.ParentID,
			FolderCount: folderCounts[f.ID],
			FileCount:   fileCounts[f.ID],
			CreatedAt:   f.CreatedAt,
			UpdatedAt:   f.UpdatedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}
