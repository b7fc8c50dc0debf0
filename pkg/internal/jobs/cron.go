// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/mediacabinet/pkg/configs"
	ctxPkg "github.com/yeisme/mediacabinet/pkg/context"
	"github.com/yeisme/mediacabinet/pkg/internal/model"
	"github.com/yeisme/mediacabinet/pkg/internal/storage"
	"github.com/yeisme/mediacabinet/pkg/log"
	"github.com/yeisme/mediacabinet/pkg/metrics"
	"github.com/yeisme/mediacabinet/pkg/scheduler"
)

const sweepConcurrency = 4

// RegisterCronJobs 配置业务定时任务：
//   - 按 library.orphan_sweep_cron（默认每天 03:00）清理对象存储中
//     不再被任何文件行引用的孤儿对象
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	lib := configs.GetConfig().Library

	// 将 storage manager 注入到 context，便于任务内使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	return sched.AddCron(JobOrphanSweep, lib.OrphanSweepCron, func(ctx context.Context) {
		runOrphanSweep(ctx, mgr, lib)
	}, baseCtx)
}

// runOrphanSweep 对比对象存储与数据库：列出库前缀下的全部对象键，
// 剔除仍被文件行任一槽位引用的，余下的即孤儿，按批并发删除。
// 上传协议先落对象键再保存行，进程在两步之间崩溃会留下孤儿.
func runOrphanSweep(ctx context.Context, mgr *storage.Manager, lib configs.LibraryConfig) {
	l := log.Logger().With().Str("job", JobOrphanSweep).Logger()

	s3c := mgr.GetS3Client()
	dbc := mgr.GetDBClient()

	if s3c == nil || dbc == nil || dbc.GetDB() == nil {
		l.Error().Msg("storage not initialized")
		return
	}

	keys, err := s3c.List(ctx, lib.GetKeyPrefix()+"/")
	if err != nil {
		l.Error().Err(err).Msg("list objects failed")
		return
	}

	referenced, err := referencedKeys(ctx, mgr)
	if err != nil {
		l.Error().Err(err).Msg("collect referenced keys failed")
		return
	}

	var orphans []string

	for _, k := range keys {
		if _, ok := referenced[k]; !ok {
			orphans = append(orphans, k)
		}
	}

	if len(orphans) == 0 {
		l.Debug().Int("objects", len(keys)).Msg("no orphans found")
		return
	}

	// 每轮最多清理一批，漏网的留给下一轮
	if lib.OrphanSweepBatch > 0 && len(orphans) > lib.OrphanSweepBatch {
		orphans = orphans[:lib.OrphanSweepBatch]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)

	for _, key := range orphans {
		g.Go(func() error {
			if e := s3c.Remove(gctx, key); e != nil {
				l.Warn().Err(e).Str("key", key).Msg("remove orphan failed")
				return nil
			}

			metrics.OrphanObjectsRemoved.Inc()

			return nil
		})
	}

	_ = g.Wait()

	l.Info().Int("objects", len(keys)).Int("removed", len(orphans)).Msg("orphan sweep done")
}

// referencedKeys 汇总所有文件行持有的对象键.
func referencedKeys(ctx context.Context, mgr *storage.Manager) (map[string]struct{}, error) {
	dbx := mgr.GetDBClient().GetDB().WithContext(ctx)

	var images, downloads []string
	if err := dbx.Model(&model.File{}).Where("image_file <> ''").Pluck("image_file", &images).Error; err != nil {
		return nil, err
	}

	if err := dbx.Model(&model.File{}).Where("download_file <> ''").Pluck("download_file", &downloads).Error; err != nil {
		return nil, err
	}

	keys := make(map[string]struct{}, len(images)+len(downloads))
	for _, k := range images {
		keys[k] = struct{}{}
	}

	for _, k := range downloads {
		keys[k] = struct{}{}
	}

	return keys, nil
}
