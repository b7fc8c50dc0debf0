// Package scheduler 基于 gocron/v2 封装媒体库的后台任务调度.
// 除了透传 gocron 的调度能力，还维护一份任务运行档案（JobInfo），
// 供调度管理接口查询任务状态与最近一次成功时间.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yeisme/mediacabinet/pkg/log"
)

// refreshInterval 任务档案的后台刷新周期.
const refreshInterval = 10 * time.Second

// JobStatus 任务状态.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled"
	StatusRunning   JobStatus = "running"
	StatusError     JobStatus = "error"
)

// JobInfo 任务运行档案，随执行实时更新.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CronExpr    string    `json:"cron_expr"`
	NextRun     time.Time `json:"next_run"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Scheduler 定时任务调度器.
type Scheduler struct {
	inner  gocron.Scheduler
	logger *zerolog.Logger

	mu     sync.RWMutex
	jobs   map[string]gocron.Job // 任务名 -> gocron 任务
	infos  map[string]*JobInfo   // 任务名 -> 运行档案
	names  map[uuid.UUID]string  // gocron 任务 ID -> 任务名
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler 创建调度器并启动档案刷新协程.
func NewScheduler() (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		inner:  inner,
		logger: log.Logger(),
		jobs:   make(map[string]gocron.Job),
		infos:  make(map[string]*JobInfo),
		names:  make(map[uuid.UUID]string),
		ctx:    ctx,
		cancel: cancel,
	}

	go s.refreshLoop()

	return s, nil
}

// AddCron 以 cron 表达式注册命名任务，同名任务只能注册一次.
// 任务函数收到的 ctx 为注册时传入的 ctx，携带存储管理器等依赖.
func (s *Scheduler) AddCron(name string, cronExpr string, task func(ctx context.Context), ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %s already registered", name)
	}

	run := func(ctx context.Context) {
		s.setStatus(name, StatusRunning, "")

		defer func() {
			if r := recover(); r != nil {
				s.setStatus(name, StatusError, fmt.Sprintf("panic: %v", r))
				s.logger.Error().Str("job", name).Interface("panic", r).Msg("job panicked")
			}
		}()

		task(ctx)
		s.markSuccess(name)
	}

	job, err := s.inner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(run, ctx),
		gocron.WithName(name),
		gocron.WithEventListeners(
			gocron.AfterJobRuns(func(_ uuid.UUID, jobName string) {
				s.mu.Lock()
				defer s.mu.Unlock()

				if info := s.infos[jobName]; info != nil {
					info.LastRun = time.Now()
					info.UpdatedAt = time.Now()
				}
			}),
		),
	)
	if err != nil {
		return err
	}

	now := time.Now()
	nextRun, _ := job.NextRun()

	s.jobs[name] = job
	s.names[job.ID()] = name
	s.infos[name] = &JobInfo{
		ID:        job.ID().String(),
		Name:      name,
		CronExpr:  cronExpr,
		NextRun:   nextRun,
		Status:    StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("cron job registered")

	return nil
}

// RemoveJob 按 gocron 任务 ID 移除任务.
func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name, ok := s.names[id]; ok {
		delete(s.jobs, name)
		delete(s.infos, name)
		delete(s.names, id)
	}

	return s.inner.RemoveJob(id)
}

// RemoveJobByName 按任务名移除任务.
func (s *Scheduler) RemoveJobByName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job %s not registered", name)
	}

	if err := s.inner.RemoveJob(job.ID()); err != nil {
		return err
	}

	delete(s.jobs, name)
	delete(s.infos, name)
	delete(s.names, job.ID())

	s.logger.Info().Str("job", name).Msg("cron job removed")

	return nil
}

// Start 启动调度.
func (s *Scheduler) Start() {
	s.logger.Info().Msg("scheduler started")
	s.inner.Start()
}

// Shutdown 停止调度并结束档案刷新.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.inner.Shutdown()
}

// StopJobs 停止所有任务的执行但保留注册.
func (s *Scheduler) StopJobs() error {
	return s.inner.StopJobs()
}

// JobsWaitingInQueue 返回排队等待执行的任务数.
func (s *Scheduler) JobsWaitingInQueue() int {
	return s.inner.JobsWaitingInQueue()
}

// GetJobInfos 返回全部任务档案的快照.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.infos))
	for _, info := range s.infos {
		infos = append(infos, *info)
	}

	return infos
}

// GetJobInfoByName 返回指定任务的档案.
func (s *Scheduler) GetJobInfoByName(name string) (*JobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.infos[name]
	if !ok {
		return nil, fmt.Errorf("job %s not registered", name)
	}

	return info, nil
}

// refreshLoop 周期性从 gocron 同步下次/上次运行时间.
func (s *Scheduler) refreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.refreshInfos()
		}
	}
}

func (s *Scheduler) refreshInfos() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, job := range s.jobs {
		info := s.infos[name]
		if info == nil {
			continue
		}

		if next, err := job.NextRun(); err == nil {
			info.NextRun = next
		}

		if last, err := job.LastRun(); err == nil {
			info.LastRun = last
		}

		info.Status = StatusScheduled
		info.UpdatedAt = time.Now()
	}
}

func (s *Scheduler) setStatus(name string, status JobStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info := s.infos[name]; info != nil {
		info.Status = status
		info.Error = errMsg
		info.UpdatedAt = time.Now()
	}
}

func (s *Scheduler) markSuccess(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info := s.infos[name]; info != nil {
		info.Status = StatusScheduled
		info.Error = ""
		info.LastSuccess = time.Now()
		info.UpdatedAt = time.Now()
	}
}
