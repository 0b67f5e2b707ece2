package console

import (
	"context"
	"sync"

	"campus-gatepass/backend/pkg/apiclient"
)

// fakeAPI GatepassAPI 的内存假实现
// block 非 nil 时 UpdateStatus 会阻塞到通道关闭，用于模拟在途请求
type fakeAPI struct {
	mu sync.Mutex

	listResult [][]apiclient.Gatepass // 依次返回，用尽后重复最后一组
	listErr    error
	listCalls  int

	createResult *apiclient.Gatepass
	createErr    error
	createCalls  int
	lastCreate   *apiclient.CreateGatepassPayload

	updateErr   error
	updateCalls []string // "id:status"
	block       chan struct{}

	exitCalls   []string
	returnCalls []string

	wardenResult   *apiclient.DashboardData
	wardenErr      error
	wardenCalls    int
	securityResult *apiclient.DashboardData
	securityErr    error
}

func (f *fakeAPI) List(_ context.Context) ([]apiclient.Gatepass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.listResult) == 0 {
		return []apiclient.Gatepass{}, nil
	}
	result := f.listResult[0]
	if len(f.listResult) > 1 {
		f.listResult = f.listResult[1:]
	}
	return result, nil
}

func (f *fakeAPI) Create(_ context.Context, payload *apiclient.CreateGatepassPayload) (*apiclient.Gatepass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastCreate = payload
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeAPI) UpdateStatus(_ context.Context, id, status string) (*apiclient.Gatepass, error) {
	f.mu.Lock()
	block := f.block
	f.updateCalls = append(f.updateCalls, id+":"+status)
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &apiclient.Gatepass{ID: id, Status: status}, nil
}

func (f *fakeAPI) LogExit(_ context.Context, id string) (*apiclient.Gatepass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exitCalls = append(f.exitCalls, id)
	return &apiclient.Gatepass{ID: id, Status: "Out"}, nil
}

func (f *fakeAPI) LogReturn(_ context.Context, id string) (*apiclient.Gatepass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.returnCalls = append(f.returnCalls, id)
	return &apiclient.Gatepass{ID: id, Status: "Returned"}, nil
}

func (f *fakeAPI) WardenDashboard(_ context.Context) (*apiclient.DashboardData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wardenCalls++
	if f.wardenErr != nil {
		return nil, f.wardenErr
	}
	return f.wardenResult, nil
}

func (f *fakeAPI) SecurityDashboard(_ context.Context) (*apiclient.DashboardData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.securityErr != nil {
		return nil, f.securityErr
	}
	return f.securityResult, nil
}

// fakeView 记录渲染次数与最近一次快照
type fakeView struct {
	mu      sync.Mutex
	renders int
	last    *Snapshot
}

func (v *fakeView) Render(s *Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renders++
	v.last = s
}

func (v *fakeView) Renders() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renders
}

func (v *fakeView) Last() *Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}
