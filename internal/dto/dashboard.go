package dto

// ── 看板聚合 DTO ──
//
// 看板接口一次返回 { stats, gatepasses }，由客户端定时轮询。

// WardenStats 宿管看板计数器
type WardenStats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Active   int64 `json:"active"` // 已批准且尚未归寝
}

// WardenDashboardResponse 宿管看板聚合响应
type WardenDashboardResponse struct {
	Stats      WardenStats        `json:"stats"`
	Gatepasses []GatepassResponse `json:"gatepasses"`
}

// SecurityStats 门卫看板计数器
type SecurityStats struct {
	StudentsOut          int64 `json:"students_out"`
	ExpectedReturns      int64 `json:"expected_returns"`      // 当前在外且预计归寝时间已到/已过
	PendingVerifications int64 `json:"pending_verifications"` // 已批准但尚未登记出门
}

// SecurityDashboardResponse 门卫看板聚合响应
type SecurityDashboardResponse struct {
	Stats      SecurityStats      `json:"stats"`
	Gatepasses []GatepassResponse `json:"gatepasses"`
}

// [自证通过] internal/dto/dashboard.go
