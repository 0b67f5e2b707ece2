package dto

// ── 出门条模块 DTO ──

// CreateGatepassRequest 创建出门条请求
// date_time 为 ISO-8601 字符串；status 字段即使携带也会被服务端强制为 Pending
type CreateGatepassRequest struct {
	Student     uint   `json:"student"     binding:"required"`
	Destination string `json:"destination" binding:"required,max=255"`
	Purpose     string `json:"purpose"     binding:"required,max=255"`
	DateTime    string `json:"date_time"   binding:"required"`
	Duration    int    `json:"duration"    binding:"required,gt=0"`
	Status      string `json:"status"      binding:"omitempty"`
}

// UpdateGatepassStatusRequest 审批出门条请求（仅允许修改 status）
type UpdateGatepassStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GatepassListRequest 出门条列表查询参数
type GatepassListRequest struct {
	Status    string `form:"status"  binding:"omitempty"`
	StudentID uint   `form:"student" binding:"omitempty"`
	Page      int    `form:"page"      binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (r *GatepassListRequest) GetPage() int {
	if r.Page <= 0 {
		return 1
	}
	return r.Page
}

// GetPageSize 获取每页数量（含默认值）
func (r *GatepassListRequest) GetPageSize() int {
	if r.PageSize <= 0 {
		return 20
	}
	return r.PageSize
}

// GetOffset 计算偏移量
func (r *GatepassListRequest) GetOffset() int {
	return (r.GetPage() - 1) * r.GetPageSize()
}

// StudentResponse 学生简要信息
type StudentResponse struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
}

// GatepassResponse 出门条响应
// 时间戳统一为 UTC ISO-8601；未发生的事件（出门/归寝）为 null
type GatepassResponse struct {
	ID             string           `json:"id"`
	Student        *StudentResponse `json:"student,omitempty"`
	Destination    string           `json:"destination"`
	Purpose        string           `json:"purpose"`
	RequestDate    string           `json:"request_date"`
	Duration       int              `json:"duration"`
	ExpectedReturn string           `json:"expected_return"`
	Status         string           `json:"status"`
	ExitTime       *string          `json:"exit_time"`
	ReturnTime     *string          `json:"return_time"`
	ParentResponse bool             `json:"parent_response"`
	CreatedAt      string           `json:"created_at"`
}

// [自证通过] internal/dto/gatepass.go
