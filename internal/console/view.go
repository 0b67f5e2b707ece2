package console

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"campus-gatepass/backend/pkg/apiclient"
)

// Action 看板行级操作
type Action struct {
	Label string
	Do    func() error
}

// Row 看板一行：一条出门条、该角色要展示的列、当前状态允许的操作
// Cells 由角色配置里的行渲染函数生成，宿管和门卫列集不同
type Row struct {
	Gatepass apiclient.Gatepass
	Cells    []string
	Actions  []Action
}

// Snapshot 一次刷新得到的完整渲染数据
type Snapshot struct {
	Title string
	Stats []Stat
	Rows  []Row
}

// Stat 有序的计数器展示项
type Stat struct {
	Label string
	Value int64
}

// View 看板渲染接口
// 刷新失败时 Poller 不调用 Render，上一次渲染保持不变
type View interface {
	Render(s *Snapshot)
}

// TextView 纯文本渲染，写入给定 Writer（终端看板用）
type TextView struct {
	mu  sync.Mutex
	out io.Writer

	last *Snapshot
}

// NewTextView 创建 TextView
func NewTextView(out io.Writer) *TextView {
	return &TextView{out: out}
}

// Render 渲染快照
func (v *TextView) Render(s *Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.last = s

	fmt.Fprintf(v.out, "── %s ──\n", s.Title)
	for _, st := range s.Stats {
		fmt.Fprintf(v.out, "%s: %d  ", st.Label, st.Value)
	}
	fmt.Fprintln(v.out)

	if len(s.Rows) == 0 {
		fmt.Fprintln(v.out, "暂无出门条记录")
		return
	}
	for _, row := range s.Rows {
		gp := row.Gatepass
		cells := row.Cells
		if len(cells) == 0 {
			name := ""
			if gp.Student != nil {
				name = gp.Student.Name
			}
			cells = []string{name, gp.Destination, gp.RequestDate}
		}
		labels := make([]string, 0, len(row.Actions))
		for _, a := range row.Actions {
			labels = append(labels, a.Label)
		}
		fmt.Fprintf(v.out, "[%s] %s %v\n", gp.Status, strings.Join(cells, " | "), labels)
	}
}

// Last 返回最近一次渲染的快照（测试用）
func (v *TextView) Last() *Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

// sortStats 按固定顺序输出计数器，保证渲染可复现
func sortStats(stats map[string]int64, order []string) []Stat {
	out := make([]Stat, 0, len(stats))
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if v, ok := stats[k]; ok {
			out = append(out, Stat{Label: k, Value: v})
			seen[k] = true
		}
	}
	rest := make([]string, 0)
	for k := range stats {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, Stat{Label: k, Value: stats[k]})
	}
	return out
}
