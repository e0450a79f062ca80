package content

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"sort"
	"sync"
)

// Page 渲染结果
type Page struct {
	Title string
	Body  template.HTML
}

// Values 会话中的键值，由调用方提供
type Values interface {
	Get(key string) string
}

// Request 一次页面渲染的输入
type Request struct {
	Context context.Context
	Query   url.Values
	Session Values
}

// NewRequest 创建渲染请求，session 可为 nil
func NewRequest(ctx context.Context, query url.Values, session Values) *Request {
	if query == nil {
		query = url.Values{}
	}
	return &Request{Context: ctx, Query: query, Session: session}
}

// Provider 内容提供者：产生一个可渲染的页面
type Provider interface {
	Render(req *Request) (Page, error)
}

// ProviderFunc 函数形式的 Provider
type ProviderFunc func(req *Request) (Page, error)

func (f ProviderFunc) Render(req *Request) (Page, error) {
	return f(req)
}

// Registry 路由名到内容提供者的映射
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register 注册提供者，同名覆盖
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Lookup 按名称查找
func (r *Registry) Lookup(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names 已注册的名称，按字母排序
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Renderer 基于内嵌模板的渲染器
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer 解析模板目录下所有 *.html
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	tmpl, err := template.New("").ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Execute 渲染指定模板为 HTML 片段
func (r *Renderer) Execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("渲染模板 %s 失败: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
