package content

import (
	"context"
	"fmt"
	"html/template"
)

// Tab 主页左侧的一个标签
type Tab struct {
	Value string // 查询参数 tab 的取值
	Icon  string // Font Awesome 字符
	Label string
	Href  string
}

// 主页标签，顺序即显示顺序
var tabSpecs = []struct {
	value, name, icon, label string
}{
	{"1", "background", "\uf015", "Background"},
	{"2", "research", "\uf5d2", "Research and Projects"},
	{"3", "publications", "\uf46d", "Publications"},
	{"4", "teaching", "\uf51c", "Teaching"},
	{"5", "skills", "\uf7d9", "Skills and Interests"},
	{"6", "contact", "\uf2bb", "Contact Me"},
}

// DefaultTab 未指定或无效时显示的标签
const DefaultTab = "1"

// Home 主页：静态标签在启动时渲染一次
type Home struct {
	Profile Profile
	Tabs    []Tab
	bodies  map[string]template.HTML
}

// BuildHome 从注册表中取出各静态标签的提供者并预渲染
func BuildHome(reg *Registry, profile Profile) (*Home, error) {
	h := &Home{
		Profile: profile,
		bodies:  make(map[string]template.HTML, len(tabSpecs)),
	}
	req := NewRequest(context.Background(), nil, nil)
	for _, spec := range tabSpecs {
		p, ok := reg.Lookup(spec.name)
		if !ok {
			return nil, fmt.Errorf("标签 %s 未注册", spec.name)
		}
		page, err := p.Render(req)
		if err != nil {
			return nil, fmt.Errorf("渲染标签 %s 失败: %w", spec.name, err)
		}
		h.bodies[spec.value] = page.Body
		h.Tabs = append(h.Tabs, Tab{
			Value: spec.value,
			Icon:  spec.icon,
			Label: spec.label,
			Href:  "/?tab=" + spec.value,
		})
	}
	return h, nil
}

// Select 返回选中的标签值及其正文，无效值回退到默认标签
func (h *Home) Select(value string) (string, template.HTML) {
	if body, ok := h.bodies[value]; ok {
		return value, body
	}
	return DefaultTab, h.bodies[DefaultTab]
}

// LayoutData 外层布局的模板数据
type LayoutData struct {
	Profile     Profile
	Tabs        []Tab
	DynamicTabs []Tab
	Active      string
	Title       string
	Body        template.HTML
}

// 占位页面文本
const (
	NoSuchPage        = "No such page"
	UnderConstruction = "Page under construction"
)

// Placeholder 渲染占位页面正文
func (r *Renderer) Placeholder(message string) template.HTML {
	body, err := r.Execute("placeholder", message)
	if err != nil {
		return template.HTML("<h2>" + template.HTMLEscapeString(message) + "</h2>")
	}
	return body
}

// Layout 渲染完整页面
func (r *Renderer) Layout(data LayoutData) (template.HTML, error) {
	return r.Execute("layout", data)
}
