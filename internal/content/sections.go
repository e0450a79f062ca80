package content

import (
	"fmt"
	"slices"

	"github.com/jonboulle/clockwork"

	"resume/internal/analytics"
)

// Background 背景：简介与经历时间线
func Background(r *Renderer, d *Data, clock clockwork.Clock) Provider {
	return ProviderFunc(func(req *Request) (Page, error) {
		body, err := r.Execute("background", map[string]any{
			"Profile":  d.Profile,
			"Timeline": BuildTimeline(d.History, clock.Now()),
		})
		return Page{Title: "Background", Body: body}, err
	})
}

// ResearchPage 研究与项目
func ResearchPage(r *Renderer, d *Data) Provider {
	return ProviderFunc(func(req *Request) (Page, error) {
		body, err := r.Execute("research", d.Sections.Research)
		return Page{Title: "Research and Projects", Body: body}, err
	})
}

// Publications 论文列表
func Publications(r *Renderer, d *Data) Provider {
	return ProviderFunc(func(req *Request) (Page, error) {
		body, err := r.Execute("publications", d.Sections.Publications)
		return Page{Title: "Publications", Body: body}, err
	})
}

// Teaching 教学经历
func Teaching(r *Renderer, d *Data) Provider {
	return ProviderFunc(func(req *Request) (Page, error) {
		body, err := r.Execute("teaching", d.Sections.Teaching)
		return Page{Title: "Teaching", Body: body}, err
	})
}

// Skills 技能旭日图，柱状图由 /_api/skills/level 按会话填充
func Skills(r *Renderer, d *Data) Provider {
	return ProviderFunc(func(req *Request) (Page, error) {
		labels, parents := d.Skills.Flatten()
		body, err := r.Execute("skills", map[string]any{
			"Labels":  labels,
			"Parents": parents,
		})
		return Page{Title: "Skills and Interests", Body: body}, err
	})
}

// ContactPage 联系方式与办公室位置
func ContactPage(r *Renderer, d *Data) Provider {
	return ProviderFunc(func(req *Request) (Page, error) {
		body, err := r.Execute("contact", d.Profile.Contact)
		return Page{Title: "Contact Me", Body: body}, err
	})
}

// ArticlePage 项目子页面
func ArticlePage(r *Renderer, d *Data, name string) Provider {
	return ProviderFunc(func(req *Request) (Page, error) {
		a, ok := d.Sections.Projects[name]
		if !ok {
			return Page{}, fmt.Errorf("项目 %s 没有内容", name)
		}
		body, err := r.Execute("article", a)
		return Page{Title: a.Title, Body: body}, err
	})
}

// Visitors 访客统计子页面：表格、地图与每日访问曲线
// 排序参数 ?sort=<列名>&order=desc
func Visitors(r *Renderer, reporter *analytics.Reporter) Provider {
	return ProviderFunc(func(req *Request) (Page, error) {
		report := reporter.Report(req.Context)

		// 无效的排序列回退到按时间排序
		column := req.Query.Get("sort")
		if !slices.Contains(analytics.Columns, column) {
			column = analytics.Columns[0]
		}
		desc := req.Query.Get("order") == "desc"
		if err := analytics.SortRows(report.Rows, column, desc); err != nil {
			return Page{}, err
		}

		body, err := r.Execute("visitors", map[string]any{
			"Report":  report,
			"Columns": analytics.Columns,
			"Sort":    column,
			"Desc":    desc,
		})
		return Page{Title: "Visitors", Body: body}, err
	})
}

// RegisterDefaults 注册主页标签与子页面
func RegisterDefaults(reg *Registry, r *Renderer, d *Data, clock clockwork.Clock, reporter *analytics.Reporter) {
	reg.Register("background", Background(r, d, clock))
	reg.Register("research", ResearchPage(r, d))
	reg.Register("publications", Publications(r, d))
	reg.Register("teaching", Teaching(r, d))
	reg.Register("skills", Skills(r, d))
	reg.Register("contact", ContactPage(r, d))

	reg.Register("visitors", Visitors(r, reporter))
	for name := range d.Sections.Projects {
		reg.Register(name, ArticlePage(r, d, name))
	}
}
