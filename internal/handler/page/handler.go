package page

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"resume/internal/content"
	"resume/internal/metrics"
	"resume/internal/session"
	"resume/internal/visitor"
)

// Handler 主页与子页面分发
type Handler struct {
	log      *slog.Logger
	home     *content.Home
	registry *content.Registry
	renderer *content.Renderer
	tracker  *visitor.Tracker // 为 nil 时不记录访问
	sessions *session.Store
	labels   *session.LabelCache
}

// NewHandler 创建页面处理器，tracker 可为 nil
func NewHandler(log *slog.Logger, home *content.Home, reg *content.Registry, r *content.Renderer,
	tracker *visitor.Tracker, sessions *session.Store, labels *session.LabelCache) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:      log,
		home:     home,
		registry: reg,
		renderer: r,
		tracker:  tracker,
		sessions: sessions,
		labels:   labels,
	}
}

// RegisterRoutes 注册页面路由，须在保留前缀之后注册
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Home)
	e.GET("/:page", h.Subpage)
}

// Home 主页：带 tab 参数的请求是切换标签，不计为一次访问
func (h *Handler) Home(c echo.Context) error {
	req := c.Request()
	switch {
	case c.QueryParams().Has("tab"):
	case h.tracker != nil:
		h.tracker.Track(req.Context(), visitor.ClientAddr(req))
	default:
		metrics.TrackingSkipped.WithLabelValues("disabled").Inc()
	}

	st := h.sessions.Load(req)
	active, body := h.home.Select(c.QueryParam("tab"))
	return h.render(c, st, http.StatusOK, content.LayoutData{
		Profile:     h.home.Profile,
		Tabs:        h.home.Tabs,
		DynamicTabs: h.labels.Get(st.ID()),
		Active:      active,
		Body:        body,
	})
}

// Subpage 按路径名分发到注册的内容提供者
func (h *Handler) Subpage(c echo.Context) error {
	req := c.Request()
	name := c.Param("page")
	st := h.sessions.Load(req)

	status, page, ok := h.dispatch(content.NewRequest(req.Context(), req.URL.Query(), st), name)
	if ok {
		h.labels.Add(st.ID(), content.Tab{Value: name, Label: page.Title, Href: "/" + name})
	}
	return h.render(c, st, status, content.LayoutData{
		Profile:     h.home.Profile,
		Tabs:        h.home.Tabs,
		DynamicTabs: h.labels.Get(st.ID()),
		Active:      name,
		Title:       page.Title,
		Body:        page.Body,
	})
}

// dispatch 查找并调用提供者；未注册返回 404 占位页，出错或 panic 返回施工中占位页
func (h *Handler) dispatch(req *content.Request, name string) (status int, page content.Page, ok bool) {
	p, found := h.registry.Lookup(name)
	if !found {
		metrics.PageRenders.WithLabelValues("not_found").Inc()
		h.log.Info("页面不存在", "page", name)
		return http.StatusNotFound, content.Page{Title: content.NoSuchPage, Body: h.renderer.Placeholder(content.NoSuchPage)}, false
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.PageRenders.WithLabelValues("panic").Inc()
			h.log.Error("页面渲染 panic", "page", name, "panic", fmt.Sprint(r))
			status, page, ok = http.StatusOK, h.underConstruction(), false
		}
	}()

	page, err := p.Render(req)
	if err != nil {
		metrics.PageRenders.WithLabelValues("error").Inc()
		h.log.Error("页面渲染失败", "page", name, "error", err)
		return http.StatusOK, h.underConstruction(), false
	}
	metrics.PageRenders.WithLabelValues("ok").Inc()
	return http.StatusOK, page, true
}

func (h *Handler) underConstruction() content.Page {
	return content.Page{Title: content.UnderConstruction, Body: h.renderer.Placeholder(content.UnderConstruction)}
}

func (h *Handler) render(c echo.Context, st *session.State, status int, data content.LayoutData) error {
	if err := st.Save(c.Request(), c.Response()); err != nil {
		h.log.Warn("保存会话失败", "error", err)
	}
	html, err := h.renderer.Layout(data)
	if err != nil {
		return fmt.Errorf("渲染布局失败: %w", err)
	}
	return c.HTML(status, string(html))
}
