package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const sessionSkillKey = "skill"

// SkillLevel 技能柱状图：悬停到叶子时切换，悬停到分类时保留本会话上一次的选择
func (h *Handler) SkillLevel(c echo.Context) error {
	st := h.sessions.Load(c.Request())
	sel, _ := h.skills.Select(c.QueryParam("path"), st.Get(sessionSkillKey))
	st.Set(sessionSkillKey, sel.Name)
	if err := st.Save(c.Request(), c.Response()); err != nil {
		h.log.Warn("保存会话失败", "error", err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: sel})
}
