package middleware

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

// AssetPrefix 静态资源的保留前缀
const AssetPrefix = "/assets/"

// Assets 从内嵌文件系统提供 /assets/* 下的静态资源
func Assets(fsys fs.FS) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqPath := strings.TrimPrefix(c.Request().URL.Path, AssetPrefix)
		name := path.Clean(reqPath)

		// 安全检查：防止路径遍历
		if !isPathSafe(name) {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "禁止访问",
			})
		}

		info, err := fs.Stat(fsys, name)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "文件未找到",
				"path":  c.Request().URL.Path,
			})
		}
		if err != nil {
			return err
		}

		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		ctype := mime.TypeByExtension(path.Ext(name))
		if ctype == "" {
			ctype = http.DetectContentType(b)
		}
		c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		return c.Blob(http.StatusOK, ctype, b)
	}
}

// isPathSafe 检查路径是否落在资源目录内
func isPathSafe(name string) bool {
	return name != "." && fs.ValidPath(name) && !strings.HasPrefix(name, "..")
}
