package api

import (
	"github.com/labstack/echo/v4"
)

// SetupRoutes 미리보기 서버의 라우트를 등록합니다.
func SetupRoutes(e *echo.Echo, h *Handler) {
	e.GET("/", h.BriefHTMLHandler)
	e.GET("/brief.txt", h.BriefTextHandler)
	e.GET("/brief.json", h.BriefJSONHandler)
	e.GET("/sections", h.SectionsHandler)
	e.GET("/sections/:name", h.SectionHandler)
	e.GET("/healthz", h.HealthHandler)
}
