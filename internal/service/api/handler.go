package api

import (
	"context"
	"net/http"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"github.com/darkkaiser/morning-brief/internal/pkg/version"
	"github.com/darkkaiser/morning-brief/internal/service/brief"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
	"github.com/labstack/echo/v4"
)

const componentHandler = "api.handler"

// Generator 미리보기 서버가 사용하는 브리핑 생성기입니다. brief.Service가 구현합니다.
type Generator interface {
	Generate(ctx context.Context) *brief.Brief
	Section(ctx context.Context, name string) (any, bool)
	SectionNames() []string
}

// HealthResponse 헬스체크 응답입니다.
type HealthResponse struct {
	Status  string       `json:"status"`
	Version version.Info `json:"version"`
}

// SectionResponse 단일 섹션 조회 응답입니다.
type SectionResponse struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Handler 미리보기 서버의 HTTP 핸들러입니다.
type Handler struct {
	generator Generator
	buildInfo version.Info
}

// NewHandler 새로운 Handler를 생성합니다.
func NewHandler(generator Generator, buildInfo version.Info) *Handler {
	if generator == nil {
		panic("api: Generator는 필수입니다")
	}

	return &Handler{generator: generator, buildInfo: buildInfo}
}

// HealthHandler GET /healthz
func (h *Handler) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.buildInfo})
}

// BriefHTMLHandler GET / 브리핑을 생성하여 메일 본문과 동일한 HTML로 응답합니다.
func (h *Handler) BriefHTMLHandler(c echo.Context) error {
	b := h.generator.Generate(c.Request().Context())

	body, err := brief.RenderHTML(b)
	if err != nil {
		return h.internalError(c, err)
	}

	return c.HTML(http.StatusOK, body)
}

// BriefTextHandler GET /brief.txt 메일의 텍스트 대체 본문으로 응답합니다.
func (h *Handler) BriefTextHandler(c echo.Context) error {
	b := h.generator.Generate(c.Request().Context())

	body, err := brief.RenderHTML(b)
	if err != nil {
		return h.internalError(c, err)
	}
	text, err := brief.PlainText(body)
	if err != nil {
		return h.internalError(c, err)
	}

	return c.String(http.StatusOK, text)
}

// BriefJSONHandler GET /brief.json 스냅샷과 동일한 형식의 JSON으로 응답합니다.
func (h *Handler) BriefJSONHandler(c echo.Context) error {
	b := h.generator.Generate(c.Request().Context())

	return c.JSON(http.StatusOK, brief.NewSnapshot(b))
}

// SectionsHandler GET /sections 조회 가능한 섹션 이름 목록을 반환합니다.
func (h *Handler) SectionsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, h.generator.SectionNames())
}

// SectionHandler GET /sections/:name 섹션 하나만 조회합니다. 실패하면 해당 섹션의 기본값을 반환합니다.
func (h *Handler) SectionHandler(c echo.Context) error {
	name := c.Param("name")

	value, ok := h.generator.Section(c.Request().Context(), name)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "알 수 없는 섹션입니다: "+name)
	}

	return c.JSON(http.StatusOK, SectionResponse{Name: name, Value: value})
}

func (h *Handler) internalError(c echo.Context, err error) error {
	applog.WithComponentAndFields(componentHandler, applog.Fields{
		"path":  c.Request().URL.Path,
		"error": err,
	}).Error("브리핑 렌더링 실패")

	return echo.NewHTTPError(http.StatusInternalServerError, "브리핑을 렌더링하지 못했습니다").
		SetInternal(apperrors.Wrap(err, apperrors.Internal, "render"))
}
