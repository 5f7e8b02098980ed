// Package api 생성한 브리핑을 브라우저에서 확인하기 위한 미리보기 HTTP 서버를 제공합니다.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"github.com/darkkaiser/morning-brief/internal/pkg/version"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
	"github.com/labstack/echo/v4"
)

const (
	component = "api.service"

	// shutdownTimeout Graceful Shutdown 시 최대 대기 시간
	shutdownTimeout = 5 * time.Second
)

// Config 미리보기 서버 설정입니다.
type Config struct {
	// Address 수신 주소 (예: "127.0.0.1:8080")
	Address string

	Debug          bool
	RequestTimeout time.Duration
}

// Service 미리보기 서버의 생명주기를 관리합니다.
//
// Start로 시작하면 별도 고루틴에서 서버가 실행되며, 전달한 Context가 취소되면 Graceful Shutdown을 수행합니다.
type Service struct {
	config    Config
	generator Generator
	buildInfo version.Info

	running   bool
	runningMu sync.Mutex

	// listenAddr 서버가 실제로 바인딩한 주소. 포트 0으로 시작한 경우 할당된 포트를 확인하는 데 사용한다.
	listenAddr chan net.Addr

	err   error
	errMu sync.Mutex
}

// NewService 새로운 Service를 생성합니다.
func NewService(config Config, generator Generator, buildInfo version.Info) *Service {
	if generator == nil {
		panic("api: Generator는 필수입니다")
	}

	return &Service{
		config:     config,
		generator:  generator,
		buildInfo:  buildInfo,
		listenAddr: make(chan net.Addr, 1),
	}
}

// Start 서버를 시작합니다. 함수는 즉시 반환되며, 서버가 완전히 종료되면 serviceStopWG.Done()을 호출합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("미리보기 서버가 이미 실행 중입니다")
		return nil
	}

	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		defer serviceStopWG.Done()
		return apperrors.Wrapf(err, apperrors.System, "미리보기 서버 주소(%s)에 바인딩할 수 없습니다", s.config.Address)
	}

	s.running = true
	select {
	case <-s.listenAddr:
	default:
	}
	s.listenAddr <- ln.Addr()

	e := s.setupServer()
	e.Listener = ln

	go s.runServiceLoop(serviceStopCtx, serviceStopWG, e)

	applog.WithComponentAndFields(component, applog.Fields{
		"address": ln.Addr().String(),
	}).Info("미리보기 서버 시작")

	return nil
}

// Addr 서버가 바인딩한 주소를 반환합니다. Start가 성공하기 전에는 Context가 취소될 때까지 대기합니다.
func (s *Service) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case addr := <-s.listenAddr:
		s.listenAddr <- addr
		return addr, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Err 서버가 예기치 않게 종료된 경우 그 원인을 반환합니다.
func (s *Service) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	return s.err
}

func (s *Service) setupServer() *echo.Echo {
	e := NewHTTPServer(HTTPServerConfig{
		Debug:          s.config.Debug,
		RequestTimeout: s.config.RequestTimeout,
	})

	SetupRoutes(e, NewHandler(s.generator, s.buildInfo))

	return e
}

func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup, e *echo.Echo) {
	defer serviceStopWG.Done()

	httpServerDone := make(chan struct{})
	go func() {
		defer close(httpServerDone)
		s.handleServerError(e.Start(""))
	}()

	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(component).Info("미리보기 서버 종료 중")
	case <-httpServerDone:
		// 서버가 이미 종료되었으므로 Shutdown 없이 상태만 정리한다.
		applog.WithComponent(component).Error("미리보기 서버가 예기치 않게 종료되었습니다")
		s.cleanup()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("미리보기 서버 종료 중 오류가 발생했습니다")
	}

	<-httpServerDone

	s.cleanup()
}

func (s *Service) handleServerError(err error) {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"address": s.config.Address,
		"error":   err,
	}).Error("미리보기 서버 실행 중 치명적인 오류가 발생했습니다")

	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("미리보기 서버 종료 완료")
}
