package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	checkTimeout    = 2 * time.Second
)

// HealthChecker проверяет доступность одного компонента.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// PingFunc позволяет использовать функцию как HealthChecker.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type HealthHandler struct {
	checks map[string]HealthChecker
	logger logger.Logger
	now    func() time.Time
}

func NewHealthHandler(checks map[string]HealthChecker, logger logger.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger, now: time.Now}
}

// health
//
//	@Summary		Состояние сервиса
//	@Description	Проверяет базу данных, хранилище векторов и ML-сервис
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/health [get]
func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	var (
		mu         sync.Mutex
		components = make(map[string]ComponentStatus, len(h.checks))
		healthy    = true
	)

	g, ctx := errgroup.WithContext(r.Context())
	for name, check := range h.checks {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			status := ComponentStatus{Status: statusHealthy}
			if err := check.Ping(checkCtx); err != nil {
				h.logger.Errorf(err, "health check failed: %s", name)
				status = ComponentStatus{Status: statusUnhealthy, Error: err.Error()}
			}

			mu.Lock()
			components[name] = status
			if status.Status != statusHealthy {
				healthy = false
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	res := &HealthResponse{
		Status:     statusHealthy,
		Components: components,
		Timestamp:  float64(h.now().UnixNano()) / float64(time.Second),
	}

	code := http.StatusOK
	if !healthy {
		res.Status = statusUnhealthy
		code = http.StatusServiceUnavailable
	}

	WriteSuccess(w, code, res)
}
