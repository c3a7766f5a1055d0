package echoapi

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/trezcool/edutrack/core/user"
)

const contextObjectKey = "object"

// ctxUserMiddleware only lets users reach their own records; any other id is not found.
func ctxUserMiddleware(svc user.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if ctx.Param("googleId") != ctxUsr.GoogleID {
				return errUserNotFound
			}
			ctx.Set(contextObjectKey, ctxUsr)
			return next(ctx)
		}
	}
}

// rateLimiter allows limit requests per window and client IP.
type rateLimiter struct {
	limit   rate.Limit
	burst   int
	window  time.Duration
	mu      sync.Mutex
	clients map[string]*client
	swept   time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{
		limit:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		window:  window,
		clients: make(map[string]*client),
		swept:   nowFunc(),
	}
}

func (rl *rateLimiter) allow(key string) bool {
	now := nowFunc()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// forget idle clients
	if now.Sub(rl.swept) > rl.window {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) > rl.window {
				delete(rl.clients, k)
			}
		}
		rl.swept = now
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (rl *rateLimiter) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !rl.allow(ctx.RealIP()) {
				return errTooManyRequest
			}
			return next(ctx)
		}
	}
}
