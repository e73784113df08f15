package middlewarectx

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/foodtrack/internal/http/response"
)

// limiters хранит отдельный rate.Limiter на каждого клиента.
type limiters struct {
	mu    sync.Mutex
	rps   rate.Limit
	burst int
	byKey map[string]*rate.Limiter
}

func (l *limiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.byKey[key]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.byKey[key] = lim
	}
	return lim
}

// RateLimitMiddleware ограничивает частоту запросов: rps в секунду с запасом burst.
// Лимит считается отдельно для каждого пользователя из контекста,
// для анонимных запросов ключом служит адрес клиента.
func RateLimitMiddleware(log *slog.Logger, rps float64, burst int) func(http.Handler) http.Handler {
	l := &limiters{rps: rate.Limit(rps), burst: burst, byKey: make(map[string]*rate.Limiter)}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if id, ok := IdentityFrom(r.Context()); ok {
				key = id.UserUID
			}
			if !l.get(key).Allow() {
				log.Warn("too many requests", slog.String("path", r.URL.Path), slog.String("client", key))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
