package httpserver

import (
	"log"
	"sync"
	"time"

	cartsvc "ando-storefront/internal/service/cart"
	checkoutsvc "ando-storefront/internal/service/checkout"
	favoritessvc "ando-storefront/internal/service/favorites"
	sessionsvc "ando-storefront/internal/service/session"
	"ando-storefront/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionHeader = "X-Session-Id"

// Sessions idle longer than this are evicted the next time a fresh
// session is minted, so forged or abandoned ids cannot grow the
// registry without bound.
const sessionIdleTTL = 24 * time.Hour

// deviceSession bundles the per-device commerce state: the guest store,
// the session stores built on it, the bridge and the discount engine.
type deviceSession struct {
	ID        string
	Cart      *cartsvc.Store
	Favorites *favoritessvc.Store
	Bridge    *sessionsvc.Bridge
	Engine    *checkoutsvc.Engine
	CreatedAt time.Time
	LastSeen  time.Time
}

// sessionRegistry issues and resolves device sessions. Each session owns
// its own device store, so two browsers never share guest state.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*deviceSession
	build    func(id string) *deviceSession
	ttl      time.Duration
	now      func() time.Time
	logger   *log.Logger
}

func newSessionRegistry(build func(id string) *deviceSession, logger *log.Logger) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*deviceSession),
		build:    build,
		ttl:      sessionIdleTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// resolve returns the session for id, creating a fresh one when id is
// empty or unknown (an expired or forged id simply starts a new guest).
func (r *sessionRegistry) resolve(id string) *deviceSession {
	now := r.now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != "" {
		if sess, ok := r.sessions[id]; ok {
			sess.LastSeen = now
			return sess
		}
	}

	r.evictIdle(now)
	fresh := r.build(uuid.NewString())
	fresh.CreatedAt = now
	fresh.LastSeen = now
	r.sessions[fresh.ID] = fresh
	return fresh
}

// evictIdle drops sessions that have not been seen within the TTL.
// Callers must hold r.mu.
func (r *sessionRegistry) evictIdle(now time.Time) {
	for id, sess := range r.sessions {
		if now.Sub(sess.LastSeen) > r.ttl {
			delete(r.sessions, id)
			if r.logger != nil {
				r.logger.Printf("evicted idle session %s", id)
			}
		}
	}
}

// sessionMiddleware attaches the device session to the request context and
// echoes its id so clients can stick to it.
func sessionMiddleware(registry *sessionRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := registry.resolve(c.GetHeader(sessionHeader))
		c.Header(sessionHeader, sess.ID)
		c.Set(sessionCtxKey, sess)
		c.Next()
	}
}

const sessionCtxKey = "deviceSession"

func currentSession(c *gin.Context) *deviceSession {
	v, ok := c.Get(sessionCtxKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*deviceSession)
	return sess
}

// newDeviceSessionFactory wires a fresh guest session from shared deps.
func newDeviceSessionFactory(deps Deps, logger *log.Logger) func(id string) *deviceSession {
	return func(id string) *deviceSession {
		device := storage.NewDeviceStore()
		adapter := storage.New(device, deps.CartRepo, deps.FavoritesRepo, deps.RetryAttempts, deps.RetryBackoff, logger)
		cart := cartsvc.New(adapter)
		favorites := favoritessvc.New(adapter)
		bridge := sessionsvc.New(deps.CustomerSvc, adapter, cart, favorites, logger)
		engine := checkoutsvc.New(deps.PromoRepo, deps.DiscountRepo, deps.OrderRepo, deps.Publisher, logger)
		return &deviceSession{
			ID:        id,
			Cart:      cart,
			Favorites: favorites,
			Bridge:    bridge,
			Engine:    engine,
		}
	}
}
