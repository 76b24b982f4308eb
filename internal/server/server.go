package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/chore"
	"github.com/dukerupert/chorestore/internal/handler"
	"github.com/dukerupert/chorestore/internal/household"
	"github.com/dukerupert/chorestore/internal/middleware"
	"github.com/dukerupert/chorestore/internal/photo"
	"github.com/dukerupert/chorestore/internal/points"
	"github.com/dukerupert/chorestore/internal/push"
	"github.com/dukerupert/chorestore/internal/reward"
	"github.com/dukerupert/chorestore/internal/store"
	ws "github.com/dukerupert/chorestore/internal/websocket"
)

// Auth endpoints allow this many attempts per IP per window.
const (
	authRateLimit  = 20
	authRateWindow = 15 * time.Minute
)

// Options carries the collaborators and settings the server wires in.
// Nil Inviter, Uploader or Push disable those features.
type Options struct {
	JWTSecret   string
	Location    *time.Location
	Now         func() time.Time
	CORSOrigins []string
	Inviter     household.Inviter
	Uploader    photo.Uploader
	Push        *push.Service
}

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	tokens         *auth.Tokens
	householdStore *store.HouseholdStore
	authH          *handler.AuthHandler
	householdH     *handler.HouseholdHandler
	childH         *handler.ChildHandler
	templateH      *handler.TemplateHandler
	choreH         *handler.ChoreHandler
	uploadH        *handler.UploadHandler
	pointsH        *handler.PointsHandler
	rewardH        *handler.RewardHandler
	pushH          *handler.PushHandler
	rateLimiter    *middleware.RateLimiter
	corsOrigins    []string
	logger         *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	childStore := store.NewChildStore(db)
	templateStore := store.NewTemplateStore(db)
	instanceStore := store.NewInstanceStore(db)
	ledgerStore := store.NewLedgerStore(db)
	rewardStore := store.NewRewardStore(db)
	redemptionStore := store.NewRedemptionStore(db)
	pushStore := store.NewPushStore(db)

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	calendar := chore.NewCalendar(loc)
	if opts.Now != nil {
		calendar = calendar.WithClock(opts.Now)
	}

	tokens := auth.NewTokens(opts.JWTSecret)
	households := household.NewService(userStore, householdStore, childStore, tokens, opts.Inviter, logger)
	chores := chore.NewService(templateStore, instanceStore, childStore, householdStore, calendar, logger)
	pointsSvc := points.NewService(ledgerStore, childStore)
	rewards := reward.NewService(rewardStore, redemptionStore, childStore, logger)

	var notifier handler.Notifier
	var vapidKey string
	if opts.Push.Configured() {
		notifier = push.NewNotifier(pushStore, opts.Push, logger)
		vapidKey = opts.Push.VAPIDPublicKey()
	}

	return &Server{
		db:             db,
		hub:            hub,
		tokens:         tokens,
		householdStore: householdStore,
		authH:          handler.NewAuthHandler(households, logger.With("component", "auth")),
		householdH:     handler.NewHouseholdHandler(households, hub, logger.With("component", "household")),
		childH:         handler.NewChildHandler(households, hub, logger.With("component", "child")),
		templateH:      handler.NewTemplateHandler(chores, hub, logger.With("component", "template")),
		choreH:         handler.NewChoreHandler(chores, hub, notifier, logger.With("component", "chore")),
		uploadH:        handler.NewUploadHandler(opts.Uploader, logger.With("component", "upload")),
		pointsH:        handler.NewPointsHandler(pointsSvc, logger.With("component", "points")),
		rewardH:        handler.NewRewardHandler(rewards, hub, notifier, logger.With("component", "reward")),
		pushH:          handler.NewPushHandler(pushStore, vapidKey, logger.With("component", "push_handler")),
		rateLimiter:    middleware.NewRateLimiter(),
		corsOrigins:    opts.CORSOrigins,
		logger:         logger,
	}
}

// RateLimiter returns the limiter so the caller can run its cleanup loop.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/child-login", s.rateLimitedHandler(s.authH.ChildLogin))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with Authenticate middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.Authenticate(s.tokens, s.householdStore, s.logger.With("component", "auth"))
	outerMux.Handle("/", authMiddleware(protectedMux))

	var h http.Handler = outerMux
	if len(s.corsOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         600,
		}).Handler(h)
	}

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, authRateLimit, authRateWindow)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}

// Guard chains.
func parent(h http.HandlerFunc) http.Handler {
	return middleware.RequireParent(middleware.RequireHousehold(h))
}

func child(h http.HandlerFunc) http.Handler {
	return middleware.RequireChild(middleware.RequireHousehold(h))
}

func admin(h http.HandlerFunc) http.Handler {
	return middleware.RequireParent(middleware.RequireHousehold(middleware.RequireAdmin(h)))
}

func member(h http.HandlerFunc) http.Handler {
	return middleware.RequireHousehold(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Parent account routes that work before joining a household
	mux.Handle("GET /api/auth/me", middleware.RequireParent(http.HandlerFunc(s.authH.Me)))
	mux.Handle("POST /api/households", middleware.RequireParent(http.HandlerFunc(s.householdH.Create)))
	mux.Handle("POST /api/households/join", middleware.RequireParent(http.HandlerFunc(s.householdH.Join)))

	mux.Handle("GET /api/households/current", parent(s.householdH.Current))
	mux.Handle("POST /api/households/invite", admin(s.householdH.Invite))

	// Children
	mux.Handle("GET /api/children", parent(s.childH.List))
	mux.Handle("POST /api/children", parent(s.childH.Create))
	mux.Handle("GET /api/children/{id}", parent(s.childH.Get))
	mux.Handle("PATCH /api/children/{id}", parent(s.childH.Update))
	mux.Handle("DELETE /api/children/{id}", parent(s.childH.Delete))

	// Chore templates
	mux.Handle("GET /api/chore-templates", parent(s.templateH.List))
	mux.Handle("POST /api/chore-templates", parent(s.templateH.Create))
	mux.Handle("GET /api/chore-templates/{id}", parent(s.templateH.Get))
	mux.Handle("PATCH /api/chore-templates/{id}", parent(s.templateH.Update))
	mux.Handle("DELETE /api/chore-templates/{id}", parent(s.templateH.Delete))

	// Chore instances
	mux.Handle("POST /api/chore-instances/generate", member(s.choreH.Generate))
	mux.Handle("GET /api/chore-instances/my", child(s.choreH.Mine))
	mux.Handle("GET /api/chore-instances", parent(s.choreH.List))
	mux.Handle("POST /api/chore-instances", parent(s.choreH.Create))
	mux.Handle("GET /api/chore-instances/{id}", member(s.choreH.Get))

	// Submissions and verification
	mux.Handle("POST /api/submissions/{choreInstanceId}", child(s.choreH.Submit))
	mux.Handle("POST /api/uploads/photo", child(s.uploadH.Photo))
	mux.Handle("GET /api/verifications/pending", parent(s.choreH.Pending))
	mux.Handle("POST /api/verifications/{choreInstanceId}", parent(s.choreH.Verify))

	// Points
	mux.Handle("GET /api/points/balance", member(s.pointsH.Balance))
	mux.Handle("GET /api/points/transactions", member(s.pointsH.Transactions))
	mux.Handle("GET /api/points/leaderboard", member(s.pointsH.Leaderboard))

	// Rewards and redemptions
	mux.Handle("GET /api/rewards", parent(s.rewardH.List))
	mux.Handle("POST /api/rewards", parent(s.rewardH.Create))
	mux.Handle("GET /api/rewards/shop", member(s.rewardH.Shop))
	mux.Handle("GET /api/rewards/{id}", parent(s.rewardH.Get))
	mux.Handle("PATCH /api/rewards/{id}", parent(s.rewardH.Update))
	mux.Handle("DELETE /api/rewards/{id}", parent(s.rewardH.Delete))
	mux.Handle("POST /api/redemptions", child(s.rewardH.Redeem))
	mux.Handle("GET /api/redemptions/my", child(s.rewardH.MyRedemptions))
	mux.Handle("GET /api/redemptions", parent(s.rewardH.Redemptions))
	mux.Handle("PATCH /api/redemptions/{id}", parent(s.rewardH.UpdateRedemption))

	// Push notifications
	mux.Handle("GET /api/push/vapid-key", parent(s.pushH.VAPIDKey))
	mux.Handle("POST /api/push/subscriptions", parent(s.pushH.Subscribe))
	mux.Handle("DELETE /api/push/subscriptions", parent(s.pushH.Unsubscribe))

	// Realtime
	mux.Handle("GET /ws", member(ws.HandleWebSocket(s.hub, originHosts(s.corsOrigins), s.logger.With("component", "websocket"))))
}

// originHosts turns CORS origins into the host patterns the WebSocket
// upgrader matches against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if _, host, ok := strings.Cut(o, "://"); ok {
			o = host
		}
		hosts = append(hosts, strings.TrimRight(o, "/"))
	}
	return hosts
}
