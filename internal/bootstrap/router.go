package bootstrap

import (
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/curiosity-whiteboard/whiteboard-backend/internal/api/http"
	"github.com/curiosity-whiteboard/whiteboard-backend/internal/api/http/middleware"
	"github.com/curiosity-whiteboard/whiteboard-backend/internal/auth"
	"github.com/curiosity-whiteboard/whiteboard-backend/internal/boards"
	"github.com/curiosity-whiteboard/whiteboard-backend/internal/solve"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	AuthClient     *fbauth.Client
	Boards         *boards.Resolver
	Solver         *solve.Service
	Redis          *redis.Client
	SolveQPS       int
	Log            *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = dep.AllowedOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-Id")
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")
	api.Use(middleware.RequestID(dep.Log))
	api.Use(auth.OptionalAuth(dep.AuthClient))

	boards.Register(api, boards.NewHandler(dep.Boards, dep.Log))

	solveHandler := solve.NewHandler(dep.Solver, dep.Log)
	if dep.Redis != nil {
		solve.Register(api, solveHandler, middleware.RateLimit(dep.Redis, dep.SolveQPS, dep.Log))
	} else {
		solve.Register(api, solveHandler)
	}

	return r
}
