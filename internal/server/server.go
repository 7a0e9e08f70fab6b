package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mysticvn/boitoan/internal/config"
	"github.com/mysticvn/boitoan/internal/divination"
	"github.com/mysticvn/boitoan/internal/llm"
	"github.com/mysticvn/boitoan/internal/oracle"
	"github.com/mysticvn/boitoan/internal/store"
	"github.com/mysticvn/boitoan/internal/wiki"
)

// Store is the persistence collaborator the handlers depend on. The gorm
// implementation lives in internal/store; tests use an in-memory fake.
type Store interface {
	CreateUser(user *store.User) error
	GetUserByEmail(email string) (*store.User, error)
	GetUserByID(id string) (*store.User, error)
	UpdateProfile(userID, name string, birthDate *time.Time, birthTime, birthPlace string) (*store.User, error)

	GetPartner(userID string) (*store.Partner, error)
	CreatePartner(partner *store.Partner) error
	UpdatePartner(partner *store.Partner) error
	DeletePartnerWithBreakup(userID string, partner *store.Partner, now time.Time) error
	RestorePartnerFromBreakup(userID string, partner *store.Partner, breakupID string) error

	GetActiveBreakup(userID string, now time.Time) (*store.Breakup, error)
	UpdateBreakupWeeklyCheck(breakupID string, weeklyCheckDone []string) (*store.Breakup, error)
	DeleteBreakup(breakupID string) error
	DeleteExpiredBreakups(userID string, now time.Time) (int64, error)

	AppendChatMessage(userID, role, content string) error
	RecentChatMessages(userID string, n int) ([]store.ChatMessage, error)
	ChatHistory(userID string) ([]store.ChatMessage, error)
	CreateTarotReading(userID, question string, cardsDrawn []string, interpretation string) (*store.TarotReading, error)

	LoadUserContext(userID string, now time.Time) (divination.UserContext, error)
}

type Server struct {
	cfg    *config.Config
	store  Store
	oracle *oracle.Oracle
	now    func() time.Time
}

// New wires a server from already constructed collaborators.
func New(cfg *config.Config, st Store, o *oracle.Oracle) *Server {
	return &Server{cfg: cfg, store: st, oracle: o, now: time.Now}
}

// NewServer bootstraps the full stack: config file, env overrides, database,
// Wikipedia client and LLM client.
func NewServer() (*Server, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.WithError(err).Warnf("could not load %s, falling back to defaults plus env", cfgPath)
		cfg = config.Default()
	}
	applyEnvOverrides(cfg)

	if level, err := logrus.ParseLevel(cfg.Logger.Level); err == nil {
		logrus.SetLevel(level)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		return nil, err
	}

	o := oracle.New(llmClient, wiki.NewClient(cfg.Wikipedia))
	o.Timeout = time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	return New(cfg, st, o), nil
}

func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("MYSQL_ADDRESS"); v != "" {
		cfg.Database.Address = v
	}
	if v := os.Getenv("MYSQL_USERNAME"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("MYSQL_DATABASE"); v != "" {
		cfg.Database.Database = v
	}
}

func (s *Server) Port() string {
	return s.cfg.Server.Port
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	if len(s.cfg.Server.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.cfg.Server.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-User-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "boitoan-api"})
	})

	r.POST("/api/auth/register", s.Register)
	r.POST("/api/auth/login", s.Login)

	api := r.Group("/api")
	api.Use(s.authMiddleware())

	api.POST("/astrology", s.Astrology)
	api.POST("/fortune", s.Fortune)
	api.POST("/numerology", s.Numerology)
	api.POST("/tarot/reading", s.TarotReading)
	api.POST("/chat", s.Chat)
	api.GET("/chat/history", s.ChatHistoryHandler)

	api.GET("/profile", s.GetProfile)
	api.PUT("/profile", s.UpdateProfileHandler)

	api.GET("/partner", s.GetPartnerHandler)
	api.POST("/partner", s.CreatePartnerHandler)
	api.PUT("/partner", s.UpdatePartnerHandler)
	api.DELETE("/partner", s.DeletePartnerHandler)

	api.GET("/breakup", s.GetBreakup)
	api.PUT("/breakup", s.UpdateBreakup)
	api.POST("/breakup", s.RestoreBreakup)
	api.DELETE("/breakup", s.PurgeBreakups)

	return r
}
