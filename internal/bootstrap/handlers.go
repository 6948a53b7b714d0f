package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"github.com/botforge-ai/botforge/internal/analytics"
	"github.com/botforge-ai/botforge/internal/auth"
	"github.com/botforge-ai/botforge/internal/chatbot"
	"github.com/botforge-ai/botforge/internal/conversation"
	"github.com/botforge-ai/botforge/internal/live"
	"github.com/botforge-ai/botforge/internal/perf"
	"github.com/botforge-ai/botforge/internal/rollup"
	"github.com/botforge-ai/botforge/internal/user"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"

	_ "github.com/botforge-ai/botforge/docs"
)

// noopEmbeddingService stands in until a real embedding provider is wired.
// Zero vectors make every similarity lookup return arbitrary neighbors, which
// is good enough for local development.
type noopEmbeddingService struct{}

func (n *noopEmbeddingService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, 384), nil
}

func ProvideEmbeddingService() analytics.EmbeddingService {
	return &noopEmbeddingService{}
}

type HandlerParams struct {
	fx.In

	UserHandler      *user.Handler
	ChatbotHandler   *chatbot.Handler
	AnalyticsHandler *analytics.Handler
	JWTMiddleware    *auth.Middleware
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(params.JWTMiddleware.Authenticate)
	params.UserHandler.RegisterRoutes(authGroup)

	chatbotsGroup := api.Group("/chatbots")
	chatbotsGroup.Use(params.JWTMiddleware.Authenticate)
	params.ChatbotHandler.RegisterRoutes(chatbotsGroup)

	analyticsGroup := api.Group("/chatbots/:id/analytics")
	analyticsGroup.Use(params.JWTMiddleware.Authenticate)
	params.AnalyticsHandler.RegisterRoutes(analyticsGroup)

	e.GET("/swagger/*", echoSwagger.EchoWrapHandler())
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideJWTValidator(cfg *Config) *auth.JWTValidator {
	return auth.NewJWTValidator(cfg.HMACKey)
}

func ProvideJWTMiddleware(validator *auth.JWTValidator, userStore *user.Store) *auth.Middleware {
	return auth.NewMiddleware(validator, userStore)
}

func ProvideUserHandler(store *user.Store, logger *slog.Logger) *user.Handler {
	return user.NewHandler(store, logger.With("handler", "user"))
}

func ProvideChatbotHandler(store *chatbot.Store, logger *slog.Logger) *chatbot.Handler {
	return chatbot.NewHandler(store, logger.With("handler", "chatbot"))
}

func ProvideAnalyticsService(
	chatbots *chatbot.Store,
	samples *perf.Store,
	conversations *conversation.Store,
	rollups *rollup.Store,
	tracker *live.Store,
	embeddings analytics.EmbeddingService,
	logger *slog.Logger,
) *analytics.Service {
	return analytics.NewService(chatbots, samples, conversations, rollups, tracker, embeddings,
		logger.With("service", "analytics"))
}

func ProvideAnalyticsHandler(service *analytics.Service, logger *slog.Logger) *analytics.Handler {
	return analytics.NewHandler(service, logger.With("handler", "analytics"))
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideJWTValidator,
		ProvideJWTMiddleware,
		ProvideEmbeddingService,
		ProvideUserHandler,
		ProvideChatbotHandler,
		ProvideAnalyticsService,
		ProvideAnalyticsHandler,
	),
	fx.Invoke(RegisterRoutes),
)
