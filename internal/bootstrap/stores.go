package bootstrap

import (
	"github.com/botforge-ai/botforge/internal/chatbot"
	"github.com/botforge-ai/botforge/internal/conversation"
	"github.com/botforge-ai/botforge/internal/live"
	"github.com/botforge-ai/botforge/internal/perf"
	"github.com/botforge-ai/botforge/internal/rollup"
	"github.com/botforge-ai/botforge/internal/user"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideUserStore(db *gorm.DB) *user.Store {
	return user.NewStore(db)
}

func ProvideChatbotStore(db *gorm.DB) *chatbot.Store {
	return chatbot.NewStore(db)
}

func ProvideConversationStore(db *gorm.DB, qdrantClient *qdrant.Client) *conversation.Store {
	return conversation.NewStore(db, qdrantClient)
}

func ProvidePerfStore(db *gorm.DB) *perf.Store {
	return perf.NewStore(db)
}

func ProvideRollupStore(db *gorm.DB) *rollup.Store {
	return rollup.NewStore(db)
}

func ProvideLiveStore(redisClient *redis.Client) *live.Store {
	return live.NewStore(redisClient)
}

func RunMigrations(
	userStore *user.Store,
	chatbotStore *chatbot.Store,
	conversationStore *conversation.Store,
	perfStore *perf.Store,
	rollupStore *rollup.Store,
) error {
	if err := userStore.Migrate(); err != nil {
		return err
	}
	if err := chatbotStore.Migrate(); err != nil {
		return err
	}
	if err := conversationStore.Migrate(); err != nil {
		return err
	}
	if err := perfStore.Migrate(); err != nil {
		return err
	}
	return rollupStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideUserStore,
		ProvideChatbotStore,
		ProvideConversationStore,
		ProvidePerfStore,
		ProvideRollupStore,
		ProvideLiveStore,
	),
	fx.Invoke(RunMigrations),
)
