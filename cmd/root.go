package cmd

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/wadesk/wadesk/core/config"
	"github.com/wadesk/wadesk/core/database"
	domainChat "github.com/wadesk/wadesk/domains/chat"
	domainHealth "github.com/wadesk/wadesk/domains/health"
	domainMessage "github.com/wadesk/wadesk/domains/message"
	domainProvider "github.com/wadesk/wadesk/domains/provider"
	domainWebhook "github.com/wadesk/wadesk/domains/webhook"
	providerMeta "github.com/wadesk/wadesk/infrastructure/provider/meta"
	providerTwilio "github.com/wadesk/wadesk/infrastructure/provider/twilio"
	"github.com/wadesk/wadesk/infrastructure/storage"
	"github.com/wadesk/wadesk/usecase"
	"gorm.io/gorm"
)

var (
	appDB *gorm.DB

	// Provider adapters (closed set, selected by configuration)
	adapters      map[domainProvider.Kind]domainProvider.Adapter
	activeAdapter domainProvider.Adapter

	// Repositories
	agentRepo    *storage.AgentGormRepository
	customerRepo *storage.CustomerGormRepository
	messageRepo  *storage.MessageGormRepository

	// Usecases
	webhookUsecase domainWebhook.IWebhookUsecase
	messageUsecase domainMessage.IMessageUsecase
	chatUsecase    domainChat.IChatUsecase
	healthUsecase  domainHealth.IHealthUsecase
)

var rootCmd = &cobra.Command{
	Use:   "wadesk",
	Short: "WhatsApp customer-agent relay",
	Long:  `Relays WhatsApp messages between customers and sales agents through Twilio or the Meta Cloud API.`,
}

func init() {
	// Load .env before anything reads the environment. Missing file is fine;
	// production environments inject variables directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Could not load .env file: %v", err)
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	cobra.OnInitialize(initApp)
}

func initApp() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalln("Failed to load configuration:", err)
	}
	config.Global = cfg

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	appDB, err = database.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalln("Failed to connect database:", err)
	}

	agentRepo = storage.NewAgentRepository(appDB)
	customerRepo = storage.NewCustomerRepository(appDB)
	messageRepo = storage.NewMessageRepository(appDB)

	httpClient := newProviderHTTPClient()
	twilioAdapter := providerTwilio.NewAdapter(cfg.Twilio, httpClient)
	metaAdapter := providerMeta.NewAdapter(cfg.Meta, httpClient)
	adapters = map[domainProvider.Kind]domainProvider.Adapter{
		domainProvider.KindTwilio: twilioAdapter,
		domainProvider.KindMeta:   metaAdapter,
	}
	switch cfg.Provider.Active {
	case "meta":
		activeAdapter = metaAdapter
	default:
		activeAdapter = twilioAdapter
	}
	if !activeAdapter.Configured() {
		logrus.Warnf("Active provider %q has no credentials; outbound sends will soft-fail", cfg.Provider.Active)
	}

	resolver := usecase.NewCustomerResolver(customerRepo, agentRepo)
	reconciler := usecase.NewStatusReconciler(messageRepo)

	webhookUsecase = usecase.NewWebhookService(adapters, resolver, messageRepo, reconciler)
	messageUsecase = usecase.NewMessageService(customerRepo, agentRepo, messageRepo, activeAdapter, reconciler)
	chatUsecase = usecase.NewChatService(customerRepo, messageRepo)
	healthUsecase = usecase.NewHealthService(cfg.App.Version, appDB, adapters)
}

// newProviderHTTPClient builds the client both provider adapters share. The
// timeout bounds every outbound send; a stalled provider must never hold a
// request goroutine indefinitely.
func newProviderHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// Execute adds all child commands to the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
