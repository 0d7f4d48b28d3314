package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JcKser/Iniciacao-Cientifica/internal/api"
	"github.com/JcKser/Iniciacao-Cientifica/internal/flow"
	"github.com/JcKser/Iniciacao-Cientifica/internal/genai"
	"github.com/JcKser/Iniciacao-Cientifica/internal/messaging"
	"github.com/JcKser/Iniciacao-Cientifica/internal/rag"
	"github.com/JcKser/Iniciacao-Cientifica/internal/report"
	"github.com/JcKser/Iniciacao-Cientifica/internal/store"
	"github.com/JcKser/Iniciacao-Cientifica/internal/ticket"
	"github.com/JcKser/Iniciacao-Cientifica/internal/util"
	"github.com/JcKser/Iniciacao-Cientifica/internal/whatsapp"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for assistant state data
	DefaultStateDir = "/var/lib/hrbot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "hrbot.db"
	// DefaultStateTTL is how long idle conversation states are kept
	DefaultStateTTL = 24 * time.Hour
	// stateSweepInterval is how often expired conversation states are purged
	stateSweepInterval = time.Hour
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	ai, err := genai.NewClient(buildGenAIOptions(flags)...)
	if err != nil {
		slog.Error("Failed to initialize GenAI client", "error", err)
		os.Exit(1)
	}

	bot := flow.NewFlow(st, ai, buildFlowOptions(flags, st, ai)...)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	apiOpts := buildAPIOptions(flags)
	svc, err := buildMessagingService(flags)
	if err != nil {
		slog.Error("Failed to initialize messaging service", "error", err)
		os.Exit(1)
	}
	if svc != nil {
		if err := svc.Start(ctx); err != nil {
			slog.Error("Failed to start messaging service", "error", err)
			os.Exit(1)
		}
		defer svc.Stop()
		responder := messaging.NewResponder(svc, bot)
		go responder.Run(ctx)
		if emitter, ok := svc.(api.ResponseEmitter); ok {
			apiOpts = append(apiOpts, api.WithResponseEmitter(emitter))
		}
	}

	go sweepConversationStates(ctx, st, flags.stateTTL())

	srv := api.NewServer(bot, apiOpts...)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()
	slog.Info("Assistant started", "backend", *flags.backend, "api_addr", *flags.apiAddr)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("API server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("API server shutdown failed", "error", err)
		}
	}
	slog.Info("Assistant exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL   string
	StateDir      string
	OpenAIKey     string
	OpenAIModel   string
	APIAddr       string
	BaseURL       string
	StaticDir     string
	Backend       string
	TwilioSID     string
	TwilioToken   string
	TwilioFrom    string
	WhatsAppDSN   string
	NumericCode   bool
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	TicketFrom    string
	TicketTo      string
	StateTTLValue string
}

// Flags holds command line flag values
type Flags struct {
	stateDir     *string
	dbDSN        *string
	openaiKey    *string
	openaiModel  *string
	apiAddr      *string
	baseURL      *string
	staticDir    *string
	backend      *string
	twilioSID    *string
	twilioToken  *string
	twilioFrom   *string
	waDSN        *string
	qrOutput     *string
	numeric      *bool
	smtpHost     *string
	smtpPort     *int
	smtpUsername *string
	smtpPassword *string
	ticketFrom   *string
	ticketTo     *string
	stateTTLRaw  *string
}

// stateTTL parses the configured conversation-state TTL, falling back
// to the default on empty or unparseable input.
func (f Flags) stateTTL() time.Duration {
	if *f.stateTTLRaw == "" {
		return DefaultStateTTL
	}
	d, err := time.ParseDuration(*f.stateTTLRaw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid state TTL, using default", "value", *f.stateTTLRaw, "default", DefaultStateTTL)
		return DefaultStateTTL
	}
	return d
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		StateDir:      os.Getenv("HRBOT_STATE_DIR"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		APIAddr:       os.Getenv("API_ADDR"),
		BaseURL:       os.Getenv("BASE_URL"),
		StaticDir:     os.Getenv("STATIC_DIR"),
		Backend:       os.Getenv("MESSAGING_BACKEND"),
		TwilioSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:    os.Getenv("TWILIO_FROM_NUMBER"),
		WhatsAppDSN:   os.Getenv("WHATSAPP_DB_DSN"),
		NumericCode:   util.ParseBoolEnv("WHATSAPP_NUMERIC_CODE", false),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      util.ParseIntEnv("SMTP_PORT", 0),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		TicketFrom:    os.Getenv("TICKET_FROM_EMAIL"),
		TicketTo:      os.Getenv("TICKET_SUPPORT_EMAIL"),
		StateTTLValue: os.Getenv("CONVERSATION_STATE_TTL"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No HRBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No DATABASE_URL provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}
	if config.Backend == "" {
		config.Backend = "twilio"
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"HRBOT_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"MESSAGING_BACKEND", config.Backend,
		"TWILIO_CONFIGURED", config.TwilioSID != "" && config.TwilioToken != "",
		"SMTP_CONFIGURED", config.SMTPHost != "",
		"API_ADDR", config.APIAddr,
		"BASE_URL", config.BaseURL)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for assistant data (overrides $HRBOT_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "database DSN for the candidate store (overrides $DATABASE_URL)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:  flag.String("openai-model", config.OpenAIModel, "OpenAI chat model (overrides $OPENAI_MODEL)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		baseURL:      flag.String("base-url", config.BaseURL, "public base URL for report links (overrides $BASE_URL)"),
		staticDir:    flag.String("static-dir", config.StaticDir, "directory for generated report PDFs (overrides $STATIC_DIR)"),
		backend:      flag.String("messaging-backend", config.Backend, "messaging backend: twilio or whatsmeow (overrides $MESSAGING_BACKEND)"),
		twilioSID:    flag.String("twilio-account-sid", config.TwilioSID, "Twilio account SID (overrides $TWILIO_ACCOUNT_SID)"),
		twilioToken:  flag.String("twilio-auth-token", config.TwilioToken, "Twilio auth token (overrides $TWILIO_AUTH_TOKEN)"),
		twilioFrom:   flag.String("twilio-from", config.TwilioFrom, "Twilio WhatsApp sender number (overrides $TWILIO_FROM_NUMBER)"),
		waDSN:        flag.String("whatsapp-db-dsn", config.WhatsAppDSN, "whatsmeow session database DSN (overrides $WHATSAPP_DB_DSN)"),
		qrOutput:     flag.String("qr-output", "", "path to write login QR code"),
		numeric:      flag.Bool("numeric-code", config.NumericCode, "use numeric login code instead of QR code (overrides $WHATSAPP_NUMERIC_CODE)"),
		smtpHost:     flag.String("smtp-host", config.SMTPHost, "SMTP host for ticket email (overrides $SMTP_HOST)"),
		smtpPort:     flag.Int("smtp-port", config.SMTPPort, "SMTP port for ticket email (overrides $SMTP_PORT)"),
		smtpUsername: flag.String("smtp-username", config.SMTPUsername, "SMTP username (overrides $SMTP_USERNAME)"),
		smtpPassword: flag.String("smtp-password", config.SMTPPassword, "SMTP password (overrides $SMTP_PASSWORD)"),
		ticketFrom:   flag.String("ticket-from", config.TicketFrom, "ticket sender address (overrides $TICKET_FROM_EMAIL)"),
		ticketTo:     flag.String("ticket-to", config.TicketTo, "support queue address (overrides $TICKET_SUPPORT_EMAIL)"),
		stateTTLRaw:  flag.String("state-ttl", config.StateTTLValue, "conversation state TTL, e.g. 24h (overrides $CONVERSATION_STATE_TTL)"),
	}

	flag.Parse()

	// Follow a moved state directory when the DSN was derived from it
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			return err
		}
	}
	if *flags.staticDir != "" {
		if err := os.MkdirAll(*flags.staticDir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// buildStore opens the candidate store matching the configured DSN.
func buildStore(flags Flags) (store.Store, error) {
	dsn := *flags.dbDSN
	if dsn == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(dsn) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(dsn))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", dsn)
	return store.NewSQLiteStore(store.WithSQLiteDSN(dsn))
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var opts []genai.Option
	if *flags.openaiKey != "" {
		opts = append(opts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.openaiModel != "" {
		opts = append(opts, genai.WithModel(*flags.openaiModel))
	}
	return opts
}

// buildFlowOptions wires the knowledge base, report generator and
// ticket mailer into the conversation flow.
func buildFlowOptions(flags Flags, st store.Store, ai genai.ClientInterface) []flow.Option {
	opts := []flow.Option{
		flow.WithAnswerer(rag.NewRetriever(st, ai)),
	}

	var reportOpts []report.Option
	if *flags.staticDir != "" {
		reportOpts = append(reportOpts, report.WithStaticDir(*flags.staticDir))
	}
	opts = append(opts, flow.WithReporter(report.NewGenerator(st, reportOpts...)))

	if *flags.baseURL != "" {
		opts = append(opts, flow.WithBaseURL(*flags.baseURL))
	}

	if *flags.smtpHost != "" && *flags.ticketTo != "" {
		mailer, err := ticket.NewMailer(
			ticket.WithSMTP(*flags.smtpHost, *flags.smtpPort, *flags.smtpUsername, *flags.smtpPassword),
			ticket.WithAddresses(*flags.ticketFrom, *flags.ticketTo),
		)
		if err != nil {
			slog.Warn("Ticket mailer not configured, escalation disabled", "error", err)
		} else {
			opts = append(opts, flow.WithTicketMailer(mailer))
		}
	} else {
		slog.Warn("SMTP not configured, ticket escalation disabled")
	}

	return opts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var opts []api.Option
	if *flags.apiAddr != "" {
		opts = append(opts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.staticDir != "" {
		opts = append(opts, api.WithStaticDir(*flags.staticDir))
	}
	return opts
}

// buildMessagingService creates the configured messaging backend. A nil
// service means the webhook answers inline with TwiML and no responder
// loop is needed.
func buildMessagingService(flags Flags) (messaging.Service, error) {
	switch *flags.backend {
	case "whatsmeow":
		var waOpts []whatsapp.Option
		if *flags.waDSN != "" {
			waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.waDSN))
		}
		if *flags.qrOutput != "" {
			waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
		}
		if *flags.numeric {
			waOpts = append(waOpts, whatsapp.WithNumericCode())
		}
		client, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return nil, err
		}
		return messaging.NewWhatsAppService(client), nil

	default:
		if *flags.twilioSID == "" || *flags.twilioToken == "" {
			slog.Warn("Twilio credentials not configured, webhook will reply inline")
			return nil, nil
		}
		client, err := messaging.NewTwilioClient(*flags.twilioSID, *flags.twilioToken, *flags.twilioFrom)
		if err != nil {
			return nil, err
		}
		return messaging.NewTwilioService(client), nil
	}
}

// sweepConversationStates periodically deletes idle conversation states
// so abandoned sessions restart from a clean slate.
func sweepConversationStates(ctx context.Context, st store.Store, ttl time.Duration) {
	ticker := time.NewTicker(stateSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-ttl)
			n, err := st.DeleteConversationStatesBefore(ctx, cutoff)
			if err != nil {
				slog.Error("Conversation state sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("Conversation state sweep completed", "deleted", n, "cutoff", cutoff)
			}
		}
	}
}
