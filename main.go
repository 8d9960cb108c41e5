package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	rolesx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/agents/roles"
	triagex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/agents/triage"
	archivex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/archive"
	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
	knowledgex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/knowledge"
	llmx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/llm"
	configx "github.com/tanpawarit/Support-Ticket-Triage-Agent/pkg/config"
	_ "github.com/tanpawarit/Support-Ticket-Triage-Agent/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/Support-Ticket-Triage-Agent/pkg/openrouter"
)

type AppConfig struct {
	Categories        []string `envconfig:"TICKET_CATEGORIES" default:"billing,technical,security,general"`
	TicketSubject     string   `envconfig:"TICKET_SUBJECT"`
	TicketDescription string   `envconfig:"TICKET_DESCRIPTION"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("")
	categories, err := contractx.ParseCategories(appCfg.Categories)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid category configuration")
	}

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	knowledgeCfg := configx.MustNew[knowledgex.Config]("KNOWLEDGE")
	triageCfg := configx.MustNew[triagex.Config]("TRIAGE")

	models, err := rolesx.NewRegistry(ctx, *llmCfg, categories)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build model registry")
	}

	db := knowledgex.NewDB(knowledgeCfg.PostgresDSN)
	defer db.Close()

	index, err := knowledgex.NewPGVectorIndex(db, knowledgeCfg.Collection)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build vector index")
	}
	if err := index.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare vector index schema")
	}

	embeddingClient := openrouterx.NewClient(llmCfg.OpenRouterFor(contractx.RoleDrafter))
	if embeddingClient == nil {
		log.Fatal().Msg("failed to initialize embeddings client")
	}
	embedder, err := knowledgex.NewOpenAIEmbedder(embeddingClient, knowledgeCfg.EmbeddingModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build embedder")
	}

	gateway, err := knowledgex.NewGateway(embedder, index, *knowledgeCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build retrieval gateway")
	}

	archiver, err := archivex.NewPostgresArchive(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build archive")
	}
	if err := archiver.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare archive schema")
	}

	service, err := triagex.New(models, gateway, archiver, categories, *triageCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build triage service")
	}

	if appCfg.TicketSubject == "" {
		log.Info().Msg("triage service ready; set TICKET_SUBJECT and TICKET_DESCRIPTION to process a ticket")
		return
	}

	out, err := service.ProcessTicket(ctx, appCfg.TicketSubject, appCfg.TicketDescription)
	if err != nil {
		log.Fatal().Err(err).Msg("ticket processing failed")
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode result")
	}
	fmt.Println(string(encoded))
}
