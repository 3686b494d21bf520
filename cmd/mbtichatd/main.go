// Command mbtichatd exposes the persona chat core over a small HTTP API:
// single-personality chat, multi-personality fan-out, group discussion, and
// service status. The conversation UI itself lives elsewhere; this is just
// the programmatic surface.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	mbtichat "github.com/personaverse/mbtichat-go"
	"github.com/personaverse/mbtichat-go/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional, env vars fill the gaps)")
	addr := flag.String("addr", ":8085", "listen address")
	parallel := flag.Bool("parallel", false, "run independent fan-out calls concurrently")
	flag.Parse()

	cfg, err := mbtichat.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	orch, composer := buildSystem(cfg, *parallel)
	conversations := buildConversationStore(cfg)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	h := &handler{orch: orch, composer: composer, conversations: conversations}
	e.GET("/v1/types", h.listTypes)
	e.GET("/v1/status", h.status)
	e.POST("/v1/chat", h.chat)
	e.POST("/v1/multi", h.multi)
	e.POST("/v1/discuss", h.discuss)
	e.GET("/v1/history/:session", h.history)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	if err := e.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// buildSystem wires providers, orchestrator, and composer from the config.
// Unconfigured backends are simply not registered; with nothing registered
// every reply comes from the local simulator.
func buildSystem(cfg mbtichat.Config, parallel bool) (*mbtichat.Orchestrator, *mbtichat.Composer) {
	orch := mbtichat.NewOrchestrator(nil, nil)
	orch.SetTracer(mbtichat.NewTracer(&mbtichat.ConsoleSpanExporter{}, true))

	var completer mbtichat.Provider
	if cfg.OpenAI.APIKey != "" {
		openaiProvider := mbtichat.NewOpenAIProvider(mbtichat.OpenAIProviderConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
		orch.RegisterProvider(openaiProvider)
		completer = openaiProvider
		log.Printf("[mbtichatd] OpenAI backend configured")
	}

	if cfg.Llama.APIKey != "" && cfg.Llama.BaseURL != "" {
		llamaProvider := mbtichat.NewLlamaProvider(mbtichat.LlamaProviderConfig{
			APIKey:  cfg.Llama.APIKey,
			BaseURL: cfg.Llama.BaseURL,
			Model:   cfg.Llama.Model,
		})
		orch.RegisterProvider(llamaProvider)
		if completer == nil {
			completer = llamaProvider
		}
		log.Printf("[mbtichatd] Llama backend configured")
	}

	var knowledge mbtichat.KnowledgeStore
	if cfg.Weaviate.URL != "" {
		knowledge = store.NewWeaviateStore(store.WeaviateConfig{
			BaseURL: cfg.Weaviate.URL,
			Class:   cfg.Weaviate.Class,
			APIKey:  cfg.Weaviate.APIKey,
		})
		log.Printf("[mbtichatd] Weaviate knowledge store configured")
	} else {
		seeded := mbtichat.NewInMemoryKnowledgeStore()
		seeded.SeedFromCatalog()
		knowledge = seeded
		log.Printf("[mbtichatd] no Weaviate URL, using seeded in-memory knowledge store")
	}

	// Any configured completion backend can serve the retrieval path;
	// OpenAI is preferred when both are present.
	if completer != nil {
		orch.RegisterProvider(mbtichat.NewRetrievalProvider(knowledge, completer, cfg.TopK))
	}

	if table := cfg.AllocationTable(); table != nil {
		orch.SetAllocation(table)
	}

	composer := mbtichat.NewComposer(orch, nil)
	composer.SetParallel(parallel)
	return orch, composer
}

func buildConversationStore(cfg mbtichat.Config) mbtichat.ConversationStore {
	if cfg.Redis.Addr == "" {
		return mbtichat.NewInMemoryConversationStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Printf("[mbtichatd] conversation history on redis at %s", cfg.Redis.Addr)
	return store.NewRedisConversationStore(client)
}

type handler struct {
	orch          *mbtichat.Orchestrator
	composer      *mbtichat.Composer
	conversations mbtichat.ConversationStore
}

type typeInfo struct {
	Code               string `json:"code"`
	Nickname           string `json:"nickname"`
	Description        string `json:"description"`
	CognitiveFunctions string `json:"cognitive_functions"`
	Avatar             string `json:"avatar"`
}

func (h *handler) listTypes(c echo.Context) error {
	types := mbtichat.AllTypes()
	result := make([]typeInfo, 0, len(types))
	for _, t := range types {
		p := mbtichat.Profile(t)
		result = append(result, typeInfo{
			Code:               string(t),
			Nickname:           p.Nickname,
			Description:        p.Description,
			CognitiveFunctions: p.CognitiveFunctions,
			Avatar:             p.Avatar,
		})
	}
	return c.JSON(http.StatusOK, result)
}

func (h *handler) status(c echo.Context) error {
	if c.QueryParam("recheck") == "true" {
		return c.JSON(http.StatusOK, h.orch.RecheckAll(c.Request().Context()))
	}
	return c.JSON(http.StatusOK, h.orch.ServiceStatus())
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	Query     string `json:"query"`
}

type chatResponse struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

func (h *handler) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" || req.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "type and query are required")
	}

	ctx := c.Request().Context()
	t := mbtichat.PersonalityType(req.Type)
	result := h.orch.RespondDetailed(ctx, t, req.Query)

	if req.SessionID != "" {
		if err := h.conversations.Append(ctx, req.SessionID, mbtichat.UserEntry(req.Query)); err != nil {
			log.Printf("[mbtichatd] record user entry: %v", err)
		}
		if err := h.conversations.Append(ctx, req.SessionID, mbtichat.PersonaEntry(t, result.Text, 0)); err != nil {
			log.Printf("[mbtichatd] record persona entry: %v", err)
		}
	}

	return c.JSON(http.StatusOK, chatResponse{Type: req.Type, Text: result.Text, Provider: result.Provider})
}

type multiRequest struct {
	Query string   `json:"query"`
	Types []string `json:"types"`
	Count int      `json:"count"`
}

func (h *handler) multi(c echo.Context) error {
	var req multiRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if req.Count == 0 {
		req.Count = 3
	}

	include := make([]mbtichat.PersonalityType, 0, len(req.Types))
	for _, t := range req.Types {
		include = append(include, mbtichat.PersonalityType(t))
	}

	replies := h.composer.MultiRespond(c.Request().Context(), req.Query, include, req.Count)
	return c.JSON(http.StatusOK, map[string]interface{}{"replies": replies})
}

type discussRequest struct {
	Topic        string   `json:"topic"`
	Participants []string `json:"participants"`
	Rounds       int      `json:"rounds"`
}

func (h *handler) discuss(c echo.Context) error {
	var req discussRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Topic == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "topic is required")
	}
	if req.Rounds == 0 {
		req.Rounds = 3
	}

	participants := make([]mbtichat.PersonalityType, 0, len(req.Participants))
	for _, p := range req.Participants {
		participants = append(participants, mbtichat.PersonalityType(p))
	}

	entries := h.composer.Discuss(c.Request().Context(), req.Topic, participants, req.Rounds)
	return c.JSON(http.StatusOK, map[string]interface{}{"entries": entries})
}

func (h *handler) history(c echo.Context) error {
	entries, err := h.conversations.History(c.Request().Context(), c.Param("session"), 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "read history failed")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"entries": entries})
}
