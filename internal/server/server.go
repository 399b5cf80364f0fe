// Package server exposes the companion over HTTP with gin.
package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/evermem/evermem-go/pkg/companion"
	"github.com/evermem/evermem-go/pkg/core"
)

// Server is the HTTP front end over a companion client.
type Server struct {
	client    *companion.Client
	assistant *AssistantManager
	engine    *gin.Engine
	addr      string
}

// Options tunes server construction.
type Options struct {
	// AssistantBinary is the voice assistant executable launched by the
	// assistant endpoints. Defaults to "evermem-voice" on PATH.
	AssistantBinary string
}

// New creates a server over the given client.
//
// Parameters:
//   - client: The companion client serving all requests
//   - cfg: Server listen configuration
//   - opts: Optional tuning; may be nil
//
// Returns the server, or an error when middleware setup fails.
func New(client *companion.Client, cfg core.ServerConfig, opts *Options) (*Server, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	binary := "evermem-voice"
	if opts != nil && opts.AssistantBinary != "" {
		binary = opts.AssistantBinary
	}

	s := &Server{
		client:    client,
		assistant: NewAssistantManager(binary),
		addr:      cfg.Addr(),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(node), Logger)
	s.registerRoutes(engine)
	s.engine = engine

	return s, nil
}

// Engine returns the underlying gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts serving and blocks until the listener fails.
func (s *Server) Run() error {
	return s.engine.Run(s.addr)
}

func (s *Server) registerRoutes(engine *gin.Engine) {
	engine.GET("/", s.handleHealth)

	engine.POST("/profiles", s.handleCreateProfile)
	engine.GET("/profiles", s.handleListProfiles)
	engine.DELETE("/profiles/:profile_id", s.handleDeleteProfile)

	engine.POST("/ask", s.handleAsk)
	engine.POST("/save-user-fact", s.handleSaveUserFact)
	engine.POST("/search-memory", s.handleSearchMemory)

	engine.POST("/upload-memory", s.handleUploadMemory)
	engine.GET("/memories/:profile_id", s.handleListMemories)
	engine.GET("/latest-memory-summary/:profile_id", s.handleLatestMemorySummary)

	engine.GET("/conversation/:profile_id", s.handleGetConversation)
	engine.DELETE("/conversation/:profile_id", s.handleClearConversation)

	engine.POST("/voice-chat-once", s.handleVoiceChatOnce)
	engine.POST("/assistant/start", s.handleAssistantStart)
	engine.POST("/assistant/stop", s.handleAssistantStop)
}
