package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aretw0/qualifica"
	"github.com/aretw0/qualifica/internal/scoring"
	"github.com/aretw0/qualifica/pkg/catalog"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/ports"
	"github.com/aretw0/qualifica/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// CatalogURIPrefix is the resource URI prefix of a tenant catalog.
const CatalogURIPrefix = "qualifica://catalog/"

// Conversations is the stateful side exposed as tools, implemented by qualifier.Service.
type Conversations interface {
	Answer(ctx context.Context, tenantID, conversationID, rawAnswer string) (domain.Result, error)
	Session(ctx context.Context, tenantID, conversationID string) (*domain.Session, error)
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine        ports.Advancer
	conversations Conversations
	catalogs      ports.CatalogSource
	mcpServer     *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithConversations registers the answer and get_session tools.
func WithConversations(c Conversations) Option {
	return func(s *Server) {
		s.conversations = c
	}
}

// WithCatalogs exposes tenant catalogs as the qualifica://catalog/{tenantId} resource.
func WithCatalogs(c ports.CatalogSource) Option {
	return func(s *Server) {
		s.catalogs = c
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Advancer, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		mcpServer: server.NewMCPServer("qualifica-mcp", strings.TrimSpace(qualifica.Version),
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, true),
			server.WithRecovery(),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on Stdin/Stdout until ctx is done.
func (s *Server) ServeStdio(ctx context.Context) error {
	err := server.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Grade one answer against a catalog and return the next prompt or the final classification. Stateless: pass the prior session back on every call."),
		mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant that owns the catalog")),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation id, e.g. a WhatsApp JID")),
		mcp.WithString("raw_answer", mcp.Description("The end user's answer; empty restarts the conversation")),
		mcp.WithString("catalog", mcp.Required(), mcp.Description("JSON array of questions (order, text, hotCriteria, warmCriteria, coldCriteria, weight)")),
		mcp.WithString("prior_session", mcp.Description("JSON object {currentStep, scoreTotal, status} returned by the previous call")),
	), s.handleAdvance)

	if s.conversations == nil {
		return
	}

	s.mcpServer.AddTool(mcp.NewTool("answer",
		mcp.WithDescription("Record the next answer of a stored conversation."),
		mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant that owns the catalog")),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation id")),
		mcp.WithString("answer", mcp.Description("The end user's answer; empty restarts the conversation")),
	), s.handleAnswer)

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Return the stored progress of a conversation."),
		mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant id")),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation id")),
	), s.handleGetSession)
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := domain.Request{
		TenantID:       request.GetString("tenant_id", ""),
		ConversationID: request.GetString("conversation_id", ""),
	}

	answer, err := runner.SanitizeInput(request.GetString("raw_answer", ""))
	if err != nil {
		slog.Warn("MCP advance: Input rejected", "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("input rejected: %v", err)), nil
	}
	req.RawAnswer = answer

	var rows []map[string]any
	if raw := request.GetString("catalog", ""); raw != "" {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&rows); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("catalog must be a JSON array: %v", err)), nil
		}
	}
	if req.Catalog, err = catalog.Decode(rows); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid catalog: %v", err)), nil
	}

	if raw := request.GetString("prior_session", ""); raw != "" {
		var prior domain.Session
		if err := json.Unmarshal([]byte(raw), &prior); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("prior_session must be a JSON object: %v", err)), nil
		}
		req.PriorSession = &prior
	}

	return resultJSON(s.engine.Advance(ctx, req))
}

func (s *Server) handleAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.conversations.Answer(ctx,
		request.GetString("tenant_id", ""),
		request.GetString("conversation_id", ""),
		request.GetString("answer", ""),
	)
	if err != nil {
		slog.Error("MCP answer failed", "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("answer failed: %v", err)), nil
	}
	return resultJSON(res)
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.conversations.Session(ctx,
		request.GetString("tenant_id", ""),
		request.GetString("conversation_id", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get_session failed: %v", err)), nil
	}
	b, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

// resultJSON returns the engine result as text; validation results are flagged as tool errors.
func resultJSON(res domain.Result) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	out := mcp.NewToolResultText(string(b))
	out.IsError = !res.Persistable()
	return out, nil
}

func (s *Server) registerResources() {
	if s.catalogs == nil {
		return
	}

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(CatalogURIPrefix+"{tenantId}", "Tenant Catalog",
		mcp.WithTemplateDescription("Qualification questions of a tenant, in presentation order"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.handleReadCatalog)
}

func (s *Server) handleReadCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tenantID := strings.TrimPrefix(request.Params.URI, CatalogURIPrefix)
	if tenantID == "" || tenantID == request.Params.URI {
		return nil, fmt.Errorf("invalid catalog uri %q", request.Params.URI)
	}

	c, err := s.catalogs.Catalog(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	b, err := json.Marshal(scoring.SortCatalog(c))
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
