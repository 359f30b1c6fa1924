// Package server exposes the orchestrator over HTTP. The API is a single
// turn endpoint plus health and banner routes; the client carries the
// workflow state between calls, so the server holds nothing per session
// beyond the in-flight turn lock.
package server

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/civicgrant/grantflow/core"
	"github.com/civicgrant/grantflow/logging"
	"github.com/civicgrant/grantflow/orchestrator"
	"github.com/civicgrant/grantflow/state"
)

// Options configures the HTTP server.
type Options struct {
	BodyLimit int
	Logger    logging.Logger
}

// Server wraps the fiber application and its route handlers.
type Server struct {
	app      *fiber.App
	orch     *orchestrator.Orchestrator
	logger   logging.Logger
	validate *validator.Validate
}

// TurnRequest is the wire shape of one user turn. State is the client's
// last-known workflow snapshot; History carries the prior conversation.
type TurnRequest struct {
	SessionID string               `json:"session_id" validate:"required"`
	Message   string               `json:"message"`
	State     *state.WorkflowState `json:"state"`
	History   []HistoryMessage     `json:"history" validate:"dive"`
}

// HistoryMessage is one prior conversation message.
type HistoryMessage struct {
	Role string `json:"role" validate:"required,oneof=user assistant"`
	Text string `json:"text"`
}

// TurnResponse carries the filtered event stream and the reconciled state
// the client must persist until the next turn.
type TurnResponse struct {
	Events []core.Event         `json:"events"`
	State  *state.WorkflowState `json:"state"`
}

// New builds the server around an orchestrator.
func New(orch *orchestrator.Orchestrator, optFns ...func(o *Options)) *Server {
	opts := Options{
		BodyLimit: 4 * 1024 * 1024,
		Logger:    logging.NewDefaultSlogLogger(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	app := fiber.New(fiber.Config{
		AppName:   "grantflow",
		BodyLimit: opts.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	s := &Server{
		app:      app,
		orch:     orch,
		logger:   opts.Logger,
		validate: validator.New(),
	}

	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)
	app.Post("/turn", s.handleTurn)

	return s
}

// App returns the underlying fiber application, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen starts serving on addr and blocks.
func (s *Server) Listen(addr string) error {
	s.logger.Info("server.listen", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":     "grantflow",
		"description": "Grant assistant conversation backend",
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleTurn(c *fiber.Ctx) error {
	var req TurnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := s.orch.Turn(c.Context(), orchestrator.Request{
		SessionID: req.SessionID,
		Message:   req.Message,
		State:     req.State,
		History:   toContents(req.History),
	})
	if err != nil {
		s.logger.Error("server.turn.error", "session", req.SessionID, "error", err.Error())
		return fiber.NewError(fiber.StatusInternalServerError, "turn processing failed")
	}

	return c.JSON(TurnResponse{Events: res.Events, State: res.State})
}

func toContents(history []HistoryMessage) []core.Content {
	if len(history) == 0 {
		return nil
	}

	out := make([]core.Content, 0, len(history))
	for _, m := range history {
		out = append(out, core.Content{
			Role:  m.Role,
			Parts: []core.Part{core.TextPart{Text: m.Text}},
		})
	}

	return out
}
