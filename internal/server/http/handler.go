package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"eco/internal/opening"
	"eco/internal/scrape"
	"eco/internal/server/core"
	"eco/internal/server/service"

	middleware "eco/internal/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the service
type HTTPHandler struct {
	svc *service.Service
}

func NewHTTPHandler(svc *service.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func NewFiberApp(svc *service.Service, devMode bool) *fiber.App {
	// Create handler
	h := NewHTTPHandler(svc)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	// API v1 routes
	api := app.Group("/api/v1")
	api.Get("/health", h.Health)

	// Auth routes with specific rate limiting
	auth := api.Group("/auth")

	// Login: 5 req/min per IP
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: "5 login attempts per minute allowed",
			})
		},
	}), h.LoginHandler)

	// Create token validator closure
	validateToken := svc.ValidateToken

	// Lookup routes with standard rate limiting
	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	// Content-Type validation for POST and PUT requests
	api.Use(contentTypeValidator)

	// Middleware validation for sanitization
	api.Use(validationMiddleware)

	// Catalog lookup routes
	api.Post("/classify", h.Classify)
	api.Get("/openings", h.SearchOpenings)
	api.Get("/openings/:code", h.GetOpening)
	api.Get("/catalog", h.GetCatalog)

	// Refresh routes (require auth)
	api.Post("/refresh", middleware.AuthRequired(validateToken), h.StartRefresh)
	api.Get("/refresh/:runId", middleware.AuthRequired(validateToken), h.GetRun)
	api.Get("/refresh/:runId/log", middleware.AuthRequired(validateToken), h.GetFetchLog)

	return app
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		// Map HTTP status to error codes
		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrOpeningNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// Health check endpoint with storage status and catalog size
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
		"catalog": h.svc.CatalogSize(),
	})
}

// Classify matches raw move text against the catalog
func (h *HTTPHandler) Classify(c *fiber.Ctx) error {
	// Ensure middleware validation ran
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		})
	}

	// Retrieve validated parsed body
	validatedBody := c.Locals("validatedBody")
	if validatedBody == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrInternalError,
		})
	}
	req := *(validatedBody.(*core.ClassifyRequest))

	resp, err := h.svc.Classify(req.Moves)
	if err != nil {
		if errors.Is(err, opening.ErrNoMatch) {
			return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
				Error: "no matching opening",
				Code:  core.ErrNoMatch,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "classification failed",
			Code:  core.ErrInternalError,
		})
	}

	return c.JSON(resp)
}

// SearchOpenings filters the catalog by code and/or name substring
func (h *HTTPHandler) SearchOpenings(c *fiber.Ctx) error {
	code := c.Query("code")
	if code != "" && !scrape.IsCode(code) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid ECO code",
			Code:    core.ErrInvalidRequest,
			Details: "code must be in the range A00..E99",
		})
	}

	limit, err := strconv.Atoi(c.Query("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}

	openings := h.svc.SearchOpenings(code, c.Query("name"), limit)
	if openings == nil {
		openings = []core.OpeningResponse{}
	}

	return c.JSON(core.OpeningListResponse{
		Count:    len(openings),
		Openings: openings,
	})
}

// GetOpening returns every catalog entry under one ECO code
func (h *HTTPHandler) GetOpening(c *fiber.Ctx) error {
	code := c.Params("code")

	// Validate ECO code format
	if !scrape.IsCode(code) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid ECO code",
			Code:    core.ErrInvalidRequest,
			Details: "code must be in the range A00..E99",
		})
	}

	openings := h.svc.OpeningsByCode(code)
	if len(openings) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "no openings for code",
			Code:  core.ErrOpeningNotFound,
		})
	}

	return c.JSON(core.OpeningListResponse{
		Count:    len(openings),
		Openings: openings,
	})
}

// GetCatalog returns catalog statistics
func (h *HTTPHandler) GetCatalog(c *fiber.Ctx) error {
	return c.JSON(h.svc.CatalogStats())
}

// StartRefresh launches a background catalog rebuild
func (h *HTTPHandler) StartRefresh(c *fiber.Ctx) error {
	run, err := h.svc.StartRefresh()
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshInProgress):
			return c.Status(fiber.StatusConflict).JSON(core.ErrorResponse{
				Error: "refresh already in progress",
				Code:  core.ErrRefreshInProgress,
			})
		case errors.Is(err, service.ErrStorageDisabled):
			return c.Status(fiber.StatusServiceUnavailable).JSON(core.ErrorResponse{
				Error:   "storage disabled",
				Code:    core.ErrStorageDisabled,
				Details: "refresh requires a database; start the server with -db-path",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "failed to start refresh",
			Code:  core.ErrInternalError,
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(run)
}

// GetRun returns the status of a refresh run
func (h *HTTPHandler) GetRun(c *fiber.Ctx) error {
	runID := c.Params("runId")

	// Validate UUID format
	if !isValidUUID(runID) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid run ID format",
			Code:    core.ErrInvalidRequest,
			Details: "run ID must be a valid UUID",
		})
	}

	run, err := h.svc.GetRun(runID)
	if err != nil {
		return h.runError(c, err)
	}

	return c.JSON(run)
}

// GetFetchLog returns the per-page fetch log of a refresh run
func (h *HTTPHandler) GetFetchLog(c *fiber.Ctx) error {
	runID := c.Params("runId")

	// Validate UUID format
	if !isValidUUID(runID) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid run ID format",
			Code:    core.ErrInvalidRequest,
			Details: "run ID must be a valid UUID",
		})
	}

	limit, err := strconv.Atoi(c.Query("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}

	fetchLog, err := h.svc.GetFetchLog(runID, limit)
	if err != nil {
		return h.runError(c, err)
	}

	return c.JSON(fetchLog)
}

func (h *HTTPHandler) runError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "run not found",
			Code:  core.ErrRunNotFound,
		})
	case errors.Is(err, service.ErrStorageDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(core.ErrorResponse{
			Error: "storage disabled",
			Code:  core.ErrStorageDisabled,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	})
}
