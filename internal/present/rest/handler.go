package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	rideready "github.com/rideready/rideready"
	"github.com/rideready/rideready/internal/domain"
	"github.com/rideready/rideready/internal/present/rest/presenter"
	"github.com/rideready/rideready/internal/service"
	"github.com/rideready/rideready/internal/usecase"
	"github.com/rideready/rideready/policy"
)

type Handler struct {
	config domain.Config
	gear   *usecase.GearUsecase
	rider  *usecase.RiderUsecase
	signal *service.SignalService
}

func NewHandler(
	config domain.Config,
	gear *usecase.GearUsecase,
	rider *usecase.RiderUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		config: config,
		gear:   gear,
		rider:  rider,
		signal: signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/gear", h.handleListGear)
	e.POST("/api/v1/gear", h.handleCreateGear)
	e.DELETE("/api/v1/gear/:id", h.handleDeleteGear)
	e.GET("/api/v1/riders", h.handleListRiders)
	e.GET("/api/v1/public/gear", h.handleListPublicGear)
	e.PUT("/api/v1/storage/media/:name", h.handleUpload)
	e.POST("/api/v1/storage/sign", h.handleSign)
	e.GET("/media/:identity/:name", h.handleMedia)
	e.GET("/realtime", h.handleRealtime)
}

// requesterFromContext assembles the policy view of the caller from what
// the auth middleware stored.
func requesterFromContext(c echo.Context) policy.RequestContext {
	ctx := c.Request().Context()

	requester := policy.RequestContext{}
	if id, ok := ctx.Value(domain.RequesterIdCtxKey).(string); ok {
		requester.Requester = id
	}
	if groups, ok := ctx.Value(domain.RequesterGroupsCtxKey).([]string); ok {
		requester.Groups = groups
	}
	if verified, ok := ctx.Value(domain.APIKeyVerifiedCtxKey).(bool); ok {
		requester.APIKey = verified
	}
	return requester
}

func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		return presenter.Forbidden(c, err.Error())
	default:
		var validation domain.ValidationError
		if errors.As(err, &validation) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
}

func (h *Handler) handleListGear(c echo.Context) error {
	ctx := c.Request().Context()

	requester := requesterFromContext(c)
	if requester.Requester == "" {
		return presenter.Unauthorized(c, "authentication required")
	}

	gear, err := h.gear.List(ctx, requester, c.QueryParam("owner"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, gear)
}

func (h *Handler) handleCreateGear(c echo.Context) error {
	ctx := c.Request().Context()

	requester := requesterFromContext(c)
	if requester.Requester == "" {
		return presenter.Unauthorized(c, "authentication required")
	}

	var input rideready.GearInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.gear.Create(ctx, requester, input)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleDeleteGear(c echo.Context) error {
	ctx := c.Request().Context()

	requester := requesterFromContext(c)
	if requester.Requester == "" {
		return presenter.Unauthorized(c, "authentication required")
	}

	err := h.gear.Delete(ctx, requester, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleListRiders(c echo.Context) error {
	ctx := c.Request().Context()

	if requesterFromContext(c).Requester == "" {
		return presenter.Unauthorized(c, "authentication required")
	}

	riders, err := h.rider.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, riders)
}

// handleListPublicGear is the read-only list for api-key clients.
func (h *Handler) handleListPublicGear(c echo.Context) error {
	ctx := c.Request().Context()

	requester := requesterFromContext(c)
	if !requester.APIKey {
		return presenter.Unauthorized(c, "api key required")
	}

	gear, err := h.gear.List(ctx, requester, "")
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, gear)
}

func (h *Handler) handleUpload(c echo.Context) error {
	ctx := c.Request().Context()

	requester := requesterFromContext(c)
	if requester.Requester == "" {
		return presenter.Unauthorized(c, "authentication required")
	}

	etag, err := h.gear.Upload(ctx, requester, c.Param("name"), c.Request().Body)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"etag": etag})
}

type signRequest struct {
	Path string `json:"path"`
}

func (h *Handler) handleSign(c echo.Context) error {
	ctx := c.Request().Context()

	requester := requesterFromContext(c)
	if requester.Requester == "" {
		return presenter.Unauthorized(c, "authentication required")
	}

	var req signRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	signed, err := h.gear.Sign(ctx, requester, req.Path)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, signed)
}

// handleMedia serves object bytes for a valid signed URL. The signature
// replaces session auth here.
func (h *Handler) handleMedia(c echo.Context) error {
	ctx := c.Request().Context()

	path := rideready.ComposeMediaPath(c.Param("identity"), c.Param("name"))
	exp := c.QueryParam("exp")
	sig := c.QueryParam("sig")

	rc, _, err := h.gear.Fetch(ctx, path, exp, sig)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "object not found")
		}
		return presenter.Forbidden(c, "invalid or expired url")
	}
	defer rc.Close()

	return c.Stream(http.StatusOK, "application/octet-stream", rc)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx := c.Request().Context()

	output := make(chan rideready.Event)
	go func() {
		if err := h.signal.Subscribe(ctx, output); err != nil && !errors.Is(err, context.Canceled) {
			slog.DebugContext(
				ctx, "Event subscription ended",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
		}
		close(output)
	}()

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			// the read loop only notices disconnects and heartbeats
			if _, _, err := ws.ReadMessage(); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event, ok := <-output:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
