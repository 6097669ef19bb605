package notification

import (
	"strconv"

	"go-elms/internal/features/permission"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	service NotificationService
	hub     *Hub
}

func NewNotificationController(service NotificationService, hub *Hub) *NotificationController {
	return &NotificationController{
		service: service,
		hub:     hub,
	}
}

func userID(ctx *fiber.Ctx) (string, error) {
	actor, ok := permission.ActorFromContext(ctx.UserContext())
	if !ok || actor.ID == "" {
		return "", fiber.ErrUnauthorized
	}
	return actor.ID, nil
}

// List godoc
// @Summary      List my notifications
// @Tags         notifications
// @Produce      json
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Router       /api/notifications [get]
func (c *NotificationController) List(ctx *fiber.Ctx) error {
	uid, err := userID(ctx)
	if err != nil {
		return err
	}

	page, _ := strconv.ParseInt(ctx.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(ctx.Query("limit", "10"), 10, 64)

	notifications, total, err := c.service.GetUserNotifications(ctx.UserContext(), uid, page, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"data":  notifications,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUnreadCount godoc
// @Summary      Count my unread notifications
// @Tags         notifications
// @Produce      json
// @Router       /api/notifications/unread-count [get]
func (c *NotificationController) GetUnreadCount(ctx *fiber.Ctx) error {
	uid, err := userID(ctx)
	if err != nil {
		return err
	}

	count, err := c.service.GetUnreadCount(ctx.UserContext(), uid)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"count": count})
}

// MarkAsRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Param        id   path  string  true  "Notification ID"
// @Router       /api/notifications/{id}/read [put]
func (c *NotificationController) MarkAsRead(ctx *fiber.Ctx) error {
	uid, err := userID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.MarkAsRead(ctx.UserContext(), ctx.Params("id"), uid); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"status": "success"})
}

// MarkAllAsRead godoc
// @Summary      Mark all my notifications as read
// @Tags         notifications
// @Router       /api/notifications/mark-all-read [post]
func (c *NotificationController) MarkAllAsRead(ctx *fiber.Ctx) error {
	uid, err := userID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.MarkAllAsRead(ctx.UserContext(), uid); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"status": "success"})
}

// wsActorKey carries the authenticated actor across the websocket upgrade.
const wsActorKey = "ws_actor"

// UpgradeWebSocket admits authenticated upgrade requests only.
func (c *NotificationController) UpgradeWebSocket(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	actor, ok := permission.ActorFromContext(ctx.UserContext())
	if !ok || actor.ID == "" {
		return fiber.ErrUnauthorized
	}
	ctx.Locals(wsActorKey, actor)
	return ctx.Next()
}

// HandleWebSocket keeps the connection registered with the hub until the
// client goes away. Incoming messages are ignored.
func (c *NotificationController) HandleWebSocket(conn *websocket.Conn) {
	actor, ok := conn.Locals(wsActorKey).(permission.Actor)
	if !ok {
		_ = conn.Close()
		return
	}
	c.hub.Register(conn, actor)
	defer c.hub.Unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
