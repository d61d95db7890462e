package uiapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
)

// NewServer builds the fiber app exposing the command surface and
// position/log websocket stream. send delivers every command straight to
// the operation controller's channel - the UI never talks to the motor
// loop or the endstop monitor directly.
func NewServer(send *bus.Sender, hub *Hub) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "gogrind control surface"})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
	}))

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ui_clients": hub.ClientCount()})
	})

	app.Post("/api/jog", func(c *fiber.Ctx) error {
		var req struct {
			Axis     string  `json:"axis"`
			Distance float64 `json:"distance_in"`
			Speed    float64 `json:"speed_ips"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		a, err := parseAxis(req.Axis)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		send.Send(bus.MoveAxisRelative{Axis: a, DistanceIn: req.Distance, SpeedIPS: req.Speed})
		return c.JSON(fiber.Map{"status": "queued"})
	})

	app.Post("/api/goto", func(c *fiber.Ctx) error {
		var req struct {
			Axis     string  `json:"axis"`
			Position float64 `json:"position_in"`
			Speed    float64 `json:"speed_ips"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		a, err := parseAxis(req.Axis)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		send.Send(bus.GoToPosition{Axis: a, PositionIn: req.Position, SpeedIPS: req.Speed})
		return c.JSON(fiber.Map{"status": "queued"})
	})

	app.Post("/api/spindle", func(c *fiber.Ctx) error {
		var req struct {
			On bool `json:"on"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		send.Send(bus.SpindleControl{On: req.On})
		return c.JSON(fiber.Map{"status": "queued"})
	})

	app.Post("/api/home", func(c *fiber.Ctx) error {
		send.Send(bus.StartHoming{})
		return c.JSON(fiber.Map{"status": "queued"})
	})

	app.Post("/api/cut", func(c *fiber.Ctx) error {
		var params axis.CutParameters
		if err := c.BodyParser(&params); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		send.Send(bus.StartSurfaceGrinderCut{Params: params})
		return c.JSON(fiber.Map{"status": "queued"})
	})

	app.Post("/api/stop", func(c *fiber.Ctx) error {
		send.Send(bus.Stop{})
		return c.JSON(fiber.Map{"status": "queued"})
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		hub.Serve(c)
	}))

	return app
}

func parseAxis(name string) (axis.Axis, error) {
	switch strings.ToLower(name) {
	case "x":
		return axis.X, nil
	case "y":
		return axis.Y, nil
	case "z":
		return axis.Z, nil
	default:
		return 0, fiber.NewError(fiber.StatusBadRequest, "unknown axis "+name)
	}
}
