package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/dudhwala/milkbook/internal/domain"
	"github.com/dudhwala/milkbook/internal/service"
)

type Options struct {
	Tokens *service.TokenIssuer
	// EnforceAuth gates the token middleware. Off by default to match the
	// legacy client, which holds identity on its side.
	EnforceAuth bool
}

func Register(app *fiber.App, svcs *service.Services, opts Options) {
	guarded := opts.EnforceAuth && opts.Tokens != nil
	ownerOnly := passthrough
	selfOrOwner := passthrough
	if guarded {
		ownerOnly = RequireRole(opts.Tokens, domain.RoleOwner)
		selfOrOwner = RequireSelfOrOwner(opts.Tokens)
	}

	api := app.Group("/api")

	api.Post("/login", func(c *fiber.Ctx) error {
		var req service.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request"})
		}
		result, err := svcs.Accounts.Login(req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	})

	api.Post("/logout", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Logged out"})
	})

	api.Get("/customers", ownerOnly, func(c *fiber.Ctx) error {
		customers, err := svcs.Accounts.ListWithStats()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(customers)
	})

	api.Post("/customers", ownerOnly, func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Rate     int64  `json:"rate"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request"})
		}
		acct, err := svcs.Accounts.CreateCustomer(req.Username, req.Password, req.Rate)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(acct)
	})

	api.Delete("/customers/:id", ownerOnly, func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid id"})
		}
		if err := svcs.Accounts.DeleteCustomer(int64(id)); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Get("/customers/:id", selfOrOwner, func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid id"})
		}
		dashboard, err := svcs.Accounts.Dashboard(int64(id))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(dashboard)
	})

	api.Get("/customers/:id/statement", selfOrOwner, func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid id"})
		}
		url, err := svcs.Statements.MonthlyStatement(int64(id), c.Query("month"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	})

	api.Get("/customers/:id/statements", selfOrOwner, func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid id"})
		}
		keys, err := svcs.Statements.History(int64(id))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"statements": keys})
	})

	api.Post("/milk", ownerOnly, func(c *fiber.Ctx) error {
		var req struct {
			UserID   int64   `json:"userId"`
			Quantity float64 `json:"quantity"`
			Date     string  `json:"date"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request"})
		}
		var date *domain.Date
		if req.Date != "" {
			d, err := domain.ParseDate(req.Date)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid date, want YYYY-MM-DD"})
			}
			date = &d
		}
		rec, err := svcs.Deliveries.Add(req.UserID, req.Quantity, date)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	})
}

func passthrough(c *fiber.Ctx) error { return c.Next() }

// fail maps the domain error taxonomy onto status codes. Unexpected errors
// are logged and surfaced as a bare 500.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case domain.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, service.ErrCloudDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}
