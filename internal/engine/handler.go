package engine

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"dynaseed/internal/config"
	"dynaseed/internal/dynamics"
	"dynaseed/internal/metadata"
)

// Message is the request envelope the popup sends. Exactly one action per
// message; operation-level failures come back as strings in the response
// field, matching what the popup renders.
type Message struct {
	Action       string `json:"action"`
	URL          string `json:"url"`
	Entity       string `json:"entity"`
	Quantity     int    `json:"quantity"`
	RequiredOnly bool   `json:"requiredOnly"`
	Form         string `json:"form"`
}

type Handler struct {
	cfg        *config.Config
	newGateway func(environmentURL string) Gateway
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{
		cfg: cfg,
		newGateway: func(environmentURL string) Gateway {
			return dynamics.NewClient(environmentURL, cfg.Dynamics.APIPath, cfg.Dynamics.Token,
				&http.Client{Timeout: cfg.HTTP.Timeout()})
		},
	}
}

// Message handles POST /api/message, dispatching on the action field.
func (h *Handler) Message(c *fiber.Ctx) error {
	var msg Message
	if err := c.BodyParser(&msg); err != nil {
		return respondError(c, InvalidPayloadError())
	}

	environmentURL := msg.URL
	if environmentURL == "" {
		environmentURL = h.cfg.Dynamics.URL
	}
	if environmentURL == "" {
		return respondError(c, MissingEnvironmentError())
	}

	seeder := NewSeeder(h.newGateway(environmentURL))

	switch msg.Action {
	case "getForms":
		return h.getForms(c, seeder, msg)
	case "addRecords":
		return h.addRecords(c, seeder, msg)
	default:
		return respondError(c, UnknownActionError(msg.Action))
	}
}

func (h *Handler) getForms(c *fiber.Ctx, seeder *Seeder, msg Message) error {
	forms, err := seeder.Forms(c.Context(), msg.Entity)
	if err != nil {
		return c.JSON(fiber.Map{"response": fmt.Sprintf("Unable to get forms: %v", err)})
	}
	if forms == nil {
		forms = []metadata.Form{}
	}
	return c.JSON(fiber.Map{"response": forms})
}

func (h *Handler) addRecords(c *fiber.Ctx, seeder *Seeder, msg Message) error {
	if msg.Quantity > h.cfg.Seeder.MaxQuantity {
		return respondError(c, QuantityTooLargeError(h.cfg.Seeder.MaxQuantity))
	}

	var policy metadata.SelectionPolicy
	switch {
	case msg.RequiredOnly:
		policy = metadata.RequiredOnlyPolicy()
	case msg.Form != "":
		policy = metadata.FormFieldsPolicy(msg.Form)
	default:
		return c.JSON(fiber.Map{"response": "Error: No form was found. Pick one from the list."})
	}

	req := Request{
		Entity:   msg.Entity,
		Quantity: msg.Quantity,
		Policy:   policy,
	}

	results := make([]fiber.Map, 0, req.Quantity)
	err := seeder.Run(c.Context(), req, func(r RecordResult) {
		results = append(results, fiber.Map{"response": r.Response()})
	})
	if err != nil {
		return c.JSON(fiber.Map{"response": fmt.Sprintf("Unable to add records: %v", err)})
	}
	return c.JSON(fiber.Map{"response": results})
}

func respondError(c *fiber.Ctx, appErr *AppError) error {
	return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
}
