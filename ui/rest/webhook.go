package rest

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	domainProvider "github.com/wadesk/wadesk/domains/provider"
	domainWebhook "github.com/wadesk/wadesk/domains/webhook"
	"github.com/wadesk/wadesk/pkg/utils"
)

type Webhook struct {
	Service         domainWebhook.IWebhookUsecase
	MetaVerifyToken string
}

// InitRestWebhook mounts the provider-facing endpoints. These are public:
// upstream providers call them directly, so there is no agent identity here.
func InitRestWebhook(app fiber.Router, service domainWebhook.IWebhookUsecase, metaVerifyToken string) Webhook {
	rest := Webhook{Service: service, MetaVerifyToken: metaVerifyToken}

	app.Post("/webhook/twilio/incoming", rest.HandleTwilio)
	app.Post("/webhook/twilio/status", rest.HandleTwilio)
	app.Get("/webhook/meta", rest.VerifyMeta)
	app.Post("/webhook/meta", rest.HandleMeta)

	return rest
}

// VerifyMeta answers the Cloud API subscription handshake: echo the challenge
// when the verify token matches, 403 otherwise.
func (controller *Webhook) VerifyMeta(c *fiber.Ctx) error {
	mode := firstQuery(c, "hub.mode", "hub_mode")
	token := firstQuery(c, "hub.verify_token", "hub_verify_token")
	challenge := firstQuery(c, "hub.challenge", "hub_challenge")

	if mode == "subscribe" && controller.MetaVerifyToken != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(controller.MetaVerifyToken)) == 1 {
		logrus.Info("Meta webhook verified")
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	logrus.WithFields(logrus.Fields{"mode": mode}).Warn("Meta webhook verification failed")
	return c.Status(fiber.StatusForbidden).SendString("Forbidden")
}

func (controller *Webhook) HandleTwilio(c *fiber.Ctx) error {
	return controller.process(c, domainProvider.KindTwilio)
}

func (controller *Webhook) HandleMeta(c *fiber.Ctx) error {
	return controller.process(c, domainProvider.KindMeta)
}

// process runs the pipeline and answers 200 even on partial internal failure;
// only payloads the adapter cannot understand at all get a 4xx, so provider
// retries stay limited to genuinely malformed requests.
func (controller *Webhook) process(c *fiber.Ctx, kind domainProvider.Kind) error {
	summary, err := controller.Service.Process(c.UserContext(), kind, c.Body())
	if err != nil {
		return respondError(c, err)
	}

	if summary.Failed > 0 {
		logrus.WithFields(logrus.Fields{
			"provider": kind,
			"failed":   summary.Failed,
			"stored":   summary.Stored,
		}).Warn("Webhook processed with partial failures")
	}

	return c.Status(fiber.StatusOK).JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Event received",
		Results: summary,
	})
}

func firstQuery(c *fiber.Ctx, keys ...string) string {
	for _, key := range keys {
		if v := c.Query(key); v != "" {
			return v
		}
	}
	return ""
}
