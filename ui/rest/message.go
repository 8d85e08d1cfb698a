package rest

import (
	"github.com/gofiber/fiber/v2"
	domainChat "github.com/wadesk/wadesk/domains/chat"
	domainMessage "github.com/wadesk/wadesk/domains/message"
	"github.com/wadesk/wadesk/pkg/utils"
)

type Message struct {
	Service     domainMessage.IMessageUsecase
	ChatService domainChat.IChatUsecase
}

func InitRestMessage(app fiber.Router, service domainMessage.IMessageUsecase, chatService domainChat.IChatUsecase) Message {
	rest := Message{Service: service, ChatService: chatService}

	group := app.Group("/api")
	group.Get("/conversations", rest.ListConversations)
	group.Get("/conversations/:customer_id", rest.GetConversation)
	group.Post("/conversations/:customer_id/messages", rest.SendMessage)
	group.Post("/conversations/:customer_id/read", rest.MarkConversationRead)
	group.Post("/messages/:message_id/read", rest.MarkAsRead)

	return rest
}

func (controller *Message) ListConversations(c *fiber.Ctx) error {
	agent, err := agentID(c)
	if err != nil {
		return respondError(c, err)
	}

	conversations, err := controller.ChatService.ListConversations(c.UserContext(), agent)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Conversations retrieved",
		Results: conversations,
	})
}

func (controller *Message) GetConversation(c *fiber.Ctx) error {
	agent, err := agentID(c)
	if err != nil {
		return respondError(c, err)
	}

	detail, err := controller.ChatService.GetConversation(c.UserContext(), c.Params("customer_id"), agent)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Conversation retrieved",
		Results: detail,
	})
}

func (controller *Message) SendMessage(c *fiber.Ctx) error {
	agent, err := agentID(c)
	if err != nil {
		return respondError(c, err)
	}

	var request domainMessage.SendMessageRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "VALIDATION_ERROR", Message: err.Error()})
	}
	request.CustomerID = c.Params("customer_id")
	request.AgentID = agent

	response, err := controller.Service.Send(c.UserContext(), request)
	if err != nil {
		return respondError(c, err)
	}

	// A provider-side failure is soft: the message exists locally either way.
	msg := "Message sent"
	if !response.Delivered {
		msg = "Message stored; provider delivery failed"
	}
	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: msg,
		Results: response,
	})
}

func (controller *Message) MarkAsRead(c *fiber.Ctx) error {
	agent, err := agentID(c)
	if err != nil {
		return respondError(c, err)
	}

	msg, err := controller.Service.MarkRead(c.UserContext(), c.Params("message_id"), agent)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Message marked as read",
		Results: msg,
	})
}

func (controller *Message) MarkConversationRead(c *fiber.Ctx) error {
	agent, err := agentID(c)
	if err != nil {
		return respondError(c, err)
	}

	updated, err := controller.Service.MarkConversationRead(c.UserContext(), c.Params("customer_id"), agent)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Conversation marked as read",
		Results: fiber.Map{"updated": updated},
	})
}
