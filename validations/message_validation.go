package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	domainMessage "github.com/wadesk/wadesk/domains/message"
	pkgError "github.com/wadesk/wadesk/pkg/error"
)

func ValidateSendMessage(ctx context.Context, request domainMessage.SendMessageRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.CustomerID, validation.Required),
		validation.Field(&request.AgentID, validation.Required),
		validation.Field(&request.Content, validation.Required, validation.RuneLength(1, domainMessage.MaxContentLength)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
