package validations

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainMessage "github.com/wadesk/wadesk/domains/message"
	pkgError "github.com/wadesk/wadesk/pkg/error"
)

func TestValidateSendMessage(t *testing.T) {
	ctx := context.Background()

	valid := domainMessage.SendMessageRequest{
		CustomerID: "cust-1",
		AgentID:    "agent-1",
		Content:    "Thanks for reaching out!",
	}
	require.NoError(t, ValidateSendMessage(ctx, valid))

	atLimit := valid
	atLimit.Content = strings.Repeat("x", domainMessage.MaxContentLength)
	require.NoError(t, ValidateSendMessage(ctx, atLimit))

	cases := map[string]domainMessage.SendMessageRequest{
		"empty content":    {CustomerID: "cust-1", AgentID: "agent-1", Content: ""},
		"over limit":       {CustomerID: "cust-1", AgentID: "agent-1", Content: strings.Repeat("x", domainMessage.MaxContentLength+1)},
		"missing customer": {AgentID: "agent-1", Content: "hi"},
		"missing agent":    {CustomerID: "cust-1", Content: "hi"},
	}
	for name, request := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateSendMessage(ctx, request)
			require.Error(t, err)
			var validationErr pkgError.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestValidateSendMessage_CountsRunesNotBytes(t *testing.T) {
	// Multi-byte content at the code-point limit is still valid.
	request := domainMessage.SendMessageRequest{
		CustomerID: "cust-1",
		AgentID:    "agent-1",
		Content:    strings.Repeat("é", domainMessage.MaxContentLength),
	}
	assert.NoError(t, ValidateSendMessage(context.Background(), request))
}
