package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldHelpers(t *testing.T) {
	attr := Service("webhook")
	assert.Equal(t, FieldService, attr.Key)
	assert.Equal(t, "webhook", attr.Value.String())

	attr = EventType("booking.created")
	assert.Equal(t, FieldEventType, attr.Key)
	assert.Equal(t, "booking.created", attr.Value.String())

	attr = SubscriptionID("sub-1")
	assert.Equal(t, FieldSubscriptionID, attr.Key)
	assert.Equal(t, "sub-1", attr.Value.String())

	attr = URL("https://example.com/hooks")
	assert.Equal(t, FieldURL, attr.Key)
	assert.Equal(t, "https://example.com/hooks", attr.Value.String())

	attr = Status(502)
	assert.Equal(t, FieldStatus, attr.Key)
	assert.Equal(t, int64(502), attr.Value.Int64())

	attr = Error(errors.New("broker down"))
	assert.Equal(t, FieldError, attr.Key)
	assert.Equal(t, "broker down", attr.Value.String())
}
