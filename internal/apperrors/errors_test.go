package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFatalClassification(t *testing.T) {
	fatal := []*AppError{
		Config("config.Bind", "missing plugin_base", nil),
		DependencyCycle("kinds.Resolve", "cycle detected"),
		InstanceInit("instance.Manager", "OnInit failed", nil),
	}
	for _, e := range fatal {
		assert.Truef(t, e.Fatal(), "%s should be classified fatal", e.Code)
	}

	recoverable := []*AppError{
		Operation("transport.nats", "publish failed", nil),
		Dispatch("dispatcher.Trigger", "callback panicked", nil),
		Encoding("envelope.Decode", "bad json", nil),
	}
	for _, e := range recoverable {
		assert.Falsef(t, e.Fatal(), "%s should not be classified fatal", e.Code)
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	e := Operation("transport.nats", "publish failed", cause)

	assert.True(t, errors.Is(e, cause), "expected errors.Is to find the wrapped cause")
	assert.Equal(t, cause.Error(), e.Details)
}
