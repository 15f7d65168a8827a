package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}

func TestRedactPIIValue(t *testing.T) {
	got := redactPIIValue("verification mail sent to alice@example.com just now")
	assert.Equal(t, "verification mail sent to al***@example.com just now", got)
	assert.Equal(t, "no addresses here", redactPIIValue("no addresses here"))
}
