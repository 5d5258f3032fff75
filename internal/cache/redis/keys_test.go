package redis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeysCarryApplicationNamespace(t *testing.T) {
	assert.Equal(t, "arbscan:lock:scan-cycle", lockKey("scan-cycle"))
	assert.True(t, strings.HasPrefix(opportunityChannel, keyPrefix))
}
