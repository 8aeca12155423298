package auth_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-authd"
	"github.com/stretchr/testify/assert"
)

func TestActivitySinkFunc_Nil(t *testing.T) {
	var f auth.ActivitySinkFunc
	assert.NoError(t, f.Record(context.Background(), auth.ActivityEvent{}))
}
