package blueprint

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tendermint/tendermint/libs/log"
)

func TestContext(t *testing.T) {
	bg := context.Background()

	// try logger with default
	newLogger := log.NewTMLogger(os.Stdout)
	ctx := WithLogger(bg, newLogger)
	assert.Equal(t, DefaultLogger, GetLogger(bg))
	assert.Equal(t, newLogger, GetLogger(ctx))

	// signature - uninitialized
	sig, ok := GetTxSignature(ctx)
	assert.Nil(t, sig)
	assert.False(t, ok)
	// set
	ctx = WithTxSignature(ctx, []byte{1, 2, 3})
	sig, ok = GetTxSignature(ctx)
	assert.Equal(t, []byte{1, 2, 3}, sig)
	assert.True(t, ok)

	// changing the info, should modify the logger, but not the signature
	ctx2 := WithLogInfo(ctx, "foo", "bar")
	assert.NotEqual(t, GetLogger(ctx), GetLogger(ctx2))
	sig, _ = GetTxSignature(ctx2)
	assert.Equal(t, []byte{1, 2, 3}, sig)
}
