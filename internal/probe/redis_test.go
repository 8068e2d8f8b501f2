package probe

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRunner(t *testing.T) {
	srv := miniredis.RunT(t)

	runner := NewRedisRunner()

	code, err := runner.Execute(context.Background(), srv.Addr())
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	addr := srv.Addr()
	srv.Close()

	code, err = runner.Execute(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}
