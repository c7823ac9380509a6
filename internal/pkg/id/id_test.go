package id

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UniqueAndParseable(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a, b)

	_, err := ulid.ParseStrict(a)
	require.NoError(t, err)
	_, err = ulid.ParseStrict(b)
	require.NoError(t, err)
}
