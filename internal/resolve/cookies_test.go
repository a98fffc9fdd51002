package resolve

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCookieFileNoCookies(t *testing.T) {
	called := false
	err := withCookieFile("", func(path string) error {
		called = true
		assert.Empty(t, path)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
}

func TestWithCookieFileRemovedOnSuccess(t *testing.T) {
	var seen string
	err := withCookieFile("cookie-data", func(path string) error {
		seen = path

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "cookie-data", string(content))
		return nil
	})

	require.NoError(t, err)
	require.NotEmpty(t, seen)
	_, err = os.Stat(seen)
	assert.True(t, os.IsNotExist(err), "cookie file should be removed")
}

func TestWithCookieFileRemovedOnError(t *testing.T) {
	failure := errors.New("subprocess failed")

	var seen string
	err := withCookieFile("cookie-data", func(path string) error {
		seen = path
		return failure
	})

	require.ErrorIs(t, err, failure)
	_, err = os.Stat(seen)
	assert.True(t, os.IsNotExist(err), "cookie file should be removed")
}

func TestWithCookieFileUniquePaths(t *testing.T) {
	var first, second string
	require.NoError(t, withCookieFile("a", func(path string) error {
		first = path
		return withCookieFile("b", func(path string) error {
			second = path
			return nil
		})
	}))

	assert.NotEqual(t, first, second)
}
