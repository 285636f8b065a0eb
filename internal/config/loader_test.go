package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Run("uses default when variable is unset", func(t *testing.T) {
		assert.Equal(t, "host: localhost", expandEnv("host: ${UNSET_TEST_VAR:localhost}"))
	})

	t.Run("environment value wins over default", func(t *testing.T) {
		t.Setenv("EXPAND_TEST_HOST", "db.internal")
		assert.Equal(t, "host: db.internal", expandEnv("host: ${EXPAND_TEST_HOST:localhost}"))
	})

	t.Run("empty default expands to empty string", func(t *testing.T) {
		assert.Equal(t, "password: ", expandEnv("password: ${UNSET_TEST_PASSWORD:}"))
	})

	t.Run("placeholder without default stays when unset", func(t *testing.T) {
		assert.Equal(t, "key: ${UNSET_TEST_KEY}", expandEnv("key: ${UNSET_TEST_KEY}"))
	})

	t.Run("multiple placeholders in one document", func(t *testing.T) {
		t.Setenv("EXPAND_TEST_PORT", "5433")
		in := "host: ${UNSET_TEST_VAR:localhost}\nport: ${EXPAND_TEST_PORT:5432}"
		assert.Equal(t, "host: localhost\nport: 5433", expandEnv(in))
	})
}
