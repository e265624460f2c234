package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TEAMNEST_TEST_KEY", "value")

	assert.Equal(t, "value", getEnv("TEAMNEST_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnv("TEAMNEST_TEST_MISSING", "fallback"))
	assert.Equal(t, "", getEnv("TEAMNEST_TEST_MISSING", ""))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEAMNEST_TEST_INT", "42")
	t.Setenv("TEAMNEST_TEST_NOT_INT", "forty-two")

	assert.Equal(t, 42, getEnvAsInt("TEAMNEST_TEST_INT", 7))
	assert.Equal(t, 7, getEnvAsInt("TEAMNEST_TEST_NOT_INT", 7))
	assert.Equal(t, 7, getEnvAsInt("TEAMNEST_TEST_MISSING", 7))
}

func TestMaskPassword(t *testing.T) {
	dsn := "host=localhost port=5432 user=postgres password=hunter2 dbname=teamnest"
	masked := maskPassword(dsn)

	assert.NotContains(t, masked, "hunter2")
	assert.Contains(t, masked, "password=****")
	assert.Equal(t, dsn, maskPassword("host=localhost dbname=teamnest"))
}
