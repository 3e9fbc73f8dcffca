package fdms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironmentFromName(t *testing.T) {

	env, err := EnvironmentFromName("test")
	assert.NoError(t, err)
	assert.Equal(t, Test, env)

	env, err = EnvironmentFromName("prod")
	assert.NoError(t, err)
	assert.Equal(t, Prod, env)

	_, err = EnvironmentFromName("staging")
	assert.Error(t, err)
}

func TestBaseURLs(t *testing.T) {

	assert.Contains(t, Test.BaseURL(), "test")
	assert.NotEqual(t, Test.BaseURL(), Prod.BaseURL())
}
