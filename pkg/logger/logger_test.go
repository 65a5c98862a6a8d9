package logger_test

import (
	"testing"

	"folio/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := logger.New("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, l)

	l, err = logger.New("INFO", "json")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNew_Invalid(t *testing.T) {
	_, err := logger.New("loud", "json")
	assert.Error(t, err)

	_, err = logger.New("info", "xml")
	assert.Error(t, err)
}
