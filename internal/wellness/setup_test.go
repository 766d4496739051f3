package wellness

import (
	"testing"

	"github.com/patrickwarner/garminsync/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewFromConfig(t *testing.T) {
	base := config.Config{
		GarminEnabled:    true,
		GarminSSOURL:     "https://sso.garmin.com",
		GarminConnectURL: "https://connect.garmin.com",
	}

	svc, err := NewFromConfig(base, zaptest.NewLogger(t), nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)

	disabled := base
	disabled.GarminEnabled = false
	svc, err = NewFromConfig(disabled, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, svc)

	broken := base
	broken.GarminConnectURL = "ftp://connect"
	_, err = NewFromConfig(broken, nil, nil)
	assert.Error(t, err)
}
