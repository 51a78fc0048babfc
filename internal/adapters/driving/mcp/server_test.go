package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil browser returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingBrowser)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Browser: &mockBrowser{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("empty user defaults to local", func(t *testing.T) {
		ports := &Ports{
			Browser: &mockBrowser{},
		}
		_, err := NewServer(ports)
		require.NoError(t, err)
		assert.Equal(t, "local", ports.UserID)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil browser returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingBrowser)
	})

	t.Run("browser is sufficient", func(t *testing.T) {
		ports := &Ports{
			Browser: &mockBrowser{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}
