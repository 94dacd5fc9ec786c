package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPorts(t *testing.T) {
	reader := &mockFeedReader{doc: testFeed()}

	ports := NewPorts(reader)

	require.NotNil(t, ports)
	assert.Equal(t, reader, ports.Reader)
}

func TestPorts_Validate_AllSet(t *testing.T) {
	ports := &Ports{
		Reader: &mockFeedReader{doc: testFeed()},
	}

	err := ports.Validate()

	assert.NoError(t, err)
}

func TestPorts_Validate_MissingReader(t *testing.T) {
	ports := &Ports{}

	err := ports.Validate()

	assert.ErrorIs(t, err, ErrMissingFeedReader)
}
