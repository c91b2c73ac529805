package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	assert.False(t, errors.Is(ErrMissingRetrievalService, ErrInvalidPorts))
	assert.Contains(t, ErrMissingRetrievalService.Error(), "retrieval service")
	assert.Contains(t, ErrInvalidPorts.Error(), "ports")
}
