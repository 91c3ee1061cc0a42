package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationRoundsUp(t *testing.T) {
	p := NewPagination(1, 20, 41)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(41), p.TotalItems)

	p = NewPagination(2, 20, 40)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 2, p.CurrentPage)

	p = NewPagination(1, 20, 0)
	assert.Equal(t, 0, p.TotalPages)
}

func TestNewPaginationGuardsDegenerateInput(t *testing.T) {
	p := NewPagination(0, 0, 5)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 1, p.ItemsPerPage)
	assert.Equal(t, 5, p.TotalPages)
}
