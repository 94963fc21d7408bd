package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagesFor(t *testing.T) {
	assert.Equal(t, 0, PagesFor(0, 10))
	assert.Equal(t, 1, PagesFor(1, 10))
	assert.Equal(t, 1, PagesFor(10, 10))
	assert.Equal(t, 2, PagesFor(11, 10))
	assert.Equal(t, 5, PagesFor(41, 10))
	assert.Equal(t, 0, PagesFor(5, 0))
}

func TestRecomputeFloorsTotalAtZero(t *testing.T) {
	p := Pagination{Total: -1, Pages: 1}
	p.Recompute(10)

	assert.Equal(t, 0, p.Total)
	assert.Equal(t, 0, p.Pages)
}

func TestRecomputeAfterLocalDelete(t *testing.T) {
	p := Pagination{Total: 21, Pages: 3}
	p.Total--
	p.Recompute(10)

	assert.Equal(t, 20, p.Total)
	assert.Equal(t, 2, p.Pages)
}
