package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	res := Paginate(items, &PaginationParams{Page: 2, PerPage: 2})

	assert.Equal(t, []int{3, 4}, res.Items)
	assert.Equal(t, int64(5), res.Pagination.Total)
	assert.Equal(t, 3, res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasNext)
	assert.True(t, res.Pagination.HasPrev)
}

func TestPaginate_PastEnd(t *testing.T) {
	res := Paginate([]string{"a"}, &PaginationParams{Page: 4, PerPage: 10})

	assert.Empty(t, res.Items)
	assert.False(t, res.Pagination.HasNext)
}

func TestPaginate_Defaults(t *testing.T) {
	res := Paginate([]int{1, 2}, nil)

	assert.Equal(t, []int{1, 2}, res.Items)
	assert.Equal(t, 15, res.Pagination.PerPage)
}
