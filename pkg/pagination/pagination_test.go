package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	page, err := ParsePage("")
	require.NoError(t, err)
	assert.Equal(t, 1, page)

	page, err = ParsePage(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, page)

	for _, raw := range []string{"0", "-2", "two", "1.5"} {
		_, err := ParsePage(raw)
		assert.Error(t, err, raw)
	}
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{CurrentPage: 1, TotalPages: 3, TotalItems: 21, HasMore: true}, NewPage(1, 10, 21))
	assert.Equal(t, Page{CurrentPage: 3, TotalPages: 3, TotalItems: 21, HasMore: false}, NewPage(3, 10, 21))
	assert.Equal(t, Page{CurrentPage: 2, TotalPages: 2, TotalItems: 20}, NewPage(2, 10, 20))
	assert.Equal(t, Page{CurrentPage: 1}, NewPage(1, 10, 0))
	assert.Equal(t, Page{CurrentPage: 5, TotalPages: 1, TotalItems: 4}, NewPage(5, 10, 4))
}

func TestOffsetAndLimit(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 20, Offset(3, 10))
	assert.Equal(t, 0, Offset(0, 10))

	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(1000))
	assert.Equal(t, 7, NormalizeLimit(7))
}
