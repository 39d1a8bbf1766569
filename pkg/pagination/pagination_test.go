package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/restaurants", nil)
	p := FromRequest(r)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_ExplicitValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/restaurants?page=3&per_page=10", nil)
	p := FromRequest(r)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.PerPage)
	assert.Equal(t, 20, p.Offset)
}

func TestFromRequest_IgnoresInvalid(t *testing.T) {
	r := httptest.NewRequest("GET", "/restaurants?page=-1&per_page=9999", nil)
	p := FromRequest(r)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
}

func TestNewResult(t *testing.T) {
	res := NewResult([]string{"a", "b"}, 5, Params{Page: 1, PerPage: 2})

	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.False(t, res.HasPrev)
}

func TestNewResult_NilData(t *testing.T) {
	res := NewResult[string](nil, 0, Params{Page: 1, PerPage: 20})
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}
