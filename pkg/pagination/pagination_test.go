package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func parseQuery(query string) Params {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, Limit: 20, Offset: 0}},
		{"page=3&limit=10", Params{Page: 3, Limit: 10, Offset: 20}},
		{"page=0&limit=0", Params{Page: 1, Limit: 20, Offset: 0}},
		{"page=-2&limit=500", Params{Page: 1, Limit: 100, Offset: 0}},
		{"page=abc&limit=xyz", Params{Page: 1, Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseQuery(tt.query), tt.query)
	}
}

func TestNewPage(t *testing.T) {
	p := Params{Page: 2, Limit: 5}

	page := NewPage[string](nil, 7, p)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.EqualValues(t, 7, page.Total)

	page = NewPage([]string{"a", "b"}, 7, p)
	assert.Equal(t, []string{"a", "b"}, page.Items)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.Limit)
}
