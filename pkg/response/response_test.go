package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, http.StatusConflict, "request is already finalized")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusConflict, w.Code)

	var got Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, Error(http.StatusConflict, "request is already finalized"), got)
}

func TestSuccessOmitsError(t *testing.T) {
	raw, err := json.Marshal(Success(http.StatusOK, map[string]int{"n": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","status_code":200,"data":{"n":1}}`, string(raw))
}
