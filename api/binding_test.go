package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"menuqr/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceText_UnmarshalJSON(t *testing.T) {
	var req DishRequest
	require.NoError(t, json.Unmarshal([]byte(`{"price":"12.50"}`), &req))
	assert.Equal(t, "12.50", *req.Price.stringPtr())

	req = DishRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"price":12.5}`), &req))
	assert.Equal(t, "12.5", *req.Price.stringPtr())

	req = DishRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"price":null}`), &req))
	assert.Nil(t, req.Price.stringPtr())

	assert.Error(t, json.Unmarshal([]byte(`{"price":true}`), &req))
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		code int
	}{
		{service.NewValidationError("name", "name is required"), http.StatusBadRequest},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrUsernameTaken, http.StatusBadRequest},
		{service.ErrTenantExists, http.StatusConflict},
		{service.ErrSlugConflict, http.StatusConflict},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tc.err, "boom")
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}
}

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x/:id", func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if ok {
			c.String(200, "%d", id)
		}
	})
	for path, code := range map[string]int{"/x/7": 200, "/x/0": 404, "/x/-1": 404, "/x/abc": 404} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, code, w.Code, path)
	}
}
