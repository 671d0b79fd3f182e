package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleCreate(t *testing.T) {
	f := newFixture(t)
	h := NewRoleHandler(f.roles)

	t.Run("success", func(t *testing.T) {
		c, rec := jsonCtx(http.MethodPost, "/roles", `{"code":"support","description":"Support staff"}`)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "support", body["code"])
		assert.Equal(t, "Support staff", body["description"])
		assert.Equal(t, false, body["isDefault"])
	})

	t.Run("duplicate conflicts", func(t *testing.T) {
		c, rec := jsonCtx(http.MethodPost, "/roles", `{"code":"support","description":"again"}`)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("uppercase code rejected", func(t *testing.T) {
		c, rec := jsonCtx(http.MethodPost, "/roles", `{"code":"Support"}`)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty code rejected", func(t *testing.T) {
		c, rec := jsonCtx(http.MethodPost, "/roles", `{"description":"no code"}`)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRoleListAndGet(t *testing.T) {
	f := newFixture(t)
	h := NewRoleHandler(f.roles)

	c, rec := jsonCtx(http.MethodGet, "/roles", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	// Seeded defaults are present.
	assert.Contains(t, rec.Body.String(), `"admin"`)
	assert.Contains(t, rec.Body.String(), `"user"`)

	c, rec = jsonCtx(http.MethodGet, "/roles/admin", "")
	c.SetParamNames("code")
	c.SetParamValues("admin")
	require.NoError(t, h.GetByCode(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["isDefault"])

	c, rec = jsonCtx(http.MethodGet, "/roles/ghost", "")
	c.SetParamNames("code")
	c.SetParamValues("ghost")
	require.NoError(t, h.GetByCode(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoleUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	h := NewRoleHandler(f.roles)

	create, _ := jsonCtx(http.MethodPost, "/roles", `{"code":"support","description":"old"}`)
	require.NoError(t, h.Create(create))

	t.Run("update description", func(t *testing.T) {
		c, rec := jsonCtx(http.MethodPatch, "/roles/support", `{"description":"new"}`)
		c.SetParamNames("code")
		c.SetParamValues("support")
		require.NoError(t, h.Update(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "new", decodeBody(t, rec)["description"])
	})

	t.Run("default role update rejected", func(t *testing.T) {
		c, rec := jsonCtx(http.MethodPatch, "/roles/admin", `{"description":"hijack"}`)
		c.SetParamNames("code")
		c.SetParamValues("admin")
		require.NoError(t, h.Update(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("default role delete rejected", func(t *testing.T) {
		c, rec := jsonCtx(http.MethodDelete, "/roles/user", "")
		c.SetParamNames("code")
		c.SetParamValues("user")
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete custom role", func(t *testing.T) {
		c, rec := jsonCtx(http.MethodDelete, "/roles/support", "")
		c.SetParamNames("code")
		c.SetParamValues("support")
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("delete missing role", func(t *testing.T) {
		c, rec := jsonCtx(http.MethodDelete, "/roles/ghost", "")
		c.SetParamNames("code")
		c.SetParamValues("ghost")
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
