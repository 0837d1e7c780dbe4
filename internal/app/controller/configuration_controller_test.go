package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerConfigurationRoutes(env *testEnv, userID uint) *ConfigurationController {
	ctrl := NewConfigurationController(env.configs, env.hub, []string{"http://localhost:5173"})
	env.router.POST("/configurations", asUser(userID, ctrl.Start))
	env.router.GET("/configurations/:id", ctrl.Get)
	env.router.POST("/configurations/:id/toggle", ctrl.Toggle)
	env.router.PUT("/configurations/:id/quantity", ctrl.SetQuantity)
	env.router.POST("/configurations/:id/commit", asUser(userID, ctrl.Commit))
	env.router.DELETE("/configurations/:id", asUser(userID, ctrl.Discard))
	env.router.GET("/configurations/:id/live", ctrl.Live)
	return ctrl
}

func startSession(t *testing.T, env *testEnv) string {
	t.Helper()
	w := doJSON(t, env.router, http.MethodPost, "/configurations", map[string]interface{}{"product_id": env.product.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return sessionField(t, w, "id").(string)
}

func TestConfigurationController_Flow(t *testing.T) {
	env := setupControllerTest(t, nil)
	registerConfigurationRoutes(env, 7)

	id := startSession(t, env)
	base := "/configurations/" + id

	w := doJSON(t, env.router, http.MethodPost, base+"/toggle", map[string]interface{}{"group_id": env.colorID(), "value_id": env.blueID()})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "110", sessionField(t, w, "unit_price"))

	w = doJSON(t, env.router, http.MethodPost, base+"/toggle", map[string]interface{}{"group_id": env.storageID(), "value_id": env.gb256ID()})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "160", sessionField(t, w, "unit_price"))

	w = doJSON(t, env.router, http.MethodPut, base+"/quantity", map[string]interface{}{"quantity": "2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "320", sessionField(t, w, "line_total"))

	w = doJSON(t, env.router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), sessionField(t, w, "quantity"))

	w = doJSON(t, env.router, http.MethodPost, base+"/commit", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	lineItem := body["line_item"].(map[string]interface{})
	assert.Equal(t, "160", lineItem["unit_price"])
	assert.Equal(t, "320", lineItem["line_total"])
	assert.Equal(t, "/static/images/product-placeholder.png", lineItem["image"])
	cartItem := body["cart_item"].(map[string]interface{})
	assert.Equal(t, float64(7), cartItem["user_id"])

	w = doJSON(t, env.router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CONFIG_SESSION_NOT_FOUND", decode(t, w)["error"])
}

func TestConfigurationController_Validation(t *testing.T) {
	env := setupControllerTest(t, nil)
	registerConfigurationRoutes(env, 0)

	w := doJSON(t, env.router, http.MethodPost, "/configurations", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.router, http.MethodPost, "/configurations", map[string]interface{}{"product_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := startSession(t, env)

	w = doJSON(t, env.router, http.MethodPut, "/configurations/"+id+"/quantity", map[string]interface{}{"quantity": "two"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_INVALID_QUANTITY", decode(t, w)["error"])

	w = doJSON(t, env.router, http.MethodPost, "/configurations/"+id+"/toggle", map[string]interface{}{"group_id": env.colorID()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// guests cannot commit
	w = doJSON(t, env.router, http.MethodPost, "/configurations/"+id+"/commit", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env.router, http.MethodDelete, "/configurations/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, env.router, http.MethodDelete, "/configurations/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfigurationController_CommitIncomplete(t *testing.T) {
	env := setupControllerTest(t, policyMap{1: {"Storage"}})
	require.Equal(t, uint(1), env.product.ID)
	registerConfigurationRoutes(env, 7)

	id := startSession(t, env)
	w := doJSON(t, env.router, http.MethodPost, "/configurations/"+id+"/commit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFIG_INCOMPLETE", decode(t, w)["error"])
}

func TestConfigurationController_Live(t *testing.T) {
	env := setupControllerTest(t, nil)
	registerConfigurationRoutes(env, 0)
	server := httptest.NewServer(env.router)
	defer server.Close()

	id := startSession(t, env)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/configurations/" + id + "/live"

	t.Run("Rejects unknown session", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/configurations/missing/live", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Rejects foreign origin", func(t *testing.T) {
		header := http.Header{"Origin": []string{"https://evil.example.com"}}
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return env.hub.ListenerCount(id) == 1
	}, time.Second, 10*time.Millisecond)

	w := doJSON(t, env.router, http.MethodPost, "/configurations/"+id+"/toggle", map[string]interface{}{"group_id": env.colorID(), "value_id": env.blueID()})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "price_changed", msg["type"])
	assert.Equal(t, id, msg["session_id"])
	assert.Equal(t, "110", msg["unit_price"])
	assert.Equal(t, true, msg["complete"])
}

func TestConfigurationController_SetQuantityForms(t *testing.T) {
	env := setupControllerTest(t, nil)
	registerConfigurationRoutes(env, 0)
	id := startSession(t, env)
	path := "/configurations/" + id + "/quantity"

	tests := []struct {
		name     string
		quantity interface{}
		status   int
		total    string
	}{
		{"JSON number", 2, http.StatusOK, "200"},
		{"numeric string", " 3 ", http.StatusOK, "300"},
		{"fraction", 2.5, http.StatusBadRequest, ""},
		{"zero", 0, http.StatusBadRequest, ""},
		{"negative", -1, http.StatusBadRequest, ""},
		{"word", "two", http.StatusBadRequest, ""},
		{"null", nil, http.StatusBadRequest, ""},
		{"boolean", true, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, env.router, http.MethodPut, path, map[string]interface{}{"quantity": tt.quantity})
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.total, sessionField(t, w, "line_total"))
			} else {
				assert.Equal(t, "VALIDATION_INVALID_QUANTITY", decode(t, w)["error"])
			}
		})
	}

	w := doJSON(t, env.router, http.MethodPut, path, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfigurationController_DiscardOwnedSession(t *testing.T) {
	env := setupControllerTest(t, nil)
	registerConfigurationRoutes(env, 7)
	id := startSession(t, env)

	intruder := NewConfigurationController(env.configs, env.hub, nil)
	env.router.DELETE("/other/:id", asUser(8, intruder.Discard))
	env.router.DELETE("/guest/:id", intruder.Discard)

	w := doJSON(t, env.router, http.MethodDelete, "/other/"+id, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "CONFIG_ACCESS_DENIED", decode(t, w)["error"])

	w = doJSON(t, env.router, http.MethodDelete, "/guest/"+id, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env.router, http.MethodDelete, "/configurations/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConfigurationController_CommitClosesLiveSockets(t *testing.T) {
	env := setupControllerTest(t, nil)
	registerConfigurationRoutes(env, 7)
	server := httptest.NewServer(env.router)
	defer server.Close()

	id := startSession(t, env)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/configurations/" + id + "/live"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool {
		return env.hub.ListenerCount(id) == 1
	}, time.Second, 10*time.Millisecond)

	w := doJSON(t, env.router, http.MethodPost, "/configurations/"+id+"/commit", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "session_closed", msg["type"])
	assert.Equal(t, "committed", msg["reason"])

	require.Eventually(t, func() bool {
		return env.hub.ListenerCount(id) == 0
	}, 2*time.Second, 10*time.Millisecond)

	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "server closes the socket")
}
