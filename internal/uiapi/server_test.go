package uiapi_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
	"github.com/Alibirb/gogrind/internal/uiapi"
)

func TestServerJogTranslatesToMoveAxisRelative(t *testing.T) {
	send, recv := bus.NewChannel()
	app := uiapi.NewServer(send, uiapi.NewHub())

	body := bytes.NewBufferString(`{"axis":"x","distance_in":1.5,"speed_ips":0.5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/jog", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	msg, state := recv.TryRecv()
	require.Equal(t, bus.Ok, state)
	jog, ok := msg.(bus.MoveAxisRelative)
	require.True(t, ok)
	assert.Equal(t, axis.X, jog.Axis)
	assert.Equal(t, 1.5, jog.DistanceIn)
}

func TestServerJogRejectsUnknownAxis(t *testing.T) {
	send, _ := bus.NewChannel()
	app := uiapi.NewServer(send, uiapi.NewHub())

	body := bytes.NewBufferString(`{"axis":"w","distance_in":1,"speed_ips":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/jog", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServerStopSendsStopMessage(t *testing.T) {
	send, recv := bus.NewChannel()
	app := uiapi.NewServer(send, uiapi.NewHub())

	req := httptest.NewRequest(http.MethodPost, "/api/stop", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	msg, state := recv.TryRecv()
	require.Equal(t, bus.Ok, state)
	assert.IsType(t, bus.Stop{}, msg)
}

func TestServerHealthReportsClientCount(t *testing.T) {
	send, _ := bus.NewChannel()
	hub := uiapi.NewHub()
	app := uiapi.NewServer(send, hub)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
