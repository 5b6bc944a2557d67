package fopbridge_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/smarttasks/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/smarttasks/core/scaffolding/fop"
)

func TestPaginatedResponse(t *testing.T) {
	page, err := fopbridge.ParsePage("2", "2")
	require.NoError(t, err)

	resp := fopbridge.NewPaginatedResponse([]string{"c", "d"}, page, 5)
	data, ct, err := resp.Encode()
	require.NoError(t, err)
	assert.Equal(t, "application/json", ct)

	var got struct {
		Records  []string              `json:"records"`
		PageInfo fop.PageInfoIntCursor `json:"pageInfo"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{"c", "d"}, got.Records)
	assert.True(t, got.PageInfo.HasPrev)
	assert.True(t, got.PageInfo.HasNext)
	require.NotNil(t, got.PageInfo.NextCursor)
	assert.Equal(t, 4, *got.PageInfo.NextCursor)
	assert.Equal(t, 5, got.PageInfo.Total)
}

func TestEmptyRecordsEncodeAsArray(t *testing.T) {
	data, _, err := fopbridge.NewPaginatedResponse[string](nil, fop.PageIntCursor{Limit: 5}, 0).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"records":[]`)

	data, _, err = fopbridge.NewNonPaginatedRecords[string](nil).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"records":[]}`, string(data))
}

func TestParsePageRejectsBadInput(t *testing.T) {
	_, err := fopbridge.ParsePage("0", "")
	assert.ErrorContains(t, err, "invalid page")

	_, err = fopbridge.ParsePage("5", "-1")
	assert.Error(t, err)
}

func TestStatuses(t *testing.T) {
	assert.Equal(t, http.StatusCreated, fopbridge.NewCreatedRecordResponse(1).HTTPStatus())
	assert.Equal(t, http.StatusOK, fopbridge.NewRecordResponse(1).HTTPStatus())
	assert.Equal(t, http.StatusAccepted, fopbridge.NewAccepted("queued").HTTPStatus())
}
