package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledger "github.com/sow2grow/farm-mall-api/ledger"
)

func recordLedgerError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondLedgerError(c, err)
	return w
}

func TestRespondLedgerErrorStatusMapping(t *testing.T) {
	cases := []struct {
		kind   ledger.Kind
		status int
	}{
		{ledger.KindNotFound, http.StatusNotFound},
		{ledger.KindInvalidInput, http.StatusBadRequest},
		{ledger.KindInvalidState, http.StatusUnprocessableEntity},
		{ledger.KindConflict, http.StatusConflict},
		{ledger.KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := recordLedgerError(&ledger.Error{Kind: tc.kind, Message: "boom"})
		assert.Equal(t, tc.status, w.Code)
	}
}

func TestRespondLedgerErrorConflictCarriesTakenNumbers(t *testing.T) {
	w := recordLedgerError(&ledger.Error{
		Kind:    ledger.KindConflict,
		Message: "pockets already taken: [2 3]",
		Taken:   []int{2, 3},
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Error string `json:"error"`
		Taken []int  `json:"taken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []int{2, 3}, body.Taken)
}

func TestRespondLedgerErrorHidesInternalDetail(t *testing.T) {
	w := recordLedgerError(errors.New("connection reset by peer"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}
