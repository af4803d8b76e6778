package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	ledger "github.com/sow2grow/farm-mall-api/ledger"
)

// respondLedgerError maps a ledger error kind onto an HTTP response.
// Callers branch on the status, not the message, so the kind mapping is
// the contract; messages stay human readable. Internal detail is logged,
// never returned.
func respondLedgerError(c *gin.Context, err error) {
	var lerr *ledger.Error
	if !errors.As(err, &lerr) {
		log.Printf("unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	switch lerr.Kind {
	case ledger.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": lerr.Message})
	case ledger.KindInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": lerr.Message})
	case ledger.KindInvalidState:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": lerr.Message})
	case ledger.KindConflict:
		c.JSON(http.StatusConflict, gin.H{
			"error": lerr.Message,
			"taken": lerr.Taken,
		})
	default:
		log.Printf("ledger internal error: %v", lerr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
