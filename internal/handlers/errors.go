package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"microschool-crm/internal/engine"
)

// respondEngineError translates the engine's error taxonomy into HTTP
// responses: invalid input is the caller's fault, configuration errors mean
// stored reference data is broken and the payload names the offending key.
func respondEngineError(c *gin.Context, err error) {
	var invalid *engine.InvalidInputError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error(), "field": invalid.Field})
		return
	}
	var conf *engine.ConfigurationError
	if errors.As(err, &conf) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": conf.Error(), "key": conf.Key})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
