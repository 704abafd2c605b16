package apperrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Respond writes the wire representation of err. Validation failures come back
// as 422 {"msg": ...}, missing entities as 404 {"msg": ...}, malformed
// payloads as 400 {"msg": ...}, and everything else as 500 {"error": ...,
// "details": ...}.
func Respond(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "An internal server error occurred",
			"details": err.Error(),
		})
		return
	}
	switch e.Kind {
	case KindValidation:
		body := gin.H{"msg": e.Msg}
		if len(e.Details) > 0 {
			body["details"] = e.Details
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"msg": e.Msg})
	case KindBadMessage:
		c.JSON(http.StatusBadRequest, gin.H{"msg": e.Msg})
	default:
		body := gin.H{"error": e.Msg}
		if e.cause != nil {
			body["details"] = e.cause.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

// BadRequest writes a 400 {"msg": ...} body for unparseable requests.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": msg})
}

// StatusOf maps err to the HTTP status Respond would use.
func StatusOf(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindBadMessage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
