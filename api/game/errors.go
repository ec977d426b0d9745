package gameapi

import (
	"errors"
	"net/http"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/gin-gonic/gin"
)

// statusOf maps domain error kinds onto HTTP status codes.
func statusOf(err error) int {
	if errors.Is(err, dmn.ErrRoomNotFound) || errors.Is(err, dmn.ErrUnknownChannel) {
		return http.StatusNotFound
	}
	switch dmn.KindOf(err) {
	case dmn.ValidationError:
		return http.StatusBadRequest
	case dmn.StateError:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func abortWithError(ctx *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && dmn.KindOf(err) == dmn.UnknownError {
		msg = "internal error"
	}
	ctx.AbortWithStatusJSON(status, gin.H{"error": msg})
}
