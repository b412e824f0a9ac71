package middleware

import (
	"errors"
	"net/http"

	"creatorplane/pkg/errutil"

	"github.com/gin-gonic/gin"
)

func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil {
			return
		}

		var v errutil.BaseError
		if errors.As(err.Err, &v) {
			c.JSON(v.Code.HTTPStatus(), v.JSON())
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"code": errutil.StatusInternal, "message": "internal server error"})
	}
}
