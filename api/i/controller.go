package i

import "github.com/gin-gonic/gin"

// Controller registers its routes on the router groups. Protected routes
// are only reachable in debug mode.
type Controller interface {
	RegisterPublic(*gin.RouterGroup)
	RegisterProtected(*gin.RouterGroup)
}
