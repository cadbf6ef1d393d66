package router

import "github.com/gin-gonic/gin"

// Module is one clinic resource (patients, doctors, ...). Name is reported by
// GET /health once the module is mounted.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}
