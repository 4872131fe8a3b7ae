package handler

import "github.com/gin-gonic/gin"

// RouteGroup is a named set of handlers mounted under a path prefix.
type RouteGroup interface {
	Name() string
	Register(rg *gin.RouterGroup)
}

// Reserved stands in for a route group supplied by another package. It
// keeps its name in the mount table and registers nothing.
type Reserved string

func (r Reserved) Name() string { return string(r) }

func (Reserved) Register(*gin.RouterGroup) {}
