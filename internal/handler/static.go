package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/mainhusharm/main-launch/internal/util"

	"github.com/gin-gonic/gin"
)

const entryDocument = "index.html"

// StaticHandler serves the built frontend bundle with an index.html fallback
// so client-side routes survive a reload.
type StaticHandler struct {
	Dir string
}

func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{Dir: dir}
}

// Serve handles "/" and every path no route matched.
func (h *StaticHandler) Serve(c *gin.Context) {
	reqPath := c.Request.URL.Path
	if util.IsAPIPath(reqPath) {
		util.NotFound(c)
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		util.MethodNotAllowedResponse(c, spaMethods)
		return
	}

	if file, ok := h.resolve(reqPath); ok {
		serveFile(c, file)
		return
	}

	index := filepath.Join(h.Dir, entryDocument)
	if !isFile(index) {
		util.NotFound(c)
		return
	}
	serveFile(c, index)
}

// serveFile writes name verbatim with a content type from its extension.
// http.ServeFile is avoided since it redirects /index.html to /.
func serveFile(c *gin.Context, name string) {
	f, err := os.Open(name)
	if err != nil {
		_ = c.Error(err)
		util.InternalError(c)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		_ = c.Error(err)
		util.InternalError(c)
		return
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// resolve maps a request path to a regular file inside Dir.
func (h *StaticHandler) resolve(reqPath string) (string, bool) {
	clean := path.Clean("/" + reqPath)
	if clean == "/" {
		return "", false
	}
	file := filepath.Join(h.Dir, filepath.FromSlash(clean))
	return file, isFile(file)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
