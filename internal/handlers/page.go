// page.go serves the single-page resume analysis UI.
package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

// indexHTML is the whole UI: job description box, PDF upload, the three
// action buttons, the response box and the download button.
//
//go:embed index.html
var indexHTML []byte

// ServeApp returns the UI page.
// GET /
func (h *Handler) ServeApp(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
