package handler

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stuproj/projectshelf/internal/infra/blob"
	"go.uber.org/zap"
)

// AssetHandler serves the embedded stylesheet and script and the stored
// uploads.
type AssetHandler struct {
	static http.FileSystem
	store  blob.Store
	log    *zap.Logger
}

func NewAssetHandler(static fs.FS, store blob.Store, log *zap.Logger) *AssetHandler {
	return &AssetHandler{static: http.FS(static), store: store, log: log}
}

func (h *AssetHandler) Stylesheet(c *gin.Context) {
	c.FileFromFS("style.css", h.static)
}

func (h *AssetHandler) Script(c *gin.Context) {
	c.FileFromFS("script.js", h.static)
}

// Upload streams a stored attachment. Unknown and unsafe names are 404.
func (h *AssetHandler) Upload(c *gin.Context) {
	obj, err := h.store.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrBadName) {
			renderStatus(c, http.StatusNotFound)
			return
		}
		h.log.Sugar().Errorw("open upload", "filename", c.Param("filename"), "err", err)
		renderStatus(c, http.StatusInternalServerError)
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}
