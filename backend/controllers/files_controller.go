package controllers

import (
	"tasksonline/backend/config"
	"tasksonline/backend/storage"
	"tasksonline/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type FilesController struct {
	Cfg   *config.Config
	Store *storage.Store
}

func NewFilesController(cfg *config.Config, store *storage.Store) *FilesController {
	return &FilesController{Cfg: cfg, Store: store}
}

// DownloadFile streams a stored upload by its server-generated name,
// restoring the original filename for the download prompt.
func (fc *FilesController) DownloadFile(c *fiber.Ctx) error {
	filename := c.Params("filename")

	path, err := fc.Store.Path(filename)
	if err != nil {
		return utils.BadRequest(c, "Invalid file name")
	}
	if !fc.Store.Exists(filename) {
		return utils.NotFound(c, "File not found")
	}

	return c.Download(path, storage.OriginalName(filename))
}
