package handler

import (
	"github.com/gofiber/fiber/v2"

	"bizprofile/internal/http/middleware"
	"bizprofile/internal/service"
)

type logoResponse struct {
	LogoURL string `json:"logo_url"`
}

// formFile opens the multipart field "file".
func formFile(c *fiber.Ctx) (service.FileInput, func(), error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return service.FileInput{}, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return service.FileInput{}, nil, err
	}
	return service.FileInput{Reader: f, Filename: fh.Filename, Size: fh.Size}, func() { f.Close() }, nil
}

// @Summary  Upload a business logo (png, jpg, jpeg; max 2MB)
// @Tags     upload
// @Accept   multipart/form-data
// @Produce  json
// @Param    id   path     string true "Business id"
// @Param    file formData file   true "Logo"
// @Success  200 {object} logoResponse
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /business/{id}/upload-logo [post]
func UploadLogo(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, done, err := formFile(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		defer done()

		u := middleware.UserFromCtx(c)
		url, err := svc.UploadLogo(c.UserContext(), u.ID, c.Params("id"), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(logoResponse{LogoURL: url})
	}
}

// FetchLogo streams a logo. Logos are public so they can back <img> tags.
//
// @Summary  Fetch a business logo
// @Tags     upload
// @Produce  png
// @Param    id      path string true "Business id"
// @Param    logo_id path string true "Logo id"
// @Success  200 {file} binary
// @Failure  404 {object} errorPayload
// @Router   /business/{id}/logo/{logo_id} [get]
func FetchLogo(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		blob, err := svc.FetchLogo(c.UserContext(), c.Params("id"), c.Params("logo_id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, blob.ContentType)
		return c.SendStream(blob.Body, int(blob.Size))
	}
}

// @Summary  Upload a business document (pdf, doc, docx; max 5MB)
// @Tags     upload
// @Accept   multipart/form-data
// @Produce  json
// @Param    id   path     string true "Business id"
// @Param    file formData file   true "Document"
// @Success  200 {object} model.BusinessDocument
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /business/{id}/upload-document [post]
func UploadDocument(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, done, err := formFile(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		defer done()

		u := middleware.UserFromCtx(c)
		doc, err := svc.UploadDocument(c.UserContext(), u.ID, c.Params("id"), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// @Summary  Download a business document
// @Tags     upload
// @Produce  octet-stream
// @Param    id     path string true "Business id"
// @Param    doc_id path string true "Document id"
// @Success  200 {file} binary
// @Failure  404 {object} errorPayload
// @Router   /business/{id}/document/{doc_id} [get]
func FetchDocument(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.UserFromCtx(c)
		blob, err := svc.FetchDocument(c.UserContext(), u.ID, c.Params("id"), c.Params("doc_id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Attachment(blob.Filename)
		c.Set(fiber.HeaderContentType, blob.ContentType)
		return c.SendStream(blob.Body, int(blob.Size))
	}
}

// @Summary  Delete a business document
// @Tags     upload
// @Produce  json
// @Param    id     path string true "Business id"
// @Param    doc_id path string true "Document id"
// @Success  200 {object} messageResponse
// @Failure  404 {object} errorPayload
// @Router   /business/{id}/document/{doc_id} [delete]
func DeleteDocument(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.UserFromCtx(c)
		if err := svc.DeleteDocument(c.UserContext(), u.ID, c.Params("id"), c.Params("doc_id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messageResponse{Message: "Document deleted successfully"})
	}
}
