package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/service"
)

// UploadDocument accepts a multipart upload (field name: file) tagged with a
// patient_id form value and returns the new document id.
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "no file part")
		}

		patientID := c.FormValue("patient_id")

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := docSvc.Upload(c.UserContext(), f, fh.Filename, patientID, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"id":      doc.ID,
			"message": "Upload successful",
		})
	}
}

// ListDocuments returns all catalog records. Storage references are excluded
// by the model's serialization tags.
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := docSvc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(docs)
	}
}

// DownloadDocument streams a document's bytes back as an attachment named
// after the original (sanitized) filename rather than the on-disk name.
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		rc, doc, err := docSvc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
		c.Set(fiber.HeaderContentType, "application/pdf")
		if doc.SizeBytes > 0 {
			return c.SendStream(rc, int(doc.SizeBytes))
		}
		return c.SendStream(rc)
	}
}

// DeleteDocument removes the blob and the catalog record for an id.
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		if err := docSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Document deleted"})
	}
}
