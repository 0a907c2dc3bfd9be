package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/auth"
	"docvault/internal/http/middleware"
	"docvault/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
//
// Every document operation sits behind the access gate. Only the download
// route also accepts the credential as a query parameter, so plain links can
// fetch attachments without custom headers; nothing else gets that fallback.
func RegisterRoutes(app *fiber.App, db *sql.DB, tm *auth.TokenManager, docSvc service.DocumentService) {
	requireToken := middleware.Auth(tm)
	requireTokenOrQuery := middleware.AuthAllowQuery(tm)

	app.Get("/health", HealthCheck())
	app.Get("/healthz/ready", ReadyCheck(db))
	app.Post("/login", Login(tm))

	app.Post("/documents/upload", requireToken, UploadDocument(docSvc))
	app.Get("/documents", requireToken, ListDocuments(docSvc))
	app.Get("/documents/:id/download", requireTokenOrQuery, DownloadDocument(docSvc))
	app.Delete("/documents/:id", requireToken, DeleteDocument(docSvc))
}
