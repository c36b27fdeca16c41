package handler

import (
	"github.com/pageflow/internal/service"
	"github.com/rs/zerolog"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	pages      *service.PageService
	links      *service.LinkService
	components *service.ComponentService
	users      *service.UserService
	preview    *service.PreviewService
	export     *service.ExportService
	log        zerolog.Logger
	uploadDir  string
	uploadURL  string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(services *service.Services, uploadDir, uploadURL string, log zerolog.Logger) *API {
	return &API{
		pages:      services.Pages,
		links:      services.Links,
		components: services.Components,
		users:      services.Users,
		preview:    services.Preview,
		export:     services.Export,
		log:        log.With().Str("component", "http").Logger(),
		uploadDir:  uploadDir,
		uploadURL:  uploadURL,
	}
}
