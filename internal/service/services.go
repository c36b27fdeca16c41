package service

import "time"

// Options configures the services that need more than shared dependencies.
type Options struct {
	PreviewTTL  time.Duration
	ExportRoot  string
	SiteBaseURL string
}

// Services holds every service the handlers use.
type Services struct {
	Pages      *PageService
	Links      *LinkService
	Components *ComponentService
	Users      *UserService
	Preview    *PreviewService
	Export     *ExportService
}

// NewServices creates all services over one store and one page lock table.
func NewServices(deps Deps, opts Options) *Services {
	deps = deps.withDefaults()
	pages := NewPageService(deps)
	links := NewLinkService(pages)

	return &Services{
		Pages:      pages,
		Links:      links,
		Components: NewComponentService(pages),
		Users:      NewUserService(deps),
		Preview:    NewPreviewService(pages, links, opts.PreviewTTL),
		Export:     NewExportService(pages, opts.ExportRoot, opts.SiteBaseURL),
	}
}
