// Package api serves the branding colour pipeline and saved company schemes over HTTP.
package api

import (
	"github.com/hashicorp/go-hclog"

	"github.com/serviceplanpro/brandcolour/internal/branding"
	"github.com/serviceplanpro/brandcolour/internal/config"
	"github.com/serviceplanpro/brandcolour/internal/datastore"
)

// Application holds the dependencies shared by the HTTP handlers.
type Application struct {
	Config config.Config
	// Extractor resolves logo URLs. Uploads use a copy with an in-memory decoder.
	Extractor    *branding.Extractor
	BrandingRepo datastore.BrandingRepository
	Logger       hclog.Logger
}
