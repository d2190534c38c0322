package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/serviceplanpro/brandcolour/internal/branding"
	"github.com/serviceplanpro/brandcolour/internal/colour"
	"github.com/serviceplanpro/brandcolour/internal/datastore"
	"github.com/serviceplanpro/brandcolour/internal/image"
	"github.com/serviceplanpro/brandcolour/internal/security"
	"github.com/serviceplanpro/brandcolour/internal/version"
)

// multipartOverhead is the allowance for form boundaries and headers on uploads.
const multipartOverhead = 64 << 10

// ExtractRequest is the JSON body of POST /api/branding/extract.
type ExtractRequest struct {
	LogoURL string `json:"logoUrl"`
}

// ExtractResponse carries the scheme to preview in the branding form.
type ExtractResponse struct {
	Scheme   colour.Scheme `json:"scheme"`
	Fallback bool          `json:"fallback"`
	Warning  string        `json:"warning,omitempty"`
}

// CompanyBrandingRequest is the JSON body of PUT /api/companies/{id}/branding.
type CompanyBrandingRequest struct {
	Scheme  colour.Scheme `json:"scheme"`
	LogoRef string        `json:"logoRef,omitempty"`
}

func (app *Application) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// The status line is already sent; the client most likely went away.
		app.Logger.Debug("failed to write response", "status", status, "error", err)
	}
}

// GET /healthz
func (app *Application) healthz(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": version.GetInfo()})
}

// GET /api/branding/default
func (app *Application) getDefaultBranding(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, http.StatusOK, colour.DefaultScheme())
}

// POST /api/branding/extract
func (app *Application) extractBranding(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var result branding.Result
	if mediaType == "multipart/form-data" {
		data, name, err := app.readUpload(w, r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.Is(err, ErrLogoTooLarge) || errors.As(err, &tooLarge) {
				app.payloadTooLarge(w, r, ErrLogoTooLarge)
				return
			}
			app.badRequest(w, r, err)
			return
		}
		result = app.Extractor.WithDecoder(image.BytesDecoder{Data: data, MaxPixels: app.Config.MaxImagePixels}).ExtractOrDefault(r.Context(), name)
	} else {
		req := ExtractRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			app.badJSONRequest(w, r, err)
			return
		}
		if req.LogoURL == "" {
			app.badRequest(w, r, ErrMissingLogo)
			return
		}
		// Only remote logos are accepted here; local paths would expose the server's filesystem.
		if !image.IsURL(req.LogoURL) {
			app.badRequest(w, r, ErrLogoNotURL)
			return
		}
		if err := security.PolicyFor(app.Config.DevMode).ValidateLogoURL(req.LogoURL); err != nil {
			app.badRequest(w, r, err)
			return
		}
		result = app.Extractor.ExtractOrDefault(r.Context(), req.LogoURL)
	}

	app.writeJSON(w, http.StatusOK, ExtractResponse{
		Scheme:   result.Scheme,
		Fallback: result.Fallback,
		Warning:  result.Warning(),
	})
}

// readUpload returns the bytes and filename of the multipart "logo" field.
func (app *Application) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, app.Config.MaxImageBytes+multipartOverhead)

	file, header, err := r.FormFile("logo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", err
		}
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", ErrMissingLogo
		}
		return nil, "", fmt.Errorf("invalid multipart body: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, app.Config.MaxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > app.Config.MaxImageBytes {
		return nil, "", ErrLogoTooLarge
	}
	return data, header.Filename, nil
}

func lowerScheme(s colour.Scheme) colour.Scheme {
	return colour.Scheme{
		Primary:    strings.ToLower(s.Primary),
		Secondary:  strings.ToLower(s.Secondary),
		Accent:     strings.ToLower(s.Accent),
		Text:       strings.ToLower(s.Text),
		Background: strings.ToLower(s.Background),
	}
}

func companyID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}
	return id, nil
}

// GET /api/companies/{id}/branding
func (app *Application) getCompanyBranding(w http.ResponseWriter, r *http.Request) {
	id, err := companyID(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	saved, err := app.BrandingRepo.Get(r.Context(), id)
	if errors.Is(err, datastore.ErrNotFound) {
		app.notFound(w, r, ErrNoSavedScheme)
		return
	}
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, saved)
}

// PUT /api/companies/{id}/branding
func (app *Application) putCompanyBranding(w http.ResponseWriter, r *http.Request) {
	id, err := companyID(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	req := CompanyBrandingRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.badJSONRequest(w, r, err)
		return
	}
	if err := req.Scheme.Validate(); err != nil {
		app.invalidScheme(w, r, err)
		return
	}

	saved, err := app.BrandingRepo.Save(r.Context(), datastore.Branding{
		CompanyID: id,
		Scheme:    lowerScheme(req.Scheme),
		LogoRef:   req.LogoRef,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.Logger.Info("company branding saved", "company", id, "primary", saved.Scheme.Primary)
	app.writeJSON(w, http.StatusOK, saved)
}
