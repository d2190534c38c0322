package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
)

// getCallerInfo reports the handler that produced an error.
func getCallerInfo() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "[unknown]"
	}
	return fmt.Sprintf("[%s:%d]", filepath.Base(file), line)
}

// HandlerError is the JSON body of every error response.
type HandlerError struct {
	ErrorName        string `json:"errorName"`
	Description      string `json:"description"`
	PossibleSolution string `json:"possibleSolution"`
	CallerInfo       string `json:"callerInfo"`
}

var (
	ErrMissingLogo   = fmt.Errorf("logoUrl or a multipart logo file is required")
	ErrLogoNotURL    = fmt.Errorf("logoUrl must be an http or https URL")
	ErrLogoTooLarge  = fmt.Errorf("logo exceeds the maximum upload size")
	ErrInvalidUUID   = fmt.Errorf("company id must be a UUID")
	ErrNoSavedScheme = fmt.Errorf("no branding saved for this company")
)

func (app *Application) writeError(w http.ResponseWriter, status int, handlerErr HandlerError) {
	app.writeJSON(w, status, handlerErr)
}

func (app *Application) badJSONRequest(w http.ResponseWriter, r *http.Request, err error) {
	app.writeError(w, http.StatusBadRequest, HandlerError{
		ErrorName:        "Error Parsing JSON",
		Description:      err.Error(),
		PossibleSolution: "Double check your JSON formatting",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	app.writeError(w, http.StatusBadRequest, HandlerError{
		ErrorName:        "Bad Request",
		Description:      err.Error(),
		PossibleSolution: "Check your request parameters",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) invalidScheme(w http.ResponseWriter, r *http.Request, err error) {
	app.writeError(w, http.StatusUnprocessableEntity, HandlerError{
		ErrorName:        "Invalid Colour Scheme",
		Description:      err.Error(),
		PossibleSolution: "Every colour must be a #rrggbb hex string",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) payloadTooLarge(w http.ResponseWriter, r *http.Request, err error) {
	app.writeError(w, http.StatusRequestEntityTooLarge, HandlerError{
		ErrorName:        "Payload Too Large",
		Description:      err.Error(),
		PossibleSolution: fmt.Sprintf("Upload a logo smaller than %d bytes", app.Config.MaxImageBytes),
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) notFound(w http.ResponseWriter, r *http.Request, err error) {
	app.writeError(w, http.StatusNotFound, HandlerError{
		ErrorName:        "Not Found",
		Description:      err.Error(),
		PossibleSolution: "Extract and save a scheme first, or use the default scheme",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	app.writeError(w, http.StatusInternalServerError, HandlerError{
		ErrorName:        "Internal Server Error",
		Description:      err.Error(),
		PossibleSolution: "Internal Server Error requiring support",
		CallerInfo:       getCallerInfo(),
	})
}
