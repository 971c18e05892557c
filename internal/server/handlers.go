package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"propmap/internal/i18n"
	"propmap/internal/logger"
	"propmap/internal/pipeline"
	"propmap/internal/render"
)

type parcelResponse struct {
	Name         string  `json:"name"`
	Lang         string  `json:"lang"`
	Format       string  `json:"format"`
	Layer        string  `json:"layer,omitempty"`
	Outcome      string  `json:"outcome"`
	CRS          string  `json:"crs"`
	SourceCRS    string  `json:"source_crs"`
	CRSDefaulted bool    `json:"crs_defaulted"`
	AreaM2       float64 `json:"area_m2"`
	AreaHa       float64 `json:"area_ha"`
	PerimeterM   float64 `json:"perimeter_m"`
	Free         string  `json:"free_artifact"`
	Premium      string  `json:"premium_artifact"`
	PurchaseURL  string  `json:"purchase_url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// readUpload runs the pipeline on the multipart "file" field. The language
// and property name come from the "lang" and "name" query parameters.
func (a *API) readUpload(w http.ResponseWriter, r *http.Request) (*pipeline.Report, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload)
	if err := r.ParseMultipartForm(a.maxUpload); err != nil {
		return nil, &requestError{status: statusForBody(err), err: fmt.Errorf("read upload: %w", err)}
	}
	defer r.MultipartForm.RemoveAll()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, &requestError{status: http.StatusBadRequest, err: fmt.Errorf("missing file field: %w", err)}
	}
	defer file.Close()

	lang := a.lang
	if l, ok := i18n.ParseLang(r.URL.Query().Get("lang")); ok {
		lang = l
	}
	return a.pipe.Run(r.Context(), pipeline.Request{
		Name: r.URL.Query().Get("name"),
		Lang: lang,
		Ext:  filepath.Ext(hdr.Filename),
		Body: file,
	})
}

func (a *API) handleParcel(w http.ResponseWriter, r *http.Request) {
	rep, err := a.readUpload(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, parcelResponse{
		Name:         rep.PropertyName,
		Lang:         string(rep.Lang),
		Format:       string(rep.Format),
		Layer:        rep.Layer,
		Outcome:      rep.Outcome.String(),
		CRS:          rep.Parcel.CRS,
		SourceCRS:    rep.Parcel.SourceCRS,
		CRSDefaulted: rep.Parcel.CRSDefaulted,
		AreaM2:       rep.Metrics.AreaM2,
		AreaHa:       rep.Metrics.AreaHa,
		PerimeterM:   rep.Metrics.PerimeterM,
		Free:         pipeline.ArtifactName(render.Free, rep.PropertyName),
		Premium:      pipeline.ArtifactName(render.Premium, rep.PropertyName),
		PurchaseURL:  a.purchaseURL,
	})
}

func (a *API) handleMap(w http.ResponseWriter, r *http.Request) {
	v, err := render.ParseVariant(chi.URLParam(r, "variant"))
	if err != nil {
		a.writeError(w, r, &requestError{status: http.StatusNotFound, err: err})
		return
	}
	rep, err := a.readUpload(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	art, err := a.pipe.Export(r.Context(), rep, v)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Name}))
	w.Header().Set("X-Basemap-Status", art.Map.Basemap.Status.String())
	if v == render.Free {
		w.Header().Set("Link", fmt.Sprintf("<%s>; rel=\"payment\"", a.purchaseURL))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

// requestError carries an HTTP status for failures outside the pipeline.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func statusForBody(err error) int {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var re *requestError
	switch {
	case errors.As(err, &re):
		status = re.status
	case pipeline.IsUserError(err):
		status = http.StatusUnprocessableEntity
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), &a.log).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: pipeline.Notice(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
