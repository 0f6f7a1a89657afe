package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/geocoder/internal/domain"
	"github.com/couchcryptid/geocoder/internal/geocoder"
)

type geocodeParams struct {
	Query    string `validate:"required,max=512"`
	Provider string `validate:"omitempty,max=64"`
}

type reverseParams struct {
	Lat      string `validate:"required,latitude"`
	Lon      string `validate:"required,longitude"`
	Provider string `validate:"omitempty,max=64"`
}

type resultsResponse struct {
	Provider string           `json:"provider"`
	Results  []domain.Address `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default":   s.providers.DefaultName(),
		"providers": s.providers.Names(),
	})
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := geocodeParams{
		Query:    strings.TrimSpace(q.Get("q")),
		Provider: q.Get("provider"),
	}
	if err := s.validate.Struct(params); err != nil {
		writeValidationError(w, err)
		return
	}

	p, err := s.provider(params.Provider)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	results, err := p.Geocode(r.Context(), params.Query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{Provider: p.Name(), Results: results})
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := reverseParams{
		Lat:      strings.TrimSpace(q.Get("lat")),
		Lon:      strings.TrimSpace(q.Get("lon")),
		Provider: q.Get("provider"),
	}
	if err := s.validate.Struct(params); err != nil {
		writeValidationError(w, err)
		return
	}
	// Both parse: the latitude/longitude tags only accept decimal numbers.
	lat, _ := strconv.ParseFloat(params.Lat, 64)
	lon, _ := strconv.ParseFloat(params.Lon, 64)

	p, err := s.provider(params.Provider)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	results, err := p.Reverse(r.Context(), lat, lon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{Provider: p.Name(), Results: results})
}

func (s *Server) provider(name string) (domain.Provider, error) {
	if name == "" {
		return s.providers.Default()
	}
	return s.providers.Using(name)
}

func writeValidationError(w http.ResponseWriter, err error) {
	msg := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg = fmt.Sprintf("parameter %s failed %q validation", paramName(fe.Field()), fe.Tag())
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "invalid_request"})
}

func paramName(field string) string {
	switch field {
	case "Query":
		return "q"
	case "Lat":
		return "lat"
	case "Lon":
		return "lon"
	default:
		return strings.ToLower(field)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("geocoding request failed",
			"path", r.URL.Path, "request_id", w.Header().Get(requestIDHeader), "kind", kind, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

// statusFor maps a provider or registry error to an HTTP status and kind label.
func statusFor(err error) (int, string) {
	if errors.Is(err, geocoder.ErrProviderNotRegistered) {
		return http.StatusNotFound, "provider_not_registered"
	}
	switch kind := domain.KindOf(err); kind {
	case domain.KindUnsupportedOperation:
		return http.StatusUnprocessableEntity, kind.String()
	case domain.KindNoResult:
		return http.StatusNotFound, kind.String()
	case domain.KindInvalidCredentials:
		return http.StatusBadGateway, kind.String()
	}
	return http.StatusBadGateway, "upstream_error"
}
