package httpserver

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/helixir/journal-federation-service/internal/domain"
)

type idRequest struct {
	ID string `query:"id" validate:"required,max=256"`
}

type fragmentRequest struct {
	Query string `query:"q" validate:"required,max=512"`
}

// setRequest carries the set filters of the category and compound queries.
// Every set is optional; an empty set leaves its axis unconstrained.
type setRequest struct {
	Categories []string `query:"category" validate:"max=100,dive,max=256"`
	Areas      []string `query:"area" validate:"max=100,dive,max=256"`
	Quartiles  []string `query:"quartile" validate:"max=100,dive,max=16"`
	Licences   []string `query:"licence" validate:"max=100,dive,max=256"`
}

func parseSetRequest(r *http.Request) setRequest {
	return setRequest{
		Categories: parseSet(r, "category"),
		Areas:      parseSet(r, "area"),
		Quartiles:  parseSet(r, "quartile"),
		Licences:   parseRepeated(r, "licence"),
	}
}

// parseSet reads a set filter given as repeated parameters, comma-separated
// values or both.
func parseSet(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// parseRepeated reads a free-text set filter given as repeated parameters
// only. Commas are part of the value.
func parseRepeated(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.URL.Query()[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// newValidator returns a validator reporting fields by their query
// parameter names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// validRequest validates req, writing a 400 response when it is invalid.
func (s *Server) validRequest(w http.ResponseWriter, req any) bool {
	err := s.validate.Struct(req)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		writeDomainError(w, domain.NewValidationError(fe.Field(), "failed "+fe.Tag()+" constraint"))
		return false
	}
	writeDomainError(w, domain.NewValidationError("request", err.Error()))
	return false
}

// getEntity handles GET /api/v1/entities/{id}.
func (s *Server) getEntity(w http.ResponseWriter, r *http.Request) {
	req := idRequest{ID: strings.TrimSpace(chi.URLParam(r, "id"))}
	if !s.validRequest(w, req) {
		return
	}

	entity, ok := s.federation.GetEntityByID(r.Context(), req.ID)
	if !ok {
		writeDomainError(w, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entityToResponse(entity))
}

// listJournals handles GET /api/v1/journals.
func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	writeJournals(w, s.federation.GetAllJournals(r.Context()))
}

// journalsWithTitle handles GET /api/v1/journals/by-title?q=.
func (s *Server) journalsWithTitle(w http.ResponseWriter, r *http.Request) {
	req, ok := s.fragment(w, r)
	if !ok {
		return
	}
	writeJournals(w, s.federation.GetJournalsWithTitle(r.Context(), req.Query))
}

// journalsPublishedBy handles GET /api/v1/journals/by-publisher?q=.
func (s *Server) journalsPublishedBy(w http.ResponseWriter, r *http.Request) {
	req, ok := s.fragment(w, r)
	if !ok {
		return
	}
	writeJournals(w, s.federation.GetJournalsPublishedBy(r.Context(), req.Query))
}

// journalsWithLicence handles GET /api/v1/journals/by-licence?q=.
func (s *Server) journalsWithLicence(w http.ResponseWriter, r *http.Request) {
	req, ok := s.fragment(w, r)
	if !ok {
		return
	}
	writeJournals(w, s.federation.GetJournalsWithLicense(r.Context(), req.Query))
}

// journalsWithAPC handles GET /api/v1/journals/with-apc.
func (s *Server) journalsWithAPC(w http.ResponseWriter, r *http.Request) {
	writeJournals(w, s.federation.GetJournalsWithAPC(r.Context()))
}

// journalsWithDOAJSeal handles GET /api/v1/journals/with-doaj-seal.
func (s *Server) journalsWithDOAJSeal(w http.ResponseWriter, r *http.Request) {
	writeJournals(w, s.federation.GetJournalsWithDOAJSeal(r.Context()))
}

// journalsInCategories handles GET /api/v1/journals/in-categories?category=&quartile=.
func (s *Server) journalsInCategories(w http.ResponseWriter, r *http.Request) {
	req, ok := s.sets(w, r)
	if !ok {
		return
	}
	writeJournals(w, s.federation.JournalsInCategoriesWithQuartile(r.Context(), req.Categories, req.Quartiles))
}

// journalsInAreas handles GET /api/v1/journals/in-areas?area=&licence=.
func (s *Server) journalsInAreas(w http.ResponseWriter, r *http.Request) {
	req, ok := s.sets(w, r)
	if !ok {
		return
	}
	writeJournals(w, s.federation.JournalsInAreasWithLicense(r.Context(), req.Areas, req.Licences))
}

// diamondJournals handles GET /api/v1/journals/diamond?area=&category=&quartile=.
func (s *Server) diamondJournals(w http.ResponseWriter, r *http.Request) {
	req, ok := s.sets(w, r)
	if !ok {
		return
	}
	writeJournals(w, s.federation.DiamondJournalsInAreasAndCategoriesWithQuartile(r.Context(), req.Areas, req.Categories, req.Quartiles))
}

// listCategories handles GET /api/v1/categories.
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	writeCategories(w, s.federation.GetAllCategories(r.Context()))
}

// categoriesWithQuartile handles GET /api/v1/categories/by-quartile?quartile=.
func (s *Server) categoriesWithQuartile(w http.ResponseWriter, r *http.Request) {
	req, ok := s.sets(w, r)
	if !ok {
		return
	}
	writeCategories(w, s.federation.GetCategoriesWithQuartile(r.Context(), req.Quartiles))
}

// categoriesAssignedToAreas handles GET /api/v1/categories/by-area?area=.
func (s *Server) categoriesAssignedToAreas(w http.ResponseWriter, r *http.Request) {
	req, ok := s.sets(w, r)
	if !ok {
		return
	}
	writeCategories(w, s.federation.GetCategoriesAssignedToAreas(r.Context(), req.Areas))
}

// listAreas handles GET /api/v1/areas.
func (s *Server) listAreas(w http.ResponseWriter, r *http.Request) {
	writeAreas(w, s.federation.GetAllAreas(r.Context()))
}

// areasAssignedToCategories handles GET /api/v1/areas/by-category?category=.
func (s *Server) areasAssignedToCategories(w http.ResponseWriter, r *http.Request) {
	req, ok := s.sets(w, r)
	if !ok {
		return
	}
	writeAreas(w, s.federation.GetAreasAssignedToCategories(r.Context(), req.Categories))
}

func (s *Server) fragment(w http.ResponseWriter, r *http.Request) (fragmentRequest, bool) {
	req := fragmentRequest{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	return req, s.validRequest(w, req)
}

func (s *Server) sets(w http.ResponseWriter, r *http.Request) (setRequest, bool) {
	req := parseSetRequest(r)
	return req, s.validRequest(w, req)
}

// writeDomainError maps a domain error to an HTTP error response.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
