package httpserver

import (
	"net/http"

	"github.com/helixir/journal-federation-service/internal/domain"
)

// Response types for JSON serialization.

type areaResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type categoryResponse struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Quartile string        `json:"quartile,omitempty"`
	Area     *areaResponse `json:"area,omitempty"`
}

type publisherResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type journalResponse struct {
	ID          string             `json:"id"`
	IDs         []string           `json:"ids"`
	Title       string             `json:"title"`
	Publisher   *publisherResponse `json:"publisher,omitempty"`
	Languages   []string           `json:"languages"`
	HasDOAJSeal bool               `json:"has_doaj_seal"`
	HasAPC      bool               `json:"has_apc"`
	Licence     string             `json:"licence,omitempty"`
	Categories  []categoryResponse `json:"categories,omitempty"`
}

type entityResponse struct {
	Kind     string            `json:"kind"`
	Journal  *journalResponse  `json:"journal,omitempty"`
	Category *categoryResponse `json:"category,omitempty"`
}

type listJournalsResponse struct {
	Journals   []journalResponse `json:"journals"`
	TotalCount int               `json:"total_count"`
}

type listCategoriesResponse struct {
	Categories []categoryResponse `json:"categories"`
	TotalCount int                `json:"total_count"`
}

type listAreasResponse struct {
	Areas      []areaResponse `json:"areas"`
	TotalCount int            `json:"total_count"`
}

type readinessResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends"`
}

// Converter functions

func domainAreaToResponse(a *domain.Area) areaResponse {
	return areaResponse{ID: a.PrimaryID(), Name: a.Name}
}

func domainCategoryToResponse(c *domain.Category) categoryResponse {
	resp := categoryResponse{
		ID:       c.PrimaryID(),
		Title:    c.Title,
		Quartile: string(c.Quartile),
	}
	if c.Area != nil {
		area := domainAreaToResponse(c.Area)
		resp.Area = &area
	}
	return resp
}

func domainJournalToResponse(j *domain.Journal) journalResponse {
	resp := journalResponse{
		ID:          j.PrimaryID(),
		IDs:         j.IDs(),
		Title:       j.Title,
		Languages:   j.Languages,
		HasDOAJSeal: j.HasDOAJSeal,
		HasAPC:      j.HasAPC,
		Licence:     j.Licence,
	}
	if resp.Languages == nil {
		resp.Languages = []string{}
	}
	if j.Publisher != nil {
		resp.Publisher = &publisherResponse{ID: j.Publisher.PrimaryID(), Name: j.Publisher.Name}
	}
	for _, c := range j.Categories() {
		resp.Categories = append(resp.Categories, domainCategoryToResponse(c))
	}
	return resp
}

func entityToResponse(e domain.Entity) entityResponse {
	resp := entityResponse{Kind: string(e.Kind())}
	switch v := e.(type) {
	case *domain.Journal:
		j := domainJournalToResponse(v)
		resp.Journal = &j
	case *domain.Category:
		c := domainCategoryToResponse(v)
		resp.Category = &c
	}
	return resp
}

func writeJournals(w http.ResponseWriter, journals []*domain.Journal) {
	responses := make([]journalResponse, len(journals))
	for i, j := range journals {
		responses[i] = domainJournalToResponse(j)
	}
	writeJSON(w, http.StatusOK, listJournalsResponse{Journals: responses, TotalCount: len(responses)})
}

func writeCategories(w http.ResponseWriter, categories []*domain.Category) {
	responses := make([]categoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = domainCategoryToResponse(c)
	}
	writeJSON(w, http.StatusOK, listCategoriesResponse{Categories: responses, TotalCount: len(responses)})
}

func writeAreas(w http.ResponseWriter, areas []*domain.Area) {
	responses := make([]areaResponse, len(areas))
	for i, a := range areas {
		responses[i] = domainAreaToResponse(a)
	}
	writeJSON(w, http.StatusOK, listAreasResponse{Areas: responses, TotalCount: len(responses)})
}
