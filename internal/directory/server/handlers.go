package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/vietddude/localguide/internal/core/domain"
	"github.com/vietddude/localguide/internal/core/tags"
	"github.com/vietddude/localguide/internal/directory/catalog"
	"github.com/vietddude/localguide/internal/directory/search"
)

var validate = validator.New()

type categoryEntry struct {
	domain.Category
	// Backend is the slug stored by the backend.
	Backend string `json:"backend"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	out := make([]categoryEntry, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, categoryEntry{Category: c, Backend: catalog.Canonical(c.Slug)})
	}
	writeJSON(w, http.StatusOK, out)
}

type categoryParams struct {
	Slug  string `validate:"required,max=64"`
	Limit int    `validate:"gte=0,lte=100"`
	View  string `validate:"omitempty,oneof=ui full"`
}

type categoryResponse struct {
	Slug       string `json:"slug"`
	Count      int    `json:"count"`
	Businesses any    `json:"businesses"`
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := categoryParams{
		Slug: strings.TrimSpace(mux.Vars(r)["slug"]),
		View: q.Get("view"),
	}
	var err error
	if p.Limit, err = intParam(q, "limit"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Limit == 0 {
		p.Limit = s.cfg.DefaultLimit
	}

	found := s.directory.ResolveCategory(r.Context(), p.Slug, p.Limit)
	resp := categoryResponse{Slug: p.Slug, Count: len(found)}
	if p.View == "full" {
		resp.Businesses = found
	} else {
		ui := make([]domain.UiBusiness, 0, len(found))
		for _, b := range found {
			ui = append(ui, b.Ui())
		}
		resp.Businesses = ui
	}
	writeJSON(w, http.StatusOK, resp)
}

type nearbyParams struct {
	Lat    float64 `validate:"gte=-90,lte=90"`
	Lng    float64 `validate:"gte=-180,lte=180"`
	Radius float64 `validate:"gt=0,lte=100"`
	Limit  int     `validate:"gte=0,lte=100"`
}

type nearbyResponse struct {
	Count      int              `json:"count"`
	Businesses []catalog.Nearby `json:"businesses"`
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		p   nearbyParams
		err error
	)
	if p.Lat, err = floatParam(q, "lat", true); err == nil {
		if p.Lng, err = floatParam(q, "lng", true); err == nil {
			if p.Radius, err = floatParam(q, "radius", false); err == nil {
				p.Limit, err = intParam(q, "limit")
			}
		}
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Radius == 0 {
		p.Radius = 5
	}
	if err := validate.Struct(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Limit == 0 {
		p.Limit = s.cfg.DefaultLimit
	}

	found, err := s.directory.ResolveNearby(r.Context(), p.Lat, p.Lng, p.Radius, p.Limit)
	if errors.Is(err, catalog.ErrInvalidCoordinates) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, nearbyResponse{Count: len(found), Businesses: found})
}

type searchParams struct {
	Text        string   `validate:"max=200"`
	Filters     []string `validate:"max=20,dive,max=64"`
	Category    string   `validate:"max=64"`
	ListingType string   `validate:"omitempty,oneof=imoveis carros empregos lugares"`
	Sort        string   `validate:"omitempty,oneof=rating free_first price_asc price_desc year_desc recent rent_first"`
	Any         bool
}

type searchResponse struct {
	domain.Collections
	Total int `json:"total"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := searchParams{
		Text:        q.Get("q"),
		Filters:     listParam(q, "filter"),
		Category:    q.Get("category"),
		ListingType: q.Get("type"),
		Sort:        q.Get("sort"),
		Any:         q.Get("match") == "any",
	}
	if err := validate.Struct(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot := s.loader.Load(r.Context())
	got := s.engine.Search(snapshot, search.Query{
		Text:        p.Text,
		Filters:     p.Filters,
		Category:    p.Category,
		ListingType: p.ListingType,
		Sort:        p.Sort,
		Any:         p.Any,
	})
	total := len(got.Businesses) + len(got.Listings) + len(got.Deals) + len(got.Events) + len(got.News)
	writeJSON(w, http.StatusOK, searchResponse{Collections: got, Total: total})
}

type filtersResponse struct {
	Filters []tags.FilterOption `json:"filters"`
	Sort    []tags.SortOption   `json:"sort"`
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	if typ == "" {
		writeJSON(w, http.StatusOK, filtersResponse{Filters: tags.AllTaxonomyFilters(), Sort: []tags.SortOption{}})
		return
	}
	for _, lt := range tags.ListingTypes {
		if lt.ID == typ {
			sortOpts := tags.SortOptions[lt.ID]
			if sortOpts == nil {
				sortOpts = []tags.SortOption{}
			}
			writeJSON(w, http.StatusOK, filtersResponse{Filters: tags.FilterOptions(lt.Tags), Sort: sortOpts})
			return
		}
	}
	writeError(w, http.StatusNotFound, "unknown listing type "+strconv.Quote(typ))
}

func intParam(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}

func floatParam(q url.Values, name string, required bool) (float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		if required {
			return 0, errors.New("missing " + name)
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}

// listParam accepts repeated parameters and comma-separated values.
func listParam(q url.Values, name string) []string {
	var out []string
	for _, v := range q[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
