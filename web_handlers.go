package main

import (
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"berlinstats/internal/analytics"
)

//go:embed templates/*.html
var templateFS embed.FS

// WebHandler renders the HTML dashboard
type WebHandler struct {
	Source    analytics.Source
	Briefs    *BriefService
	City      string
	Year      int
	templates *template.Template
}

var templateFuncs = template.FuncMap{
	"count":   analytics.FormatCount,
	"percent": analytics.FormatPercent,
	"change":  analytics.FormatPercentChange,
	"area":    analytics.FormatArea,
	"arrow": func(p float64) string {
		return analytics.TrendArrow(analytics.ClassifyTrend(p))
	},
	"trendClass": func(p float64) string {
		return analytics.ClassifyTrend(p).String()
	},
	"svgPath": analytics.SVGPath,
	"barWidth": func(v, max float64) float64 {
		if max <= 0 {
			return 0
		}
		return v / max * 100
	},
	"optional":   countOrUnknown,
	"pathEscape": url.PathEscape,
	"dict": func(kv ...interface{}) map[string]interface{} {
		m := make(map[string]interface{}, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok {
				m[k] = kv[i+1]
			}
		}
		return m
	},
}

// NewWebHandler creates a new WebHandler with parsed templates
func NewWebHandler(src analytics.Source, briefs *BriefService, city string, year int) *WebHandler {
	tmpl := template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
	return &WebHandler{
		Source:    src,
		Briefs:    briefs,
		City:      city,
		Year:      year,
		templates: tmpl,
	}
}

func (h *WebHandler) render(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Template error: %v", err)
	}
}

func (h *WebHandler) cities(r *http.Request) []string {
	cities, err := h.Source.ListCities(r.Context())
	if err != nil {
		log.Printf("Cities error: %v", err)
		return []string{h.City}
	}
	return cities
}

// HomePage renders the city snapshot: infrastructure deltas and communities
func (h *WebHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	city := cityParam(r, h.City)
	year, err := yearParam(r, h.Year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.Source.GetCitySummary(r.Context(), city, year)
	overview := analytics.From(analytics.NewCityOverview(city, year, summary), err)
	if err != nil {
		log.Printf("Summary error: %v", err)
	}

	communities, err := h.Source.GetCommunityComposition(r.Context(), city)
	views := analytics.From(communityViews(communities), err)
	if err != nil {
		log.Printf("Communities error: %v", err)
	}

	h.render(w, http.StatusOK, "home.html", map[string]interface{}{
		"Title":       "Demographic Snapshot: " + city,
		"City":        city,
		"Year":        year,
		"Cities":      h.cities(r),
		"Overview":    overview,
		"Communities": views,
		"CanExport":   overview.IsReady() && views.IsReady(),
	})
}

// DistrictRow is one line of the district table
type DistrictRow struct {
	District  analytics.DistrictRecord
	Selected  bool
	CanToggle bool
	ToggleURL string
}

// DistrictsPage renders the filterable district list with comparison selection
func (h *WebHandler) DistrictsPage(w http.ResponseWriter, r *http.Request) {
	city := cityParam(r, h.City)
	q := r.URL.Query()

	sel, selErr := selectionParam(r, "selected")
	if selErr != nil {
		sel = &analytics.Selection{}
	}

	// filters only apply once the form was submitted
	active := q.Get("apply") != ""
	var criteria analytics.FilterCriteria
	var filterErr error
	if active {
		criteria, filterErr = analytics.ParseFilterCriteria(q.Get)
		if filterErr != nil {
			active = false
			criteria = analytics.FilterCriteria{}
		}
	}

	districts, err := h.Source.ListDistricts(r.Context(), city)
	result := analytics.From(districts, err)
	if err != nil {
		log.Printf("Districts error: %v", err)
	}

	filtered := analytics.FilterDistricts(result.Data, criteria)
	rows := make([]DistrictRow, len(filtered))
	for i, d := range filtered {
		next := analytics.NewSelection(sel.IDs()...)
		changed := next.Toggle(d.ID)
		rows[i] = DistrictRow{
			District:  d,
			Selected:  sel.Contains(d.ID),
			CanToggle: changed,
			ToggleURL: districtsURL(city, criteria, active, next.IDs()),
		}
	}

	status := http.StatusOK
	errMsg := ""
	if filterErr != nil {
		status = http.StatusBadRequest
		errMsg = filterErr.Error()
	} else if selErr != nil {
		status = http.StatusBadRequest
		errMsg = selErr.Error()
	}

	h.render(w, status, "districts.html", map[string]interface{}{
		"Title":      "Districts of " + city,
		"City":       city,
		"Cities":     h.cities(r),
		"Fields":     analytics.FilterFields,
		"Values":     formValues(q),
		"Active":     active,
		"Error":      errMsg,
		"Result":     result,
		"Rows":       rows,
		"Total":      len(result.Data),
		"Selection":  sel,
		"Selected":   sel.Len(),
		"MaxSelect":  analytics.MaxComparison,
		"CanCompare": sel.CanCompare(),
		"CompareURL": "/compare?ids=" + joinIDs(sel.IDs()),
		"ClearURL":   districtsURL(city, analytics.FilterCriteria{}, false, sel.IDs()),
	})
}

// formValues echoes the submitted filter inputs back into the form
func formValues(q url.Values) map[string]string {
	values := make(map[string]string, len(analytics.FilterFields))
	for _, f := range analytics.FilterFields {
		values[f] = q.Get(f)
	}
	return values
}

func districtsURL(city string, criteria analytics.FilterCriteria, active bool, ids []int) string {
	v := url.Values{}
	v.Set("city", city)
	if active {
		v.Set("apply", "1")
		for field, value := range criteria.Values() {
			if value != "" {
				v.Set(field, value)
			}
		}
	}
	if len(ids) > 0 {
		v.Set("selected", joinIDs(ids))
	}
	return "/districts?" + v.Encode()
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// DistrictDetail renders a single district
func (h *WebHandler) DistrictDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	district, err := h.Source.GetDistrictByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("District error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	year, err := yearParam(r, h.Year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var brief *DistrictBrief
	if h.Briefs != nil {
		brief = h.Briefs.Cached(district)
	}

	h.render(w, http.StatusOK, "district.html", map[string]interface{}{
		"Title":         district.DisplayName(),
		"City":          district.City,
		"Year":          year,
		"District":      district,
		"Density":       district.Density(),
		"Brief":         brief,
		"BriefsEnabled": h.Briefs != nil,
	})
}

// GenerateBrief creates a fresh brief and returns to the district page
func (h *WebHandler) GenerateBrief(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if h.Briefs == nil {
		http.Error(w, "Briefs not available: ANTHROPIC_API_KEY not set", http.StatusServiceUnavailable)
		return
	}

	district, err := h.Source.GetDistrictByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("District error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	year, err := yearParam(r, h.Year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.Source.GetCitySummary(r.Context(), district.City, year)
	if err != nil {
		log.Printf("Summary error: %v", err)
	}

	if _, err := h.Briefs.Regenerate(r.Context(), district, summary); err != nil {
		log.Printf("Brief error: %v", err)
		http.Error(w, "Brief generation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/districts/"+strconv.Itoa(id)+"?year="+strconv.Itoa(year), http.StatusSeeOther)
}

// ComparePage renders two or three districts side by side
func (h *WebHandler) ComparePage(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionParam(r, "ids")
	if err == nil && !sel.CanCompare() {
		err = errors.New("select at least 2 districts to compare")
	}
	if err != nil {
		h.render(w, http.StatusBadRequest, "compare.html", map[string]interface{}{
			"Title": "Compare Districts",
			"City":  h.City,
			"Error": err.Error(),
		})
		return
	}

	districts, err := analytics.DistrictsByIDs(r.Context(), h.Source, sel.IDs())
	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("Compare error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	city := h.City
	if len(districts) > 0 {
		city = districts[0].City
	}

	h.render(w, http.StatusOK, "compare.html", map[string]interface{}{
		"Title":      "Compare Districts",
		"City":       city,
		"Comparison": analytics.BuildComparison(districts),
		"BackURL":    districtsURL(city, analytics.FilterCriteria{}, false, sel.IDs()),
	})
}

// CityColumn is one city of the city comparison
type CityColumn struct {
	City     string
	Overview analytics.Result[analytics.CityOverview]
}

// CitiesPage compares the yearly summaries of several cities
func (h *WebHandler) CitiesPage(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r, h.Year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	all := h.cities(r)
	names := all
	if raw := r.URL.Query().Get("names"); raw != "" {
		names = nil
		for _, n := range strings.Split(raw, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}

	columns := make([]CityColumn, len(names))
	for i, name := range names {
		summary, err := h.Source.GetCitySummary(r.Context(), name, year)
		if err != nil {
			log.Printf("Summary error for %s: %v", name, err)
		}
		columns[i] = CityColumn{
			City:     name,
			Overview: analytics.From(analytics.NewCityOverview(name, year, summary), err),
		}
	}

	h.render(w, http.StatusOK, "cities.html", map[string]interface{}{
		"Title":   "Compare Cities",
		"City":    h.City,
		"Year":    year,
		"Cities":  all,
		"Columns": columns,
	})
}

// CommunityPage renders the trend detail of one community
func (h *WebHandler) CommunityPage(w http.ResponseWriter, r *http.Request) {
	city := cityParam(r, h.City)
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	communities, err := h.Source.GetCommunityComposition(r.Context(), city)
	if err != nil {
		log.Printf("Communities error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	for _, c := range communities {
		if strings.EqualFold(c.Name, name) {
			h.render(w, http.StatusOK, "community.html", map[string]interface{}{
				"Title":     c.Name + " community in " + city,
				"City":      city,
				"Community": c,
				"Detail":    analytics.NewTrendDetail(c),
			})
			return
		}
	}

	http.NotFound(w, r)
}
