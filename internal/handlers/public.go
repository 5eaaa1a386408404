package handlers

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/models"
	"SweetDelights/internal/ui"
)

const featuredLimit = 6

/* ========= ВСПОМОГАТЕЛЬНОЕ ========= */

type cakeCard struct {
	Cake       models.Cake
	ViewURL    string
	EnquireURL string
}

type dotLink struct {
	URL    string
	Number int
	Active bool
}

type carouselView struct {
	Cake     models.Cake
	Image    string
	Position int
	PrevURL  string
	NextURL  string
	Dots     []dotLink
	CloseURL string
}

type enquiryForm struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

func (f enquiryForm) complete() bool {
	return f.Name != "" && f.Email != "" && f.Phone != "" && f.Message != ""
}

type enquiryView struct {
	Cake      models.Cake
	Action    string
	CloseURL  string
	Form      enquiryForm
	CSRFField template.HTML
}

func categoryPath(c models.Category) string {
	return "/category/" + url.PathEscape(string(c))
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

func slideURL(path, cakeID string, slide int) string {
	return withQuery(path, url.Values{"view": {cakeID}, "slide": {strconv.Itoa(slide)}})
}

func findCake(cakes []models.Cake, id string) (models.Cake, bool) {
	for _, c := range cakes {
		if c.ID == id {
			return c, true
		}
	}
	return models.Cake{}, false
}

// newCarouselView builds the image viewer for ?view=<id>&slide=<n>. Cakes
// without images have nothing to show.
func newCarouselView(path string, cake models.Cake, slide int, loop bool) *carouselView {
	if len(cake.Images) == 0 {
		return nil
	}
	c := ui.NewCarousel(len(cake.Images), slide, loop)
	v := &carouselView{
		Cake:     cake,
		Image:    cake.Images[c.Index],
		Position: c.Index + 1,
		CloseURL: path,
	}
	if c.HasPrev() {
		v.PrevURL = slideURL(path, cake.ID, c.Prev().Index)
	}
	if c.HasNext() {
		v.NextURL = slideURL(path, cake.ID, c.Next().Index)
	}
	for _, d := range c.Dots() {
		v.Dots = append(v.Dots, dotLink{URL: slideURL(path, cake.ID, d.Index), Number: d.Index + 1, Active: d.Active})
	}
	return v
}

func carouselFromQuery(r *http.Request, path string, cakes []models.Cake, loop bool) *carouselView {
	q := r.URL.Query()
	id := q.Get("view")
	if id == "" {
		return nil
	}
	cake, ok := findCake(cakes, id)
	if !ok {
		return nil
	}
	slide, _ := strconv.Atoi(q.Get("slide"))
	return newCarouselView(path, cake, slide, loop)
}

/* ========= ПУБЛИЧНЫЕ СТРАНИЦЫ ========= */

// ShowHomePage lists up to six featured cakes, newest first.
func (h *Handlers) ShowHomePage(w http.ResponseWriter, r *http.Request) {
	var toasts []ui.Toast
	cakes, err := h.backend.Rows.ListCakes(r.Context(), backend.CakeQuery{FeaturedOnly: true, Limit: featuredLimit})
	if err != nil {
		h.logger.Error("list featured cakes", zap.Error(err))
		toasts = append(toasts, ui.Failure("Failed to load cakes"))
		cakes = nil
	}

	cards := make([]cakeCard, 0, len(cakes))
	for _, c := range cakes {
		cards = append(cards, cakeCard{Cake: c, ViewURL: slideURL("/", c.ID, 0)})
	}

	h.render(w, r, http.StatusOK, "home", map[string]any{
		"Title":    "Home",
		"Cards":    cards,
		"Carousel": carouselFromQuery(r, "/", cakes, true),
	}, toasts...)
}

// ShowCategoryPage lists every cake of one category. ?enquire=<id> opens
// the enquiry form for that cake.
func (h *Handlers) ShowCategoryPage(w http.ResponseWriter, r *http.Request) {
	category := models.Category(chi.URLParam(r, "category"))
	var form *enquiryState
	if id := r.URL.Query().Get("enquire"); id != "" {
		form = &enquiryState{CakeID: id}
	}
	h.renderCategory(w, r, category, form)
}

// enquiryState is an enquiry form that should be shown open.
type enquiryState struct {
	CakeID string
	Form   enquiryForm
}

func (h *Handlers) renderCategory(w http.ResponseWriter, r *http.Request, category models.Category, open *enquiryState, extra ...ui.Toast) {
	path := categoryPath(category)
	cakes, err := h.backend.Rows.ListCakes(r.Context(), backend.CakeQuery{Category: category})
	if err != nil {
		h.logger.Error("list category cakes", zap.String("category", string(category)), zap.Error(err))
		extra = append(extra, ui.Failure("Failed to load cakes"))
		cakes = nil
	}

	cards := make([]cakeCard, 0, len(cakes))
	for _, c := range cakes {
		cards = append(cards, cakeCard{
			Cake:       c,
			ViewURL:    slideURL(path, c.ID, 0),
			EnquireURL: withQuery(path, url.Values{"enquire": {c.ID}}),
		})
	}

	data := map[string]any{
		"Title":    category.Label() + " Cakes",
		"Category": category,
		"Label":    category.Label(),
		"Cards":    cards,
		"Carousel": carouselFromQuery(r, path, cakes, false),
	}
	if open != nil {
		if cake, ok := findCake(cakes, open.CakeID); ok {
			data["Enquiry"] = &enquiryView{
				Cake:      cake,
				Action:    path + "/enquiries",
				CloseURL:  path,
				Form:      open.Form,
				CSRFField: csrf.TemplateField(r),
			}
		}
	}
	h.render(w, r, http.StatusOK, "category", data, extra...)
}
