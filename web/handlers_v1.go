package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) ListCelebrities(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	items, err := h.content.ListCelebrities(r.Context(), limit, offset)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewList(items, viewCelebrity))
}

func (h *Handler) GetCelebrity(w http.ResponseWriter, r *http.Request) {
	c, err := h.content.GetCelebrity(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "celebrity not found")
		return
	}
	writeData(w, http.StatusOK, viewCelebrity(c))
}

func (h *Handler) ListCelebrityOutfits(w http.ResponseWriter, r *http.Request) {
	c, err := h.content.GetCelebrity(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "celebrity not found")
		return
	}
	limit, offset := pageParams(r)
	items, err := h.content.ListOutfits(r.Context(), c.ID, limit, offset)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewList(items, viewOutfit))
}

func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	items, err := h.content.ListMovies(r.Context(), limit, offset)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewList(items, viewMovie))
}

func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	m, err := h.content.GetMovie(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "movie not found")
		return
	}
	writeData(w, http.StatusOK, viewMovie(m))
}

func (h *Handler) ListMovieReviews(w http.ResponseWriter, r *http.Request) {
	m, err := h.content.GetMovie(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "movie not found")
		return
	}
	limit, offset := pageParams(r)
	items, err := h.content.ListReviews(r.Context(), m.ID, limit, offset)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewList(items, viewReview))
}

func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	items, err := h.content.ListNews(r.Context(), limit, offset)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewList(items, viewNews))
}

func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	n, err := h.content.GetNews(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "article not found")
		return
	}
	writeData(w, http.StatusOK, viewNews(n))
}

func (h *Handler) GetOutfit(w http.ResponseWriter, r *http.Request) {
	o, err := h.content.GetOutfit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "outfit not found")
		return
	}
	writeData(w, http.StatusOK, viewOutfit(o))
}

func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	rev, err := h.content.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "review not found")
		return
	}
	writeData(w, http.StatusOK, viewReview(rev))
}

// GetUsage reports the caller's own quota standing. The call itself is
// metered like any other.
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	d := decisionFrom(r.Context())
	k := d.Key

	endpoints := make([]map[string]any, 0, len(k.Usage.Endpoints))
	for _, e := range k.Usage.Endpoints {
		endpoints = append(endpoints, map[string]any{
			"endpoint": e.Endpoint,
			"count":    e.Count,
		})
	}

	writeData(w, http.StatusOK, map[string]any{
		"plan":         string(k.PlanID),
		"quota":        newQuotaBody(d.Quota.Used, d.Quota.Total, d.Quota.ResetsOn),
		"lifetimeHits": k.Usage.LifetimeHits,
		"endpoints":    endpoints,
	})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
