package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfeed/starfeed/app"
	"github.com/starfeed/starfeed/domain/order"
)

// AdminLogin exchanges operator credentials for a bearer token.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}

	token, u, err := h.userSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUserSuspended):
			writeError(w, http.StatusForbidden, CodeForbidden, "account suspended")
		case errors.Is(err, app.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid credentials")
		default:
			h.internalError(w, r, err)
		}
		return
	}
	if u.Role != "admin" && u.Role != "superadmin" {
		writeError(w, http.StatusForbidden, CodeForbidden, "admin role required")
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":    u.ID,
			"email": u.Email,
			"name":  u.Name,
			"role":  u.Role,
		},
	})
}

// AdminListOrders lists orders by status, or by owner when ownerId is
// given.
func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	limit = app.ClampLimit(limit)

	if ownerID := r.URL.Query().Get("ownerId"); ownerID != "" {
		orders, err := h.orders.ListByOwner(r.Context(), ownerID, limit, offset)
		if err != nil {
			h.internalError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, viewList(orders, viewOrder))
		return
	}

	status := order.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = order.StatusCreated
	}
	orders, err := h.orders.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewList(orders, viewOrder))
}

// AdminManualCredit re-applies the quota credit for a paid order.
// Superadmin only: this hands out quota outside the normal flow.
func (h *Handler) AdminManualCredit(w http.ResponseWriter, r *http.Request) {
	if !requireSuperadmin(w, r) {
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}

	o, err := h.checkout.ManualCredit(r.Context(), chi.URLParam(r, "id"), req.Note)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, CodeNotFound, "order not found")
		case errors.Is(err, app.ErrNotPaid):
			writeError(w, http.StatusConflict, CodeConflict, "order is not paid")
		default:
			h.internalError(w, r, err)
		}
		return
	}
	writeData(w, http.StatusOK, viewOrder(o))
}

// AdminRefund marks a paid order refunded with an operator note.
func (h *Handler) AdminRefund(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.checkout.Refund(r.Context(), id, req.Note); err != nil {
		switch {
		case errors.Is(err, app.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, CodeNotFound, "order not found")
		case errors.Is(err, app.ErrNotPaid):
			writeError(w, http.StatusConflict, CodeConflict, "order is not paid")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewOrder(o))
}

// AdminCreateUser registers an account.
func (h *Handler) AdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	// Only a superadmin may mint privileged accounts.
	if req.Role != "" && req.Role != "user" && !requireSuperadmin(w, r) {
		return
	}

	u, err := h.userSvc.Register(r.Context(), req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	writeData(w, http.StatusCreated, map[string]string{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"role":  u.Role,
	})
}

// AdminIssueKey issues a key for a user. With rotate=true an existing
// active key is revoked and replaced, carrying its plan.
func (h *Handler) AdminIssueKey(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var (
		raw string
		err error
	)
	if r.URL.Query().Get("rotate") == "true" {
		raw, _, err = h.keySvc.Rotate(r.Context(), userID)
	} else {
		raw, _, err = h.keySvc.Issue(r.Context(), userID)
	}
	if err != nil {
		writeError(w, http.StatusConflict, CodeConflict, err.Error())
		return
	}

	// The raw secret is returned exactly once and never stored.
	writeData(w, http.StatusCreated, map[string]string{
		"userId": userID,
		"apiKey": raw,
	})
}

// AdminRevokeKey revokes a key by id.
func (h *Handler) AdminRevokeKey(w http.ResponseWriter, r *http.Request) {
	if err := h.keySvc.Revoke(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "key not found")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// ----- Content writes -----

func (h *Handler) AdminCreateCelebrity(w http.ResponseWriter, r *http.Request) {
	var v celebrityView
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	c, err := h.content.CreateCelebrity(r.Context(), v.toDomain())
	if err != nil {
		h.writeContentError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, viewCelebrity(c))
}

func (h *Handler) AdminUpdateCelebrity(w http.ResponseWriter, r *http.Request) {
	var v celebrityView
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	d := v.toDomain()
	d.ID = chi.URLParam(r, "id")
	c, err := h.content.UpdateCelebrity(r.Context(), d)
	if err != nil {
		h.writeContentError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewCelebrity(c))
}

func (h *Handler) AdminDeleteCelebrity(w http.ResponseWriter, r *http.Request) {
	h.deleteContent(w, r, h.content.DeleteCelebrity)
}

func (h *Handler) AdminCreateMovie(w http.ResponseWriter, r *http.Request) {
	var v movieView
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	m, err := h.content.CreateMovie(r.Context(), v.toDomain())
	if err != nil {
		h.writeContentError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, viewMovie(m))
}

func (h *Handler) AdminUpdateMovie(w http.ResponseWriter, r *http.Request) {
	var v movieView
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	d := v.toDomain()
	d.ID = chi.URLParam(r, "id")
	m, err := h.content.UpdateMovie(r.Context(), d)
	if err != nil {
		h.writeContentError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewMovie(m))
}

func (h *Handler) AdminDeleteMovie(w http.ResponseWriter, r *http.Request) {
	h.deleteContent(w, r, h.content.DeleteMovie)
}

func (h *Handler) AdminCreateNews(w http.ResponseWriter, r *http.Request) {
	var v newsView
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	n, err := h.content.CreateNews(r.Context(), v.toDomain())
	if err != nil {
		h.writeContentError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, viewNews(n))
}

func (h *Handler) AdminUpdateNews(w http.ResponseWriter, r *http.Request) {
	var v newsView
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	d := v.toDomain()
	d.ID = chi.URLParam(r, "id")
	n, err := h.content.UpdateNews(r.Context(), d)
	if err != nil {
		h.writeContentError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewNews(n))
}

func (h *Handler) AdminDeleteNews(w http.ResponseWriter, r *http.Request) {
	h.deleteContent(w, r, h.content.DeleteNews)
}

func (h *Handler) AdminCreateOutfit(w http.ResponseWriter, r *http.Request) {
	var v outfitView
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	o, err := h.content.CreateOutfit(r.Context(), v.toDomain())
	if err != nil {
		h.writeContentError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, viewOutfit(o))
}

func (h *Handler) AdminUpdateOutfit(w http.ResponseWriter, r *http.Request) {
	var v outfitView
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	d := v.toDomain()
	d.ID = chi.URLParam(r, "id")
	o, err := h.content.UpdateOutfit(r.Context(), d)
	if err != nil {
		h.writeContentError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewOutfit(o))
}

func (h *Handler) AdminDeleteOutfit(w http.ResponseWriter, r *http.Request) {
	h.deleteContent(w, r, h.content.DeleteOutfit)
}

func (h *Handler) AdminCreateReview(w http.ResponseWriter, r *http.Request) {
	var v reviewView
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	rev, err := h.content.CreateReview(r.Context(), v.toDomain())
	if err != nil {
		h.writeContentError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, viewReview(rev))
}

func (h *Handler) AdminDeleteReview(w http.ResponseWriter, r *http.Request) {
	h.deleteContent(w, r, h.content.DeleteReview)
}

func (h *Handler) deleteContent(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id string) error) {
	if err := del(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeContentError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) writeContentError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid app.ErrInvalidContent
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, CodeBadRequest, invalid.Problem)
	case errors.Is(err, app.ErrContentNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
	default:
		h.internalError(w, r, err)
	}
}
