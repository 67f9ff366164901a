package feed

import (
	"errors"
	"net/http"

	"blog-service/internal/group"
	"blog-service/internal/paginate"
	"blog-service/internal/post"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/user"
)

type Handler struct{ a *Assembler }

func NewHandler(a *Assembler) *Handler { return &Handler{a: a} }

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) error {
	f, err := h.a.Home(r.Context(), pageNumber(r))
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, f, http.StatusOK)
	return nil
}

func (h *Handler) Group(w http.ResponseWriter, r *http.Request) error {
	f, err := h.a.Group(r.Context(), r.PathValue("slug"), pageNumber(r))
	if err != nil {
		return mapErr(err)
	}
	httpx.WriteJSON(w, f, http.StatusOK)
	return nil
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) error {
	var viewer uint64
	if who, err := httpx.UserFromCtx(r); err == nil {
		viewer = who.ID
	}
	f, err := h.a.Profile(r.Context(), r.PathValue("username"), viewer, pageNumber(r))
	if err != nil {
		return mapErr(err)
	}
	httpx.WriteJSON(w, f, http.StatusOK)
	return nil
}

func (h *Handler) Following(w http.ResponseWriter, r *http.Request) error {
	who, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	f, err := h.a.Following(r.Context(), who.ID, pageNumber(r))
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, f, http.StatusOK)
	return nil
}

func (h *Handler) PostDetail(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.PathUint(r, "post_id")
	if err != nil {
		return err
	}
	var viewer uint64
	if who, err := httpx.UserFromCtx(r); err == nil {
		viewer = who.ID
	}
	d, err := h.a.PostDetail(r.Context(), id, viewer)
	if err != nil {
		return mapErr(err)
	}
	httpx.WriteJSON(w, d, http.StatusOK)
	return nil
}

func pageNumber(r *http.Request) int {
	return paginate.ParseNumber(r.URL.Query().Get("page"))
}

func mapErr(err error) error {
	if errors.Is(err, group.ErrNotFound) || errors.Is(err, user.ErrNotFound) || errors.Is(err, post.ErrNotFound) {
		return httpx.NotFound(err)
	}
	return err
}
