package social

import (
	"errors"
	"net/http"
	"net/url"

	"blog-service/internal/shared/httpx"
	"blog-service/internal/user"
)

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) error {
	who, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	username := r.PathValue("username")
	if _, err := h.svc.Follow(r.Context(), who.ID, username); err != nil {
		return mapErr(err)
	}
	return httpx.Redirect(w, r, profileURL(username))
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) error {
	who, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	username := r.PathValue("username")
	if _, err := h.svc.Unfollow(r.Context(), who.ID, username); err != nil {
		return mapErr(err)
	}
	return httpx.Redirect(w, r, profileURL(username))
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func mapErr(err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return httpx.NotFound(err)
	}
	return err
}
