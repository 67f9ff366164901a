package comment

import (
	"errors"
	"net/http"
	"strconv"

	"blog-service/internal/shared/httpx"
)

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

// Add stores a comment and always sends the caller back to the post.
// Empty text is dropped silently.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) error {
	who, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	postID, err := httpx.PathUint(r, "post_id")
	if err != nil {
		return err
	}
	var in Form
	if httpx.IsForm(r) {
		in.Text = r.PostFormValue("text")
	} else if in, err = httpx.Decode[Form](r); err != nil {
		return err
	}
	if _, err := h.svc.Add(r.Context(), postID, who.ID, in); err != nil {
		switch {
		case errors.Is(err, ErrPostNotFound):
			return httpx.NotFound(err)
		case !errors.Is(err, ErrEmpty):
			return err
		}
	}
	return httpx.Redirect(w, r, "/posts/"+strconv.FormatUint(postID, 10)+"/")
}
