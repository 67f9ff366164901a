package post

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"blog-service/internal/group"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/shared/validate"
	"blog-service/internal/user"
)

const maxUpload = 10 << 20

type Handler struct {
	svc    Service
	groups group.Repository
}

func NewHandler(s Service, groups group.Repository) *Handler {
	return &Handler{svc: s, groups: groups}
}

type formDoc struct {
	Form   Form                 `json:"form"`
	Errors validate.FieldErrors `json:"errors,omitempty"`
	Groups []group.Group        `json:"groups"`
	IsEdit bool                 `json:"is_edit"`
	PostID uint64               `json:"post_id,omitempty"`
}

func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) error {
	groups, err := h.groups.List(r.Context())
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, formDoc{Groups: groups}, http.StatusOK)
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	who, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	in, img, err := readForm(r)
	if err != nil {
		return err
	}
	groups, err := h.groups.List(r.Context())
	if err != nil {
		return err
	}
	if fe := ValidateForm(&in, img, groups); !fe.Empty() {
		httpx.WriteJSON(w, formDoc{Form: in, Errors: fe, Groups: groups}, http.StatusOK)
		return nil
	}
	author := user.User{ID: who.ID, Username: who.Username}
	if _, err := h.svc.Create(r.Context(), author, in, img); err != nil {
		if errors.Is(err, ErrImagesDisabled) {
			httpx.WriteJSON(w, formDoc{Form: in, Errors: validate.FieldErrors{"image": err.Error()}, Groups: groups}, http.StatusOK)
			return nil
		}
		return err
	}
	return httpx.Redirect(w, r, profileURL(who.Username))
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) error {
	p, ok, err := h.editable(w, r)
	if err != nil || !ok {
		return err
	}
	groups, err := h.groups.List(r.Context())
	if err != nil {
		return err
	}
	in := Form{Text: p.Text, Group: p.GroupID}
	httpx.WriteJSON(w, formDoc{Form: in, Groups: groups, IsEdit: true, PostID: p.ID}, http.StatusOK)
	return nil
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) error {
	p, ok, err := h.editable(w, r)
	if err != nil || !ok {
		return err
	}
	in, img, err := readForm(r)
	if err != nil {
		return err
	}
	groups, err := h.groups.List(r.Context())
	if err != nil {
		return err
	}
	if fe := ValidateForm(&in, img, groups); !fe.Empty() {
		httpx.WriteJSON(w, formDoc{Form: in, Errors: fe, Groups: groups, IsEdit: true, PostID: p.ID}, http.StatusOK)
		return nil
	}
	if _, err := h.svc.Update(r.Context(), p, in, img); err != nil {
		if errors.Is(err, ErrImagesDisabled) {
			httpx.WriteJSON(w, formDoc{Form: in, Errors: validate.FieldErrors{"image": err.Error()}, Groups: groups, IsEdit: true, PostID: p.ID}, http.StatusOK)
			return nil
		}
		return err
	}
	return httpx.Redirect(w, r, detailURL(p.ID))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	p, ok, err := h.editable(w, r)
	if err != nil || !ok {
		return err
	}
	if err := h.svc.Delete(r.Context(), p); err != nil {
		return err
	}
	return httpx.Redirect(w, r, profileURL(p.Author.Username))
}

// editable loads the post from the path and runs the author guard. When the
// caller is not the author it redirects to the post and returns ok=false.
func (h *Handler) editable(w http.ResponseWriter, r *http.Request) (*Post, bool, error) {
	who, err := httpx.UserFromCtx(r)
	if err != nil {
		return nil, false, err
	}
	id, err := httpx.PathUint(r, "post_id")
	if err != nil {
		return nil, false, err
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, httpx.NotFound(err)
		}
		return nil, false, err
	}
	if !CanEdit(&user.User{ID: who.ID, Username: who.Username}, p) {
		return nil, false, httpx.Redirect(w, r, detailURL(p.ID))
	}
	return p, true, nil
}

func readForm(r *http.Request) (Form, *Image, error) {
	if !httpx.IsForm(r) {
		in, err := httpx.Decode[Form](r)
		if errors.Is(err, io.EOF) {
			// empty body: let validation report the missing text
			return Form{}, nil, nil
		}
		return in, nil, err
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			return Form{}, nil, httpx.BadRequest(err)
		}
	}
	in := Form{Text: r.PostFormValue("text")}
	if g := strings.TrimSpace(r.PostFormValue("group")); g != "" {
		id, err := strconv.ParseUint(g, 10, 64)
		if err != nil {
			// 0 never matches a group, so validation reports it
			id = 0
		}
		in.Group = &id
	}
	img, err := readImage(r)
	return in, img, err
}

func readImage(r *http.Request) (*Image, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, hdr, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, httpx.BadRequest(err)
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUpload))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	ct := hdr.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return &Image{Filename: hdr.Filename, ContentType: ct, Data: data}, nil
}

func profileURL(username string) string { return "/profile/" + url.PathEscape(username) + "/" }
func detailURL(id uint64) string        { return "/posts/" + strconv.FormatUint(id, 10) + "/" }
