package user

import (
	"errors"
	"net/http"
	"strings"

	"blog-service/internal/shared/httpx"
	"blog-service/internal/shared/jwt"
	"blog-service/internal/shared/validate"
)

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) error {
	in, err := readCredentials[SignupReq](r)
	if err != nil {
		return err
	}
	if fe := validate.Fields(in); !fe.Empty() {
		httpx.WriteJSON(w, map[string]any{"errors": fe}, http.StatusBadRequest)
		return nil
	}
	u, err := h.svc.Signup(r.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			httpx.WriteJSON(w, map[string]any{"errors": validate.FieldErrors{"username": err.Error()}}, http.StatusBadRequest)
			return nil
		}
		return err
	}
	return h.issue(w, r, u, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	in, err := readCredentials[LoginReq](r)
	if err != nil {
		return err
	}
	if fe := validate.Fields(in); !fe.Empty() {
		httpx.WriteJSON(w, map[string]any{"errors": fe}, http.StatusBadRequest)
		return nil
	}
	u, err := h.svc.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			return httpx.WithStatus(http.StatusUnauthorized, err)
		}
		return err
	}
	return h.issue(w, r, u, http.StatusOK)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, u *User, code int) error {
	tok, err := jwt.Make(u.ID, u.Username)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if next := r.URL.Query().Get("next"); safeNext(next) {
		return httpx.Redirect(w, r, next)
	}
	httpx.WriteJSON(w, map[string]any{"user": u, "token": tok}, code)
	return nil
}

// safeNext only allows local absolute paths.
func safeNext(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\")
}

func readCredentials[T SignupReq | LoginReq](r *http.Request) (T, error) {
	if !httpx.IsForm(r) {
		return httpx.Decode[T](r)
	}
	var t T
	username, password := r.PostFormValue("username"), r.PostFormValue("password")
	switch p := any(&t).(type) {
	case *SignupReq:
		p.Username, p.Password = username, password
	case *LoginReq:
		p.Username, p.Password = username, password
	}
	return t, nil
}
