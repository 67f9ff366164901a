package post

import (
	"strings"

	"blog-service/internal/group"
	"blog-service/internal/shared/validate"
	"blog-service/internal/user"
)

// CanEdit reports whether u may change or delete p. Only the author can.
func CanEdit(u *user.User, p *Post) bool {
	return u != nil && p != nil && u.ID != 0 && u.ID == p.AuthorID
}

// ValidateForm trims the text, checks it is present, that the chosen group
// is one of groups and that an attached file looks like an image.
func ValidateForm(in *Form, img *Image, groups []group.Group) validate.FieldErrors {
	in.Text = strings.TrimSpace(in.Text)
	fe := validate.Fields(in)
	if fe == nil {
		fe = validate.FieldErrors{}
	}
	if in.Group != nil && !knownGroup(*in.Group, groups) {
		fe.Add("group", "select a valid choice")
	}
	if img != nil && !strings.HasPrefix(img.ContentType, "image/") {
		fe.Add("image", "upload a valid image")
	}
	if fe.Empty() {
		return nil
	}
	return fe
}

func knownGroup(id uint64, groups []group.Group) bool {
	for _, g := range groups {
		if g.ID == id {
			return true
		}
	}
	return false
}
