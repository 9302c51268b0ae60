package httpx

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"blog/internal/storage"
)

type postForm struct {
	Text    string
	GroupID string
	Errors  map[string]string
}

func (f *postForm) parse(r *http.Request) {
	_ = r.ParseForm()
	f.Text = strings.TrimSpace(r.FormValue("text"))
	f.GroupID = strings.TrimSpace(r.FormValue("group"))
}

// validate reports whether the submission is acceptable and resolves the
// optional group reference to its id.
func (f *postForm) validate(ctx context.Context, store storage.Store) (*int64, bool) {
	f.Errors = make(map[string]string)

	if f.Text == "" {
		f.Errors["text"] = "Text is required"
	}

	var groupID *int64
	if f.GroupID != "" {
		id, err := strconv.ParseInt(f.GroupID, 10, 64)
		if err == nil {
			_, err = store.GetGroupByID(ctx, id)
		}
		if err != nil {
			f.Errors["group"] = "Choose an existing group"
		} else {
			groupID = &id
		}
	}

	return groupID, len(f.Errors) == 0
}

type authForm struct {
	Username string
	Errors   map[string]string
}

func (f *authForm) fail(msg string) {
	if f.Errors == nil {
		f.Errors = make(map[string]string)
	}
	f.Errors["form"] = msg
}
