package posts

import "github.com/jonwraymond/postsync/uistate"

// Post dialogs.
const (
	ModalAdd    uistate.Modal = "add"
	ModalEdit   uistate.Modal = "edit"
	ModalDetail uistate.Modal = "detail"
)

// NewStore creates the post selection store.
func NewStore() *uistate.Store[Post] {
	return uistate.NewStore[Post](ModalAdd, ModalEdit, ModalDetail)
}
