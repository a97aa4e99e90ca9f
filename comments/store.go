package comments

import "github.com/jonwraymond/postsync/uistate"

// Comment dialogs.
const (
	ModalAdd  uistate.Modal = "add"
	ModalEdit uistate.Modal = "edit"
)

// NewStore creates the comment selection store.
func NewStore() *uistate.Store[Comment] {
	return uistate.NewStore[Comment](ModalAdd, ModalEdit)
}
