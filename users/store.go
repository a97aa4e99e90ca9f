package users

import "github.com/jonwraymond/postsync/uistate"

// ModalProfile is the profile dialog.
const ModalProfile uistate.Modal = "profile"

// NewStore creates the user selection store.
func NewStore() *uistate.Store[Profile] {
	return uistate.NewStore[Profile](ModalProfile)
}
