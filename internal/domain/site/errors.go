package site

import "errors"

var (
	ErrSiteNotFound   = errors.New("site not found")
	ErrSiteNameExists = errors.New("site with this name already exists")
	ErrSiteInUse      = errors.New("site still has shifts or slots assigned")
)
