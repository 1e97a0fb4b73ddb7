// Package media describes images kept on the external media host.
package media

import "errors"

var ErrNotImage = errors.New("payload is not an image")

// Image is an uploaded object: URL is public, ID is what deletes it.
type Image struct {
	URL string
	ID  string
}
