// Package objectstore is the image upload collaborator. Implementations
// accept a binary blob plus a folder hint and return a stable URL; a failed
// upload must abort the record creation that requested it.
package objectstore

import "context"

type Store interface {
	// Upload stores data and returns a retrievable URL. Errors wrap
	// common.ErrUpload.
	Upload(ctx context.Context, folder, contentType string, data []byte) (string, error)
}
