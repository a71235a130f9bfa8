package repositories

import "errors"

// Domain errors returned by repositories. Handlers map them onto
// conflict or not-found responses.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyConnected = errors.New("users are already connected")
	ErrRequestPending   = errors.New("a connection request between these users is already pending")
	ErrRequestRejected  = errors.New("a connection request between these users was rejected")
	ErrAlreadyLiked     = errors.New("post already liked")
	ErrNotLiked         = errors.New("post not liked")
)
