package domain

import "errors"

// ErrImageDecode marks a payload that could not be turned into an image:
// malformed base64 or bytes no decoder recognizes. Callers can use errors.Is
// to tell a bad payload apart from embedder or index failures.
var ErrImageDecode = errors.New("image decode failed")
