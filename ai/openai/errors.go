package openai

import "errors"

// ErrUnexpectedResponse indicates the service returned a different number
// of embeddings than texts sent.
var ErrUnexpectedResponse = errors.New("unexpected embedding response")
