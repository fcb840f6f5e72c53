package client

import (
	"sync/atomic"

	"github.com/kaistout4/ImageGallerySPA/api"
)

// Token identifies one issued request. Tokens increase strictly; zero means
// nothing has been issued yet.
type Token uint64

// Generation hands out request tokens
type Generation struct {
	counter atomic.Uint64
}

// Next advances the generation and returns the new token
func (g *Generation) Next() Token {
	return Token(g.counter.Add(1))
}

// Current returns the most recently issued token
func (g *Generation) Current() Token {
	return Token(g.counter.Load())
}

// State is what a view of the gallery displays
type State struct {
	Images  []api.Image
	Loading bool
	Err     error
	// Generation is the token of the request that last changed this state
	Generation Token
}

// Result is the outcome of one list or search request
type Result struct {
	Images []api.Image
	Err    error
}

// Reduce applies res, fetched under token, to prev. The result is applied
// only when token is still current; otherwise prev is returned unchanged and
// the second return value is false.
//
// A failed request keeps the previously displayed images and records the error.
func Reduce(prev State, token, current Token, res Result) (State, bool) {
	if token != current {
		return prev, false
	}

	next := State{
		Images:     res.Images,
		Generation: token,
	}

	if res.Err != nil {
		next.Images = prev.Images
		next.Err = res.Err
	}

	return next, true
}
