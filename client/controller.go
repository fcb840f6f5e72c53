package client

import (
	"context"
	"sync"

	"github.com/kaistout4/ImageGallerySPA/api"
	"github.com/rs/zerolog/log"
)

// Fetcher performs the list and search requests on behalf of a Controller
type Fetcher interface {
	ListImages(ctx context.Context, credential string) ([]api.Image, error)
	SearchImages(ctx context.Context, credential, query string) ([]api.Image, error)
}

// Controller issues list and search requests and keeps only the result of
// the most recently issued one. Superseded requests are never cancelled;
// their results are dropped when they arrive.
type Controller struct {
	fetcher Fetcher
	gen     Generation

	mu          sync.Mutex
	credential  string
	state       State
	subscribers map[int]func(State)
	nextSubID   int
	// pending holds state changes not yet delivered, in the order they happened
	pending    []State
	delivering bool

	inflight sync.WaitGroup
}

func NewController(fetcher Fetcher) *Controller {
	return &Controller{
		fetcher:     fetcher,
		subscribers: make(map[int]func(State)),
	}
}

// SetCredential replaces the bearer token used for requests. Acquiring a
// credential issues the initial load; clearing it stops further requests
// and drops results still in flight.
func (c *Controller) SetCredential(ctx context.Context, credential string) {
	c.mu.Lock()
	prev := c.credential
	c.credential = credential

	if credential == "" {
		if prev == "" {
			c.mu.Unlock()
			return
		}
		// results issued under the old credential are now stale
		c.state = State{Generation: c.gen.Next()}
		c.pending = append(c.pending, c.state)
		c.mu.Unlock()
		c.deliver()
		return
	}
	c.mu.Unlock()

	if prev == "" {
		c.Load(ctx)
	}
}

// Load issues a request for every image. It returns the request's token, or
// false when there is no credential to issue it with.
func (c *Controller) Load(ctx context.Context) (Token, bool) {
	return c.issue(ctx, func(ctx context.Context, credential string) ([]api.Image, error) {
		return c.fetcher.ListImages(ctx, credential)
	})
}

// Search issues a request for images whose name contains query. An empty
// query lists every image.
func (c *Controller) Search(ctx context.Context, query string) (Token, bool) {
	if query == "" {
		return c.Load(ctx)
	}

	return c.issue(ctx, func(ctx context.Context, credential string) ([]api.Image, error) {
		return c.fetcher.SearchImages(ctx, credential, query)
	})
}

// State returns a snapshot of the displayed state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to be called after every applied state change.
// Calls are made one at a time and in the order the changes happened, without
// the controller's lock held. The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Wait blocks until every issued request has resolved
func (c *Controller) Wait() {
	c.inflight.Wait()
}

type fetchFunc func(ctx context.Context, credential string) ([]api.Image, error)

func (c *Controller) issue(ctx context.Context, fetch fetchFunc) (Token, bool) {
	c.mu.Lock()
	credential := c.credential
	if credential == "" {
		c.mu.Unlock()
		log.Debug().Msg("No credential, request not issued")
		return 0, false
	}

	token := c.gen.Next()
	c.state.Loading = true
	c.state.Generation = token
	c.pending = append(c.pending, c.state)
	c.mu.Unlock()

	c.deliver()

	c.inflight.Go(func() {
		images, err := fetch(ctx, credential)
		c.apply(token, Result{Images: images, Err: err})
	})

	return token, true
}

func (c *Controller) apply(token Token, res Result) {
	c.mu.Lock()
	next, applied := Reduce(c.state, token, c.gen.Current(), res)
	if !applied {
		c.mu.Unlock()
		log.Debug().Uint64("token", uint64(token)).Msg("Discarded stale response")
		return
	}

	c.state = next
	c.pending = append(c.pending, next)
	c.mu.Unlock()

	if res.Err != nil {
		log.Warn().Err(res.Err).Uint64("token", uint64(token)).Msg("Image request failed")
	}

	c.deliver()
}

// deliver hands pending states to subscribers. Only one goroutine delivers at
// a time; a caller that finds delivery in progress leaves its states to it.
func (c *Controller) deliver() {
	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true

	for len(c.pending) > 0 {
		batch := c.pending
		c.pending = nil
		subs := c.subscriberList()
		c.mu.Unlock()

		for _, state := range batch {
			notify(subs, state)
		}

		c.mu.Lock()
	}

	c.delivering = false
	c.mu.Unlock()
}

// subscriberList must be called with mu held
func (c *Controller) subscriberList() []func(State) {
	subs := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), state State) {
	for _, fn := range subs {
		fn(state)
	}
}
