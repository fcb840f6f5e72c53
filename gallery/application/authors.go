package application

import (
	"context"

	"github.com/kaistout4/ImageGallerySPA/gallery/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// authorLookup is the outcome of resolving one author id
type authorLookup struct {
	author   domain.Author
	resolved bool
}

// enrich pairs every image with its author. Each distinct author is looked up
// once; authors that cannot be resolved get a placeholder identity.
func (s *ImageService) enrich(ctx context.Context, images []*domain.Image) []*domain.Entry {
	authors := s.resolveAuthors(ctx, distinctAuthors(images))

	entries := make([]*domain.Entry, len(images))
	for i, img := range images {
		entries[i] = &domain.Entry{
			Image:  img,
			Author: authors[img.AuthorID].author,
		}
	}

	return entries
}

func (s *ImageService) resolveAuthors(ctx context.Context, ids []string) map[string]authorLookup {
	results := make([]authorLookup, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookupConcurrency)

	for i, id := range ids {
		g.Go(func() error {
			results[i] = s.lookupAuthor(gctx, id)
			return nil
		})
	}
	// lookups never return an error; failures become placeholders
	_ = g.Wait()

	byID := make(map[string]authorLookup, len(ids))
	unresolved := 0
	for i, id := range ids {
		byID[id] = results[i]
		if !results[i].resolved {
			unresolved++
		}
	}

	if unresolved > 0 {
		log.Debug().Int("authors", len(ids)).Int("unresolved", unresolved).Msg("Substituted placeholder authors")
	}

	return byID
}

func (s *ImageService) lookupAuthor(ctx context.Context, id string) authorLookup {
	a, err := s.users.GetUser(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("authorID", id).Msg("Failed to resolve author")
		return authorLookup{author: domain.UnknownAuthor(id)}
	}
	if a == nil {
		return authorLookup{author: domain.UnknownAuthor(id)}
	}

	return authorLookup{author: *a, resolved: true}
}

// distinctAuthors returns author ids in first-seen order
func distinctAuthors(images []*domain.Image) []string {
	seen := make(map[string]struct{}, len(images))
	ids := make([]string, 0, len(images))

	for _, img := range images {
		if _, ok := seen[img.AuthorID]; ok {
			continue
		}
		seen[img.AuthorID] = struct{}{}
		ids = append(ids, img.AuthorID)
	}

	return ids
}
