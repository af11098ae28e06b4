package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/sangam/internal/ordering"
	"github.com/erazemk/sangam/internal/store"
)

// checkConcurrency bounds how many scopes are verified at once.
const checkConcurrency = 4

// ScopeReport is the integrity state of one ordering scope.
type ScopeReport struct {
	Kind     string `json:"kind"` // "slides" or "announcements"
	Scope    string `json:"scope"`
	Items    int    `json:"items"`
	Broken   bool   `json:"broken"`
	Repaired int    `json:"repaired,omitempty"`
}

// CheckContent verifies that every slide and announcement scope is numbered
// 1..N. With repair set, broken scopes are renumbered keeping their relative
// order, each in its own transaction.
func CheckContent(ctx context.Context, content store.ContentStore, repair bool) ([]ScopeReport, error) {
	shows, err := content.Slideshows().List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing slideshows: %w", err)
	}
	pages, err := content.Announcements().ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing announcement pages: %w", err)
	}

	type job struct {
		kind, scope string
		repo        func(store.ContentRepos) ordering.Repository
	}
	var jobs []job
	for _, s := range shows {
		jobs = append(jobs, job{"slides", s.ID, func(r store.ContentRepos) ordering.Repository { return r.Slides() }})
	}
	for _, p := range pages {
		jobs = append(jobs, job{"announcements", p, func(r store.ContentRepos) ordering.Repository { return r.Announcements() }})
	}

	var (
		mu      sync.Mutex
		reports = make([]ScopeReport, 0, len(jobs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkConcurrency)
	for _, j := range jobs {
		g.Go(func() error {
			rep, err := checkScope(gctx, content, j.kind, j.scope, j.repo, repair)
			if err != nil {
				return err
			}
			mu.Lock()
			reports = append(reports, rep)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, k int) bool {
		if reports[i].Kind != reports[k].Kind {
			return reports[i].Kind > reports[k].Kind
		}
		return reports[i].Scope < reports[k].Scope
	})
	return reports, nil
}

func checkScope(ctx context.Context, content store.ContentStore, kind, scope string,
	repo func(store.ContentRepos) ordering.Repository, repair bool) (ScopeReport, error) {
	rep := ScopeReport{Kind: kind, Scope: scope}

	m := ordering.NewManager(repo(content))
	err := m.Verify(ctx, scope)
	switch {
	case errors.Is(err, ordering.ErrNotContiguous):
		rep.Broken = true
	case err != nil:
		return rep, fmt.Errorf("verifying %s %s: %w", kind, scope, err)
	}
	if rep.Items, err = repo(content).CountInScope(ctx, scope); err != nil {
		return rep, fmt.Errorf("counting %s %s: %w", kind, scope, err)
	}
	if !rep.Broken || !repair {
		return rep, nil
	}

	err = content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		n, err := ordering.NewManager(repo(tx)).Normalize(ctx, scope)
		rep.Repaired = n
		return err
	})
	if err != nil {
		return rep, fmt.Errorf("repairing %s %s: %w", kind, scope, err)
	}
	return rep, nil
}
