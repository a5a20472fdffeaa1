package main

import (
	"golang.org/x/sync/errgroup"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	g, ctx := errgroup.WithContext(deps.Ctx)

	deps.Scheduler.Start(ctx)
	g.Go(func() error {
		<-ctx.Done()
		deps.Scheduler.Stop()
		return nil
	})

	g.Go(func() error {
		return deps.Server.ListenAndServe(ctx, c.Addr)
	})

	return g.Wait()
}
