package container

import (
	"github.com/samber/do"
	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

// ServicePackage provides the shortening service and its resolver.
func ServicePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		visited := do.MustInvoke[*messaging.AsyncPublisher[shortener.VisitedEvent]](i)
		created := do.MustInvoke[*messaging.AsyncPublisher[shortener.CreatedEvent]](i)

		repo, err := do.Invoke[shortener.Repository](i)
		if err != nil {
			return nil, err
		}

		generator, err := shortener.NewCodeGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		resolver := shortener.NewResolver(
			repo,
			visited.Publish,
			logger,
		)

		return shortener.NewService(
			repo,
			generator,
			resolver,
			created.Publish,
			logger,
			shortener.WithMaxAttempts(opts.MaxAttempts),
		), nil
	})
}
