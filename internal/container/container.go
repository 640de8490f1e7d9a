package container

import (
	"github.com/samber/do"
)

// New creates an injector with every package registered. Services are built on first invoke.
func New(options *Options) *do.Injector {
	injector := do.New()

	do.ProvideValue(injector, options)
	LoggerPackage(injector)
	RedisPackage(injector)
	PostgresPackage(injector)
	SQLitePackage(injector)
	RepositoryPackage(injector)
	GoChannelPackage(injector)
	PublisherGroupPackage(injector)
	AsyncPublishPackage(injector)
	ConsumerGroupPackage(injector)
	ServicePackage(injector)
	HTTPPackage(injector)

	return injector
}
