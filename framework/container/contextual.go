package container

// ContextualBuilder implements the fluent contextual binding API. A chain
// scopes a dependency override to one or more consumers:
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(...)
//	c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) (any, error) {
//	    return filesystem.NewS3(...), nil
//	})
//
// Several consumers can share one override, as with Laravel's array form:
//
//	c.When("PhotoController", "VideoController").Needs("Filesystem").Give(...)
type ContextualBuilder struct {
	container *Container
	concretes []string
	needs     string
}

// Needs specifies which abstract the consumers depend on.
func (b *ContextualBuilder) Needs(abstract string) *ContextualBuilder {
	b.needs = abstract
	return b
}

// Give provides the factory used when any of the chain's consumers asks the
// container for the needed abstract. The override is invisible to everyone
// outside the chain.
func (b *ContextualBuilder) Give(factory Factory) {
	b.container.mu.Lock()
	defer b.container.mu.Unlock()

	for _, concrete := range b.concretes {
		m, ok := b.container.contextual[concrete]
		if !ok {
			m = make(map[string]Factory)
			b.container.contextual[concrete] = m
		}
		m[b.needs] = factory
	}
}

// GiveValue is a shorthand for Give when the override is a scalar or a
// pre-built instance (no factory logic needed).
//
//	// Laravel: ->give('/tmp/photos')
//	c.When("PhotoController").Needs("storagePath").GiveValue("/tmp/photos")
func (b *ContextualBuilder) GiveValue(value any) {
	b.Give(func(_ *Container) (any, error) { return value, nil })
}

// GiveTagged resolves everything registered under the tag and hands the
// consumers the resulting slice.
//
//	// Laravel: ->giveTagged('reports')
//	c.Tag([]string{"reports.daily", "reports.weekly"}, "reports")
//	c.When("dashboard").Needs("reports").GiveTagged("reports")
func (b *ContextualBuilder) GiveTagged(tag string) {
	b.Give(func(c *Container) (any, error) { return c.Tagged(tag) })
}
