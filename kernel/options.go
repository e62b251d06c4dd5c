package kernel

// Option configures the construction of identity-bearing objects (Identity, Entity, AggregateRoot).
type Option func(*identityConfig)

type identityConfig struct {
	id        ID
	generator IDGenerator
	registrar Registrar
}

// WithID uses the given ID instead of generating one. An empty ID is ignored.
func WithID(id ID) Option {
	return func(c *identityConfig) {
		c.id = id
	}
}

// WithIDGenerator sets the generator invoked when no ID was supplied.
// Concrete identity-bearing types pass their own generator here; NewUUID is used when none is set.
func WithIDGenerator(generator IDGenerator) Option {
	return func(c *identityConfig) {
		if generator != nil {
			c.generator = generator
		}
	}
}

// WithRegistrar makes an AggregateRoot register itself with the given Registrar whenever it records an event.
// It has no effect on plain identities and entities.
func WithRegistrar(registrar Registrar) Option {
	return func(c *identityConfig) {
		c.registrar = registrar
	}
}

func buildIdentityConfig(options []Option) identityConfig {
	config := identityConfig{generator: NewUUID}

	for _, option := range options {
		if option != nil {
			option(&config)
		}
	}

	if config.id.IsEmpty() {
		config.id = config.generator()
	}

	return config
}
