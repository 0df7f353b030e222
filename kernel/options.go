package kernel

// tableOptions holds configuration resolved by Option values, in the
// same style as eventloop's loopOptions/LoopOption/resolveLoopOptions
// (eventloop/options.go).
type tableOptions struct {
	password   int
	logger     Logger
	dispatcher Dispatcher
	newAS      func() AddressSpace
}

// Option configures a Table created by NewTable.
type Option interface {
	applyTable(*tableOptions)
}

type optionFunc func(*tableOptions)

func (f optionFunc) applyTable(o *tableOptions) { f(o) }

// WithPassword overrides the compile-time Password constant used by
// SchedulerLock/SchedulerUnlock. Intended for tests that want to exercise
// the BadPassword path without hard-coding the real constant twice.
func WithPassword(password int) Option {
	return optionFunc(func(o *tableOptions) { o.password = password })
}

// WithLogger overrides the diagnostic sink used by this Table. A nil
// logger is treated as NewNoOpLogger().
func WithLogger(l Logger) Option {
	return optionFunc(func(o *tableOptions) {
		if l == nil {
			l = NewNoOpLogger()
		}
		o.logger = l
	})
}

// WithDispatcher overrides the low-level context-switch primitive.
func WithDispatcher(d Dispatcher) Option {
	return optionFunc(func(o *tableOptions) { o.dispatcher = d })
}

// WithAddressSpaceFactory overrides how fresh address spaces are
// constructed by Userinit and Exec2. Defaults to NewFakeAddressSpace.
func WithAddressSpaceFactory(f func() AddressSpace) Option {
	return optionFunc(func(o *tableOptions) { o.newAS = f })
}

func resolveTableOptions(opts []Option) *tableOptions {
	cfg := &tableOptions{
		password:   Password,
		logger:     defaultLogger(),
		dispatcher: cooperativeDispatcher{},
		newAS:      NewFakeAddressSpace,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyTable(cfg)
	}
	return cfg
}
