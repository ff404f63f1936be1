package engine

// Module is a title: the code that turns the engine into an application.
// Initialize is called once after the platform, window and renderer are up.
// The module registers against the engine callback slots it needs and is
// expected to deregister them from its own Cleanup handler.
type Module interface {
	Initialize(e *Engine) error
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(e *Engine) error

func (f ModuleFunc) Initialize(e *Engine) error { return f(e) }
