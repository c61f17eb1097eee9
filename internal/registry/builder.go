package registry

// EventBuilder is the first half of the fluent On(...).DoIt(...) form.
type EventBuilder struct {
	event string
}

// On starts a binding for event.
func On(event string) EventBuilder {
	return EventBuilder{event: event}
}

// DoIt completes the binding with its handler.
func (b EventBuilder) DoIt(handler Handler) Binding {
	return Binding{Event: b.event, Handler: handler}
}
