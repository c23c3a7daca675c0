package event

// Subscription is the handle returned by On and OnScoped. It identifies one
// registration so it can be removed later with Off.
type Subscription struct {
	id      string
	topic   Topic
	scope   string
	handler Handler
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() Topic {
	return s.topic
}

// Scope returns the scope this subscription was registered under, or the
// empty string for unscoped registrations.
func (s *Subscription) Scope() string {
	return s.scope
}
