package conversation

import "fmt"

// Factory constructs a conversation bound to a recipient. All persistence and
// sending goes through the Turn handed to its handlers, so factories stay
// free of infrastructure concerns.
type Factory func(recipient string) Conversation

// Registration pairs a conversation key with its factory.
type Registration struct {
	Key     string
	Factory Factory
}

// Registry maps conversation keys to factories. Registration order is
// preserved and load-bearing: spontaneous dispatch offers an unsolicited
// message to each registered type in this order and stops at the first one
// that handles it.
type Registry struct {
	order []Registration
	index map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register binds a key to a factory. Keys must be unique across the process;
// registering the same key twice reports ErrDuplicateKey.
func (r *Registry) Register(key string, f Factory) error {
	if key == "" {
		return fmt.Errorf("conversation: register: key must not be empty")
	}
	if f == nil {
		return fmt.Errorf("conversation: register %q: factory must not be nil", key)
	}
	if _, exists := r.index[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	r.index[key] = len(r.order)
	r.order = append(r.order, Registration{Key: key, Factory: f})
	return nil
}

// Lookup resolves the factory for a stored conversation key.
func (r *Registry) Lookup(key string) (Factory, error) {
	i, ok := r.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConversationType, key)
	}
	return r.order[i].Factory, nil
}

// All returns every registration in registration order.
func (r *Registry) All() []Registration {
	return r.order
}
