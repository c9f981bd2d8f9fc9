package ai

import (
	"context"

	"github.com/gideonapp/engage/internal/models"
	"github.com/google/uuid"
)

// Content is the structured output of a generation call.
type Content struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Request describes one piece of companion content to generate. Tracker is
// optional context used to personalize tone; nil means a generic message.
type Request struct {
	UserID   uuid.UUID
	Family   models.Family
	Category models.Category
	Tracker  *models.Tracker
}

// ContentGenerator produces notification content. Implementations may fail
// transiently (rate limit, timeout) or permanently (invalid response
// schema); callers classify with IsRetryable.
type ContentGenerator interface {
	Generate(ctx context.Context, req Request) (*Content, error)
}

// ProviderFactory creates a content generator from provider config.
type ProviderFactory func(config map[string]string) (ContentGenerator, error)

// ProviderRegistry stores available content generator factories.
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[string]ProviderFactory)}
}

// Register registers a provider factory under a name.
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider builds a provider by name.
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (ContentGenerator, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "content provider not found: " + e.Name
}
