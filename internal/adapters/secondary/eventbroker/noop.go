package eventbroker

import (
	"context"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
)

// NoopPublisher : utilisé en dev local sans NATS et dans les tests.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (NoopPublisher) PublishUserRegistered(context.Context, string, string) error { return nil }
func (NoopPublisher) PublishPostCreated(context.Context, *domain.Post) error      { return nil }
func (NoopPublisher) PublishPostDeleted(context.Context, string) error            { return nil }
