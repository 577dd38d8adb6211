// Package session implements the per-connection protocol state machine that
// turns inbound client requests into directory changes and room broadcasts.
package session

import (
	"sync"

	"github.com/go-monolith/mono/pkg/types"
)

// Service holds the collaborators shared by every connection's Coordinator.
type Service struct {
	// membership is held from a directory change until the resulting roster
	// has been queued, so the last roster a room sees matches the directory.
	membership sync.Mutex

	directory   Directory
	broadcaster Broadcaster
	profanity   ProfanityChecker
	renderer    Renderer
	notifier    Notifier
	logger      types.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithProfanityChecker replaces the default go-away filter.
func WithProfanityChecker(p ProfanityChecker) Option {
	return func(s *Service) {
		if p != nil {
			s.profanity = p
		}
	}
}

// WithRenderer replaces the wall-clock renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithNotifier sets the receiver of completed-operation notifications.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// NewService creates a new session service.
func NewService(directory Directory, broadcaster Broadcaster, logger types.Logger, opts ...Option) *Service {
	s := &Service{
		directory:   directory,
		broadcaster: broadcaster,
		notifier:    nopNotifier{},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.profanity == nil {
		s.profanity = NewWordFilter()
	}
	if s.renderer == nil {
		s.renderer = NewRenderer()
	}
	return s
}

// NewCoordinator creates the coordinator for a freshly opened connection.
func (s *Service) NewCoordinator(connID string) *Coordinator {
	return &Coordinator{
		connID:  connID,
		service: s,
		state:   StateConnected,
		logger:  s.logger.With("connID", connID),
	}
}
