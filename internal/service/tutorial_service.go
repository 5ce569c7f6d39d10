package service

import (
	"context"
	"errors"
	"fmt"

	"tutorials/internal/model"
	"tutorials/internal/pubsub"
	"tutorials/internal/repository"

	"github.com/rs/zerolog"
)

// Failure kinds returned by TutorialService. The storage error stays in the
// chain, so errors.Is works against both the kind and the cause.
var (
	ErrReadFailed   = errors.New("tutorial read failed")
	ErrCreateFailed = errors.New("tutorial create failed")
	ErrUpdateFailed = errors.New("tutorial update failed")
	ErrDeleteFailed = errors.New("tutorial delete failed")
	ErrSearchFailed = errors.New("tutorial search failed")
)

// TutorialService defines the interface for tutorial operations
type TutorialService interface {
	GetAllTutorials(ctx context.Context) ([]model.Tutorial, error)
	// GetTutorialByID returns nil when the tutorial does not exist
	GetTutorialByID(ctx context.Context, id int64) (*model.Tutorial, error)
	// CreateTutorial stores a new tutorial; any ID on in is ignored
	CreateTutorial(ctx context.Context, in *model.Tutorial) (*model.Tutorial, error)
	// UpdateTutorial overwrites title and description; it returns nil when the tutorial does not exist
	UpdateTutorial(ctx context.Context, id int64, in *model.Tutorial) (*model.Tutorial, error)
	DeleteTutorial(ctx context.Context, id int64) error
	DeleteAllTutorials(ctx context.Context) error
	FindByTitleContaining(ctx context.Context, text string) ([]model.Tutorial, error)
	FindByDescriptionContaining(ctx context.Context, text string) ([]model.Tutorial, error)
}

// tutorialService is the implementation of TutorialService
type tutorialService struct {
	repo      repository.TutorialRepository
	publisher pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// NewTutorialService creates a new TutorialService. Change events are sent to
// topic through publisher after every successful write.
func NewTutorialService(repo repository.TutorialRepository, publisher pubsub.Publisher, topic string, logger zerolog.Logger) TutorialService {
	if publisher == nil {
		publisher = pubsub.NoopPublisher{}
	}
	return &tutorialService{
		repo:      repo,
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("component", "tutorial_service").Logger(),
	}
}

func (s *tutorialService) GetAllTutorials(ctx context.Context) ([]model.Tutorial, error) {
	tutorials, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: internal error while listing tutorials: %w", ErrReadFailed, err)
	}
	return tutorials, nil
}

func (s *tutorialService) GetTutorialByID(ctx context.Context, id int64) (*model.Tutorial, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: internal error while reading tutorial %d: %w", ErrReadFailed, id, err)
	}
	return t, nil
}

func (s *tutorialService) CreateTutorial(ctx context.Context, in *model.Tutorial) (*model.Tutorial, error) {
	newTutorial := &model.Tutorial{}
	if in != nil {
		newTutorial.Title = in.Title
		newTutorial.Description = in.Description
	}

	created, err := s.repo.Save(ctx, newTutorial)
	if err != nil {
		return nil, fmt.Errorf("%w: internal error while creating a tutorial: %w", ErrCreateFailed, err)
	}

	s.publish(ctx, newTutorialEvent(EventTutorialCreated, created.ID, created))
	return created, nil
}

func (s *tutorialService) UpdateTutorial(ctx context.Context, id int64, in *model.Tutorial) (*model.Tutorial, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: internal error while updating a tutorial: %w", ErrUpdateFailed, err)
	}
	if existing == nil {
		return nil, nil
	}

	if in == nil {
		in = &model.Tutorial{}
	}
	existing.Title = in.Title
	existing.Description = in.Description

	updated, err := s.repo.Save(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("%w: internal error while updating a tutorial: %w", ErrUpdateFailed, err)
	}

	s.publish(ctx, newTutorialEvent(EventTutorialUpdated, updated.ID, updated))
	return updated, nil
}

func (s *tutorialService) DeleteTutorial(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("%w: internal error while deleting a tutorial: %w", ErrDeleteFailed, err)
	}

	s.publish(ctx, newTutorialEvent(EventTutorialDeleted, id, nil))
	return nil
}

func (s *tutorialService) DeleteAllTutorials(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("%w: internal error while deleting all tutorials: %w", ErrDeleteFailed, err)
	}

	s.publish(ctx, newTutorialEvent(EventTutorialsCleared, 0, nil))
	return nil
}

func (s *tutorialService) FindByTitleContaining(ctx context.Context, text string) ([]model.Tutorial, error) {
	tutorials, err := s.repo.FindByTitleContaining(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: internal error while searching by title: %w", ErrSearchFailed, err)
	}
	return tutorials, nil
}

func (s *tutorialService) FindByDescriptionContaining(ctx context.Context, text string) ([]model.Tutorial, error) {
	tutorials, err := s.repo.FindByDescriptionContaining(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: internal error while searching by description: %w", ErrSearchFailed, err)
	}
	return tutorials, nil
}
