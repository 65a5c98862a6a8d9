package services

import (
	"context"
	"errors"
	"time"

	"folio/internal/models"
	"folio/internal/repositories"
	appErr "folio/pkg/errors"
	"folio/pkg/rabbitmq"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// EventPublisher delivers portfolio lifecycle events.
type EventPublisher interface {
	PublishPortfolioEvent(ctx context.Context, event rabbitmq.PortfolioEvent) error
}

// PortfolioInput is the request body of create and update.
// Nil slices, a nil SocialLinks and a nil IsPublished mean "not supplied".
type PortfolioInput struct {
	Title            string               `json:"title"`
	Profession       string               `json:"profession"`
	Bio              string               `json:"bio"`
	Skills           []string             `json:"skills"`
	Achievements     []models.Achievement `json:"achievements"`
	Experiences      []models.Experience  `json:"experiences"`
	Projects         []models.Project     `json:"projects"`
	Education        []models.Education   `json:"education"`
	SocialLinks      *models.SocialLinks  `json:"socialLinks"`
	SelectedTemplate string               `json:"selectedTemplate"`
	SelectedTheme    string               `json:"selectedTheme"`
	IsPublished      *bool                `json:"isPublished"`
	FullName         string               `json:"fullName"`
	Email            string               `json:"email"`
	Phone            string               `json:"phone"`
	Location         string               `json:"location"`
}

// PortfolioService handles portfolio CRUD with ownership checks and public lookup.
type PortfolioService struct {
	portfolios   repositories.PortfolioRepository
	users        repositories.UserRepository
	events       EventPublisher
	defaultImage string
	log          *zap.Logger
	now          func() time.Time
}

// NewPortfolioService creates a new PortfolioService. events may be nil.
func NewPortfolioService(portfolios repositories.PortfolioRepository, users repositories.UserRepository, events EventPublisher, defaultImage string, log *zap.Logger) *PortfolioService {
	return &PortfolioService{
		portfolios:   portfolios,
		users:        users,
		events:       events,
		defaultImage: defaultImage,
		log:          log,
		now:          time.Now,
	}
}

// Create stores a new portfolio owned by the caller.
func (s *PortfolioService) Create(ctx context.Context, id Identity, in PortfolioInput) (*models.Portfolio, error) {
	user, err := s.users.GetByID(ctx, id.ID)
	if err != nil {
		return nil, userLookupError(err)
	}

	p := &models.Portfolio{
		UserID:           user.ID,
		Title:            in.Title,
		Profession:       in.Profession,
		Bio:              in.Bio,
		Skills:           datatypes.JSONSlice[string](in.Skills),
		Achievements:     datatypes.JSONSlice[models.Achievement](in.Achievements),
		Experiences:      datatypes.JSONSlice[models.Experience](in.Experiences),
		Projects:         datatypes.JSONSlice[models.Project](in.Projects),
		Education:        datatypes.JSONSlice[models.Education](in.Education),
		SelectedTemplate: in.SelectedTemplate,
		SelectedTheme:    in.SelectedTheme,
	}
	if in.SocialLinks != nil {
		p.SocialLinks = datatypes.NewJSONType(*in.SocialLinks)
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
	if p.SelectedTemplate == "" {
		p.SelectedTemplate = models.DefaultTemplate
	}
	if p.SelectedTheme == "" {
		p.SelectedTheme = models.DefaultTheme
	}
	s.snapshot(p, user, in)

	if err := s.portfolios.CreateForOwner(ctx, p); err != nil {
		return nil, appErr.Internal(err)
	}

	s.publish(ctx, rabbitmq.PortfolioCreated, p)
	if p.IsPublished {
		s.publish(ctx, rabbitmq.PortfolioPublished, p)
	}
	return p, nil
}

// Update overwrites the supplied fields of a portfolio owned by the caller.
func (s *PortfolioService) Update(ctx context.Context, id Identity, portfolioID string, in PortfolioInput) (*models.Portfolio, error) {
	user, err := s.users.GetByID(ctx, id.ID)
	if err != nil {
		return nil, userLookupError(err)
	}

	p, err := s.owned(ctx, id, portfolioID)
	if err != nil {
		return nil, err
	}
	wasPublished := p.IsPublished

	if in.Title != "" {
		p.Title = in.Title
	}
	if in.Profession != "" {
		p.Profession = in.Profession
	}
	if in.Bio != "" {
		p.Bio = in.Bio
	}
	if in.Skills != nil {
		p.Skills = in.Skills
	}
	if in.Achievements != nil {
		p.Achievements = in.Achievements
	}
	if in.Experiences != nil {
		p.Experiences = in.Experiences
	}
	if in.Projects != nil {
		p.Projects = in.Projects
	}
	if in.Education != nil {
		p.Education = in.Education
	}
	if in.SocialLinks != nil {
		p.SocialLinks = datatypes.NewJSONType(*in.SocialLinks)
	}
	if in.SelectedTemplate != "" {
		p.SelectedTemplate = in.SelectedTemplate
	}
	if in.SelectedTheme != "" {
		p.SelectedTheme = in.SelectedTheme
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
	s.snapshot(p, user, in)

	if err := s.portfolios.Update(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, appErr.Wrap(err, appErr.CodeNotFound, "Portfolio not found")
		}
		return nil, appErr.Internal(err)
	}

	s.publish(ctx, rabbitmq.PortfolioUpdated, p)
	if p.IsPublished && !wasPublished {
		s.publish(ctx, rabbitmq.PortfolioPublished, p)
	}
	return p, nil
}

// Get returns a portfolio owned by the caller.
func (s *PortfolioService) Get(ctx context.Context, id Identity, portfolioID string) (*models.Portfolio, error) {
	return s.owned(ctx, id, portfolioID)
}

// List returns every portfolio owned by the caller.
func (s *PortfolioService) List(ctx context.Context, id Identity) ([]models.Portfolio, error) {
	portfolios, err := s.portfolios.ListByOwner(ctx, id.ID)
	if err != nil {
		return nil, appErr.Internal(err)
	}
	return portfolios, nil
}

// Delete removes a portfolio owned by the caller.
func (s *PortfolioService) Delete(ctx context.Context, id Identity, portfolioID string) error {
	p, err := s.owned(ctx, id, portfolioID)
	if err != nil {
		return err
	}

	if err := s.portfolios.DeleteForOwner(ctx, p.ID, p.UserID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return appErr.Wrap(err, appErr.CodeNotFound, "Portfolio not found")
		}
		return appErr.Internal(err)
	}

	s.publish(ctx, rabbitmq.PortfolioDeleted, p)
	return nil
}

// GetPublic resolves a published portfolio from its owner's name slug and its
// title slug. The owner's live contact fields replace the stored snapshot.
func (s *PortfolioService) GetPublic(ctx context.Context, fullNameSlug, titleSlug string) (*models.Portfolio, error) {
	user, err := s.users.GetByNameKey(ctx, models.NormalizeKey(fullNameSlug))
	if err != nil {
		return nil, userLookupError(err)
	}

	p, err := s.portfolios.FindPublished(ctx, user.ID, models.NormalizeKey(titleSlug))
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, appErr.Wrap(err, appErr.CodeNotPublished, "Portfolio not found or not published")
		}
		return nil, appErr.Internal(err)
	}

	p.FullName = user.FullName
	p.ProfileImage = s.profileImage(user)
	p.Email = user.Email
	p.Phone = user.Phone
	p.Location = user.Location
	return p, nil
}

// owned loads a portfolio and checks that the caller owns it.
// A missing portfolio is reported before an ownership mismatch.
func (s *PortfolioService) owned(ctx context.Context, id Identity, portfolioID string) (*models.Portfolio, error) {
	p, err := s.portfolios.GetByID(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, appErr.Wrap(err, appErr.CodeNotFound, "Portfolio not found")
		}
		return nil, appErr.Internal(err)
	}
	if p.UserID != id.ID {
		return nil, appErr.New(appErr.CodeNotAuthorized, "Not authorized")
	}
	return p, nil
}

func (s *PortfolioService) snapshot(p *models.Portfolio, user *models.User, in PortfolioInput) {
	p.FullName = firstNonEmpty(in.FullName, user.FullName)
	p.ProfileImage = s.profileImage(user)
	p.Email = firstNonEmpty(in.Email, user.Email)
	p.Phone = firstNonEmpty(in.Phone, user.Phone)
	p.Location = firstNonEmpty(in.Location, user.Location)
}

func (s *PortfolioService) profileImage(user *models.User) string {
	return firstNonEmpty(user.ProfileImage, s.defaultImage)
}

func (s *PortfolioService) publish(ctx context.Context, typ rabbitmq.EventType, p *models.Portfolio) {
	if s.events == nil {
		return
	}
	event := rabbitmq.PortfolioEvent{
		Type:        typ,
		PortfolioID: p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		IsPublished: p.IsPublished,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.events.PublishPortfolioEvent(ctx, event); err != nil {
		s.log.Warn("failed to publish portfolio event",
			zap.String("type", string(typ)),
			zap.String("portfolio_id", p.ID),
			zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
