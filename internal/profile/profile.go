// Package profile manages the single user profile.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/validate"
	"go.uber.org/zap"

	"github.com/justestif/go-muji/internal/db"
	"github.com/justestif/go-muji/internal/prefs"
)

// Repository persists the profile row.
type Repository interface {
	Get(ctx context.Context) (*db.Profile, error)
	Upsert(ctx context.Context, p *db.Profile) error
	Delete(ctx context.Context) error
}

// DisplayStore holds the profile values shown before a profile is edited.
type DisplayStore interface {
	ProfileDisplay(ctx context.Context) (prefs.ProfileDisplay, error)
	SaveProfileDisplay(ctx context.Context, d prefs.ProfileDisplay) error
	ClearProfileDisplay(ctx context.Context) error
}

// Profile is the user profile as served to clients.
type Profile struct {
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Age       int       `json:"age"`
	Image     []byte    `json:"image,omitempty"`
	Genres    []string  `json:"genres"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Update is a profile edit.
type Update struct {
	Name   string   `json:"name" validate:"required|maxLen:50"`
	Bio    string   `json:"bio" validate:"maxLen:200"`
	Age    int      `json:"age" validate:"min:0|max:150"`
	Image  []byte   `json:"image"`
	Genres []string `json:"genres"`
}

// Service manages the user profile.
type Service struct {
	repo    Repository
	display DisplayStore
	logger  *zap.Logger
}

// NewService creates a profile service.
func NewService(repo Repository, display DisplayStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, display: display, logger: logger}
}

// Get returns the profile, creating it from the display defaults on first use.
func (s *Service) Get(ctx context.Context) (*Profile, error) {
	d, err := s.display.ProfileDisplay(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading profile display: %w", err)
	}

	row, err := s.repo.Get(ctx)
	if errors.Is(err, db.ErrNotFound) {
		row = &db.Profile{
			Name:   d.Name,
			Age:    parseAge(d.Age),
			Genres: JoinGenres(d.Genres),
		}
		if err := s.repo.Upsert(ctx, row); err != nil {
			return nil, fmt.Errorf("creating profile: %w", err)
		}
		s.logger.Info("created default profile")
	} else if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	return fromRow(row, d.Bio), nil
}

// Update validates u and replaces the profile with it.
func (s *Service) Update(ctx context.Context, u Update) (*Profile, error) {
	u.Name = strings.TrimSpace(u.Name)
	v := validate.Struct(&u)
	if !v.Validate() {
		return nil, v.Errors
	}

	row, err := s.repo.Get(ctx)
	if errors.Is(err, db.ErrNotFound) {
		row = &db.Profile{}
	} else if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	row.Name = u.Name
	row.Age = u.Age
	row.Image = u.Image
	row.Genres = JoinGenres(u.Genres)
	if err := s.repo.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	err = s.display.SaveProfileDisplay(ctx, prefs.ProfileDisplay{
		Name:   u.Name,
		Bio:    u.Bio,
		Age:    strconv.Itoa(u.Age),
		Genres: SplitGenres(row.Genres),
	})
	if err != nil {
		s.logger.Warn("saving profile display", zap.Error(err))
	}

	d, err := s.display.ProfileDisplay(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading profile display: %w", err)
	}
	return fromRow(row, d.Bio), nil
}

// Delete removes the profile and its display values.
func (s *Service) Delete(ctx context.Context) error {
	if err := s.repo.Delete(ctx); err != nil {
		return err
	}
	if err := s.display.ClearProfileDisplay(ctx); err != nil {
		return fmt.Errorf("clearing profile display: %w", err)
	}
	return nil
}

// JoinGenres stores genres as a comma-separated column value.
func JoinGenres(genres []string) string {
	cleaned := make([]string, 0, len(genres))
	for _, g := range genres {
		if g = strings.TrimSpace(g); g != "" {
			cleaned = append(cleaned, g)
		}
	}
	return strings.Join(cleaned, ",")
}

// SplitGenres is the inverse of JoinGenres.
func SplitGenres(s string) []string {
	genres := []string{}
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

func fromRow(row *db.Profile, bio string) *Profile {
	return &Profile{
		Name:      row.Name,
		Bio:       bio,
		Age:       row.Age,
		Image:     row.Image,
		Genres:    SplitGenres(row.Genres),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// parseAge reads the display age; the placeholder text yields 0.
func parseAge(s string) int {
	age, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || age < 0 {
		return 0
	}
	return age
}
