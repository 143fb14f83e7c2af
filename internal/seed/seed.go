// Package seed loads default data and bootstrap accounts.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/auth"
)

// FAQStore is the slice of the FAQ repository the seeder writes through.
type FAQStore interface {
	CountCategories(ctx context.Context) (int64, error)
	CreateCategory(ctx context.Context, c *models.FAQCategory) error
	CreateItem(ctx context.Context, it *models.FAQItem) error
}

// UserStore is the slice of the user repository needed to create managers.
type UserStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type faqQA struct {
	question, answer string
}

type faqNode struct {
	name     string
	children []faqNode
	items    []faqQA
}

var defaultFAQ = []faqNode{
	{
		name: "Account",
		children: []faqNode{
			{
				name: "Sign up",
				items: []faqQA{
					{"Who can sign up?", "Students and instructors can register themselves. Manager accounts are issued by the operations team."},
					{"I did not get the verification email", "Check your spam folder, then request a new link from the login page. Links expire after 24 hours."},
				},
			},
			{
				name: "Login & password",
				items: []faqQA{
					{"I forgot my password", "Use \"Forgot password\" on the login page. The reset link is valid for one hour."},
					{"I forgot which email I used", "Use \"Find email\" with your name and phone number to see a masked address."},
				},
			},
		},
	},
	{
		name: "Courses",
		children: []faqNode{
			{
				name: "Enrollment",
				items: []faqQA{
					{"Why was my enrollment rejected?", "A course cannot be joined when its weekly slot overlaps a course you already attend during the same dates."},
					{"How do I leave a course?", "Open the course and choose \"Cancel enrollment\"."},
				},
			},
			{
				name: "Timetable",
				items: []faqQA{
					{"Can I add classes to my calendar app?", "Download the .ics file from the timetable page and import it into any calendar."},
				},
			},
		},
	},
	{
		name: "Assignments",
		items: []faqQA{
			{"Can I resubmit an assignment?", "Yes. A new submission replaces the previous one and clears any earlier grade."},
			{"Are late submissions accepted?", "Submissions stay open after the due date. Your instructor sees the submission time."},
		},
	},
}

// SeedFAQ loads the default FAQ tree when no categories exist yet.
// It returns the number of categories created.
func SeedFAQ(ctx context.Context, store FAQStore, lgr zerolog.Logger) (int, error) {
	count, err := store.CountCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count FAQ categories: %w", err)
	}
	if count > 0 {
		lgr.Info().Int64("categories", count).Msg("FAQ already populated, skipping seed")
		return 0, nil
	}

	created := 0
	var walk func(nodes []faqNode, parent *models.FAQCategory) error
	walk = func(nodes []faqNode, parent *models.FAQCategory) error {
		for i, n := range nodes {
			cat := &models.FAQCategory{Name: n.name, Depth: 1, SortOrder: i}
			if parent != nil {
				cat.ParentID = &parent.ID
				cat.Depth = parent.Depth + 1
			}
			if err := store.CreateCategory(ctx, cat); err != nil {
				return fmt.Errorf("failed to create FAQ category %q: %w", n.name, err)
			}
			created++

			for j, qa := range n.items {
				item := &models.FAQItem{CategoryID: cat.ID, Question: qa.question, Answer: qa.answer, SortOrder: j}
				if err := store.CreateItem(ctx, item); err != nil {
					return fmt.Errorf("failed to create FAQ item %q: %w", qa.question, err)
				}
			}
			if err := walk(n.children, cat); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(defaultFAQ, nil); err != nil {
		return created, err
	}
	lgr.Info().Int("categories", created).Msg("FAQ seeded")
	return created, nil
}

// ManagerInput describes a manager account created from the command line.
type ManagerInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// CreateManager inserts an active, verified manager account.
func CreateManager(ctx context.Context, users UserStore, in ManagerInput, lgr zerolog.Logger) (*models.User, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(in.Email))
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return nil, apperrors.ErrInvalidEmail
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	exists, err := users.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:         emailAddr,
		Password:      hash,
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Phone:         strings.TrimSpace(in.Phone),
		RoleType:      models.RoleManager,
		IsActive:      true,
		EmailVerified: true,
		TermsAgreedAt: &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create manager: %w", err)
	}

	lgr.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("Manager account created")
	return user, nil
}
