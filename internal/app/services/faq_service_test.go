package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/cache"
)

func newTestFAQService(store *fakeFAQ) FAQService {
	return NewFAQService(store, cache.NewMemoryCache(), 0, authz.NewAuthorizer(), zerolog.Nop())
}

func TestChatbot_WalksCategoriesThenQuestions(t *testing.T) {
	store := &fakeFAQ{}
	svc := newTestFAQService(store)
	ctx := context.Background()

	account, err := svc.CreateCategory(ctx, managerActor, &dto.FAQCategoryRequest{Name: "Account"})
	require.NoError(t, err)
	assert.Equal(t, 1, account.Depth)

	login, err := svc.CreateCategory(ctx, managerActor, &dto.FAQCategoryRequest{Name: "Login", ParentID: &account.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, login.Depth)

	_, err = svc.CreateItem(ctx, managerActor, &dto.FAQItemRequest{CategoryID: login.ID, Question: "Forgot password?", Answer: " Use the reset link. "})
	require.NoError(t, err)

	root, err := svc.Chatbot(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, dto.ChatbotTypeCategory, root.Type)
	require.Len(t, root.Options, 1)
	assert.Equal(t, "Account", root.Options[0].Label)

	sub, err := svc.Chatbot(ctx, &account.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ChatbotTypeCategory, sub.Type)
	assert.Equal(t, "Login", sub.Options[0].Label)

	leaf, err := svc.Chatbot(ctx, &login.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ChatbotTypeQuestion, leaf.Type)
	require.Len(t, leaf.Options, 1)
	assert.Equal(t, "Use the reset link.", leaf.Options[0].Answer)
}

func TestChatbot_EmptyTopic(t *testing.T) {
	store := &fakeFAQ{}
	svc := newTestFAQService(store)
	ctx := context.Background()

	resp, err := svc.Chatbot(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, dto.ChatbotTypeEmpty, resp.Type)
	assert.NotNil(t, resp.Options)

	missing := int64(99)
	resp, err = svc.Chatbot(ctx, &missing)
	require.NoError(t, err)
	assert.Equal(t, dto.ChatbotTypeEmpty, resp.Type)
	assert.Empty(t, resp.Options)
	require.NotNil(t, resp.ParentID)
	assert.Equal(t, missing, *resp.ParentID)
}

func TestChatbot_CachesUntilKnowledgeBaseChanges(t *testing.T) {
	store := &fakeFAQ{}
	svc := newTestFAQService(store)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, managerActor, &dto.FAQCategoryRequest{Name: "Courses"})
	require.NoError(t, err)

	_, err = svc.Chatbot(ctx, nil)
	require.NoError(t, err)
	_, err = svc.Chatbot(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)

	_, err = svc.CreateCategory(ctx, managerActor, &dto.FAQCategoryRequest{Name: "Payments"})
	require.NoError(t, err)

	resp, err := svc.Chatbot(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls)
	assert.Len(t, resp.Options, 2)
}

func TestFAQ_WritesRequireManager(t *testing.T) {
	svc := newTestFAQService(&fakeFAQ{})
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, instructorActor, &dto.FAQCategoryRequest{Name: "Nope"})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	err = svc.DeleteItem(ctx, studentActor, 1)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.CreateCategory(ctx, managerActor, &dto.FAQCategoryRequest{Name: "   "})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}
