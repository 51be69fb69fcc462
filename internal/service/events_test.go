// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/testutil"
)

func countEvents(t *testing.T, svc *EventService) int {
	t.Helper()
	events, err := svc.queries.ListRecentEvents(context.Background(), 100)
	require.NoError(t, err)
	return len(events)
}

func TestLogEvent(t *testing.T) {
	db := testutil.TestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, db, "audit@example.com", "password123")
	svc.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryAuth, "Test message",
		&user.ID, "192.0.2.1", map[string]any{"key": "value"})

	events, err := svc.queries.ListRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, model.EventLevelInfo, events[0].Level)
	assert.Equal(t, model.EventCategoryAuth, events[0].Category)
	assert.Equal(t, "Test message", events[0].Message)
}

func TestLogEventCategories(t *testing.T) {
	db := testutil.TestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	svc.LogAuthEvent(ctx, model.EventLevelWarning, "Login failed", nil, "192.0.2.1", nil)
	svc.LogPostEvent(ctx, model.EventLevelInfo, "Post created", nil, "192.0.2.1", nil)

	events, err := svc.queries.ListRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	categories := map[string]bool{}
	for _, e := range events {
		categories[e.Category] = true
	}
	assert.True(t, categories[model.EventCategoryAuth])
	assert.True(t, categories[model.EventCategoryPost])
}

func TestPrune(t *testing.T) {
	db := testutil.TestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	svc.LogEvent(ctx, model.EventLevelInfo, model.EventCategorySystem, "Fresh", nil, "", nil)
	require.Equal(t, 1, countEvents(t, svc))

	// Nothing is old enough to prune yet.
	deleted, err := svc.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Equal(t, 1, countEvents(t, svc))

	// A zero retention prunes everything up to now.
	deleted, err = svc.Prune(ctx, -time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	assert.Equal(t, 0, countEvents(t, svc))
}
