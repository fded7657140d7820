package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice/internal/models"
)

func TestConsoleSessionsPerCaller(t *testing.T) {
	opened := 0
	factory := NewConsoleFactory(ConsoleDeps{
		Enrollments: struct {
			*fakePaymentsRepo
			*fakeEnrollmentCreator
		}{&fakePaymentsRepo{}, &fakeEnrollmentCreator{}},
		Catalog:  fakeItemCatalog{},
		Students: &fakeStudentSearcher{},
		PageSize: 10,
	})
	registry := NewConsoleSessions(func() *ConsoleSession {
		opened++
		return factory()
	}, nil, nil)

	alice := models.Principal{UserID: "a", Token: "t1"}
	bob := models.Principal{Token: "t2"}

	first := registry.Get(alice)
	require.NotNil(t, first.Board)
	require.NotNil(t, first.EnrollmentForm)
	require.NotNil(t, first.Students)
	assert.Same(t, first, registry.Get(models.Principal{UserID: "a", Token: "rotated"}))
	assert.NotSame(t, first, registry.Get(bob))
	assert.Equal(t, 2, opened)
	assert.Equal(t, 2, registry.Len())

	registry.End(bob)
	assert.Equal(t, 1, registry.Len())
}

func TestConsoleSessionsSweep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	registry := NewConsoleSessions(func() *ConsoleSession { return &ConsoleSession{} }, nil, nil)
	registry.now = func() time.Time { return now }

	registry.Get(models.Principal{UserID: "idle"})
	now = now.Add(20 * time.Minute)
	registry.Get(models.Principal{UserID: "active"})
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, registry.Sweep(30*time.Minute))
	assert.Equal(t, 1, registry.Len())
	assert.Zero(t, registry.Sweep(30*time.Minute))
}
