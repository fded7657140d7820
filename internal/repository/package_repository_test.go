package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice/internal/dto"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

func TestPackageRepositoryListAdminDecodesMixedCourseRefs(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/packages/admin/all", r.URL.Path)
		_, _ = w.Write([]byte(`{"packages":[{"_id":"p1","name":"Bundle","price":180,"originalPrice":"220","discountPercentage":18,"courses":["c1",{"_id":"c2","name":"Bio","price":120}]}]}`))
	})
	repo := NewPackageRepository(client)

	packages, err := repo.ListAdmin(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, packages, 1)
	assert.Equal(t, 220.0, packages[0].OriginalPrice)
	assert.Equal(t, 18, packages[0].DiscountPercentage)
	assert.Equal(t, []string{"c1", "c2"}, packages[0].CourseIDs())
	assert.Equal(t, 120.0, packages[0].Courses[1].Price)
}

func TestPackageRepositoryFindByIDMissingPackage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	})
	repo := NewPackageRepository(client)

	_, err := repo.FindByID(context.Background(), "", "p404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPackageRepositoryCreateFallsBackToSentBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body dto.PackageBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 220.0, body.OriginalPrice)
		assert.Equal(t, 18, body.DiscountPercentage)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"created"}`))
	})
	repo := NewPackageRepository(client)

	pkg, err := repo.Create(context.Background(), "tok", dto.PackageBody{
		Name:               "Bundle",
		Price:              180,
		Courses:            []string{"c1", "c2"},
		OriginalPrice:      220,
		DiscountPercentage: 18,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bundle", pkg.Name)
	assert.Len(t, pkg.Courses, 2)
}

func TestPackageRepositoryDelete(t *testing.T) {
	var called bool
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/packages/p1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	repo := NewPackageRepository(client)

	require.NoError(t, repo.Delete(context.Background(), "tok", "p1"))
	assert.True(t, called)
}
