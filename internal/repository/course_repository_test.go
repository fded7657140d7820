package repository

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

func TestCourseRepositoryListCountsChapters(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/course/allCourses", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"courses":[
			{"_id":"c1","name":"Biology","price":"120","chapters":[{"title":"Cells"},{"title":"DNA"}]},
			{"id":"c2","name":"Physics","price":95.5,"chapters":"7"},
			{"_id":"c3","name":"Free Intro","isFree":true,"price":null}
		]}`))
	})
	repo := NewCourseRepository(client)

	courses, err := repo.List(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, 120.0, courses[0].Price)
	assert.Equal(t, 2, courses[0].Chapters)
	assert.Equal(t, "c2", courses[1].ID)
	assert.Equal(t, 7, courses[1].Chapters)
	assert.True(t, courses[2].IsFree)
	assert.Zero(t, courses[2].Price)
}

func TestCourseRepositoryFindByIDFillsMissingID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/course/c9", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"Chemistry","price":80}`))
	})
	repo := NewCourseRepository(client)

	course, err := repo.FindByID(context.Background(), "tok", "c9")
	require.NoError(t, err)
	assert.Equal(t, "c9", course.ID)
	assert.Equal(t, "Chemistry", course.Name)
}

func TestCourseRepositoryFindByIDEmptyDocument(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	repo := NewCourseRepository(client)

	_, err := repo.FindByID(context.Background(), "tok", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
