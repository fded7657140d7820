package repository

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentRepositorySearch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/students", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "ah", r.URL.Query().Get("search"))
		_, _ = w.Write([]byte(`{"data":[{"_id":"s1","name":"Ahmed","email":"ahmed@example.com","phoneNumber":"01000000000"}]}`))
	})
	repo := NewStudentRepository(client)

	students, err := repo.Search(context.Background(), "tok", "ah", 50)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "s1", students[0].ID)
	assert.Equal(t, "Ahmed", students[0].Name)
}

func TestCourseRepositoryFindByID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/course/c1", r.URL.Path)
		_, _ = w.Write([]byte(`{"_id":"c1","name":"Math","price":"99.5","isFree":false,"chapters":4}`))
	})
	repo := NewCourseRepository(client)

	course, err := repo.FindByID(context.Background(), "", "c1")
	require.NoError(t, err)
	assert.Equal(t, 99.5, course.Price)
	assert.Equal(t, 4, course.Chapters)
}
