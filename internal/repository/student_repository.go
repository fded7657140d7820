package repository

import (
	"context"
	"net/url"
	"strconv"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
)

const studentsPath = "/user/students"

// StudentRepository looks up students on the backend.
type StudentRepository struct {
	client *BackendClient
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(client *BackendClient) *StudentRepository {
	return &StudentRepository{client: client}
}

// Search returns up to limit students matching query.
func (r *StudentRepository) Search(ctx context.Context, token, query string, limit int) ([]models.Student, error) {
	values := url.Values{}
	values.Set("limit", strconv.Itoa(limit))
	values.Set("search", query)

	var envelope dto.StudentsEnvelope
	if err := r.client.Get(ctx, token, studentsPath, values, &envelope); err != nil {
		return nil, err
	}
	students := make([]models.Student, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		students = append(students, raw.ToModel())
	}
	return students, nil
}
