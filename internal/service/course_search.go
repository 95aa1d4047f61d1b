package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"lms-service/internal/client"
	"lms-service/internal/config"
	"lms-service/internal/models"
	"lms-service/internal/util"
)

type CourseSearchInterface interface {
	IndexCourse(ctx context.Context, course *models.Course) error
	RemoveCourse(ctx context.Context, courseID string) error
	SearchCourses(ctx context.Context, year int, term string) ([]*models.Course, error)
}

// ESCourseSearch mirrors catalog writes into Elasticsearch and answers
// free-text browse queries. The store remains the source of truth; a lost
// index write degrades search, not the catalog.
type ESCourseSearch struct {
	es    *client.ESClient
	index string
}

var _ CourseSearchInterface = (*ESCourseSearch)(nil)

func NewESCourseSearch(es *client.ESClient, cfg *config.Config) *ESCourseSearch {
	return &ESCourseSearch{
		es:    es,
		index: cfg.Elasticsearch.CourseIndex,
	}
}

func (s *ESCourseSearch) IndexCourse(ctx context.Context, course *models.Course) error {
	if err := s.es.IndexDocument(ctx, s.index, course.CourseID, course); err != nil {
		return fmt.Errorf("failed to index course: %w", err)
	}
	return nil
}

func (s *ESCourseSearch) RemoveCourse(ctx context.Context, courseID string) error {
	if err := s.es.DeleteDocument(ctx, s.index, courseID); err != nil {
		return fmt.Errorf("failed to remove course from index: %w", err)
	}
	return nil
}

func (s *ESCourseSearch) SearchCourses(ctx context.Context, year int, term string) ([]*models.Course, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":     term,
							"fields":    []string{"title^3", "subject^2", "description", "instructor"},
							"fuzziness": "AUTO",
						},
					},
				},
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"year": year}},
					map[string]interface{}{"term": map[string]interface{}{"visible": true}},
				},
			},
		},
		"size": 50,
	}

	hits, err := s.es.Search(ctx, s.index, query)
	if err != nil {
		return nil, fmt.Errorf("course search failed: %w", err)
	}

	courses := make([]*models.Course, 0, len(hits))
	for _, hit := range hits {
		course := &models.Course{}
		if err := json.Unmarshal(hit, course); err != nil {
			util.Warn("Skipping malformed search hit", zap.Error(err))
			continue
		}
		courses = append(courses, course)
	}
	return courses, nil
}
