// Package match runs the preference form through the request builder and
// the external match service.
package match

import (
	"context"
	"fmt"

	"github.com/abaanfida/unixora/internal/model/match"
)

// Client is the outbound dependency ranking universities.
type Client interface {
	Match(ctx context.Context, request match.Request) (match.Response, error)
}

// Service translates forms into normalized requests and hands back the
// ranked results untouched; response validation is the renderer's problem.
type Service struct {
	client Client
}

// NewService wires the match pipeline to its client.
func NewService(client Client) *Service {
	return &Service{client: client}
}

// Find normalizes the form and queries the match service.
func (s *Service) Find(ctx context.Context, form match.Form) (match.Response, error) {
	request := match.BuildRequest(form)
	response, err := s.client.Match(ctx, request)
	if err != nil {
		return match.Response{}, fmt.Errorf("find matches: %w", err)
	}
	return response, nil
}
