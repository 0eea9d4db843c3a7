package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for NutriSense resources.
	uriScheme = "nutrisense://"

	usersPrefix = uriScheme + "users/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: usersPrefix + "{userId}/profile",
		Name:        "user-profile",
		Description: "A user's profile and default timezone",
		MIMEType:    "application/json",
	}, s.handleProfileResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: usersPrefix + "{userId}/goals",
		Name:        "user-goals",
		Description: "Every goal a user has set, oldest first",
		MIMEType:    "application/json",
	}, s.handleGoalsResource)
}

// handleProfileResource returns a user's profile.
func (s *Server) handleProfileResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	userID := extractUserID(req.Params.URI, "profile")
	if userID == "" || s.ports.Profile == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	profile, err := s.ports.Profile.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	return jsonResource(req.Params.URI, present.FromProfile(profile))
}

// handleGoalsResource returns a user's goal history.
func (s *Server) handleGoalsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	userID := extractUserID(req.Params.URI, "goals")
	if userID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	goals, err := s.ports.Goal.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}

	return jsonResource(req.Params.URI, present.FromGoals(goals))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractUserID extracts the user ID from a URI like nutrisense://users/{userId}/{leaf}.
func extractUserID(uri, leaf string) string {
	suffix := "/" + leaf

	rest, ok := strings.CutPrefix(uri, usersPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, suffix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
