package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerWeeksResource(srv, svc)
	registerUserResource(srv, svc)
	registerWeekTemplate(srv, svc)
}

func registerWeeksResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"lifedots://weeks",
		"Written Weeks",
		mcp.WithResourceDescription("Every week with a journal entry or reminders."),
		mcp.WithMIMEType("application/json"),
	)
	srv.AddResource(resource, readWeeks(svc))
}

func readWeeks(svc *Service) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		all, err := svc.API.GetAllWeeks(ctx)
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"weeks": all,
			"count": len(all),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	}
}

func registerUserResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"lifedots://user",
		"Profile",
		mcp.WithResourceDescription("The profile and birth date anchoring the life grid."),
		mcp.WithMIMEType("application/json"),
	)
	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		u, err := svc.API.GetUser(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"user": u})
	})
}

func registerWeekTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"lifedots://weeks/{number}",
		"Week Details",
		mcp.WithTemplateDescription("Dates, state and stored text of a single week."),
		mcp.WithTemplateMIMEType("application/json"),
	)
	srv.AddResourceTemplate(template, readWeek(svc))
}

func readWeek(svc *Service) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		n, err := templateNumber(request.Params.Arguments["number"])
		if err != nil {
			return nil, err
		}
		view, err := svc.WeekDetails(ctx, n)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"week": view})
	}
}

// templateNumber accepts the raw template argument, which arrives either as
// a string or as a single element slice depending on the matcher.
func templateNumber(v any) (int, error) {
	switch t := v.(type) {
	case string:
		return strconv.Atoi(t)
	case []string:
		if len(t) == 1 {
			return strconv.Atoi(t[0])
		}
	}
	return 0, fmt.Errorf("week number is required")
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
