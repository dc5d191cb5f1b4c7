package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/lifedots/pkg/lifecal"
)

type toolHandler = server.ToolHandlerFunc

func registerTools(srv *server.MCPServer, svc *Service) {
	srv.AddTool(getWeekTool(), getWeek(svc))
	srv.AddTool(upsertJournalTool(), upsertJournal(svc))
	srv.AddTool(updateRemindersTool(), updateReminders(svc))
	srv.AddTool(upsertWeekDataTool(), upsertWeekData(svc))
	srv.AddTool(getAllWeeksTool(), getAllWeeks(svc))
	srv.AddTool(getUserTool(), getUser(svc))
	srv.AddTool(updateBirthdateTool(), updateBirthdate(svc))
	srv.AddTool(weekDetailsTool(), weekDetails(svc))
	srv.AddTool(overviewTool(), overview(svc))
}

func weekNumberParam() mcp.ToolOption {
	return mcp.WithNumber("week_number",
		mcp.Required(),
		mcp.Description(fmt.Sprintf("Week of life, 1 to %d. Week 1 contains the birth date.", lifecal.TotalWeeks)),
	)
}

func getWeekTool() mcp.Tool {
	return mcp.NewTool(
		"get_week",
		mcp.WithDescription("Fetch the journal entry and reminders stored for a week. Returns null when nothing was written."),
		weekNumberParam(),
	)
}

func getWeek(svc *Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			WeekNumber int `json:"week_number"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		rec, err := svc.API.GetWeek(ctx, args.WeekNumber)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(rec)
	}
}

func upsertJournalTool() mcp.Tool {
	return mcp.NewTool(
		"upsert_journal_entry",
		mcp.WithDescription("Replace the journal text of a week, creating the week if needed. Reminders are kept."),
		weekNumberParam(),
		mcp.WithString("journal_text",
			mcp.Required(),
			mcp.Description("Full journal text for the week."),
		),
	)
}

func upsertJournal(svc *Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			WeekNumber  int     `json:"week_number"`
			JournalText *string `json:"journal_text"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.JournalText == nil {
			return mcp.NewToolResultError("journal_text is required"), nil
		}
		rec, err := svc.API.UpsertJournalEntry(ctx, args.WeekNumber, *args.JournalText)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(rec)
	}
}

func updateRemindersTool() mcp.Tool {
	return mcp.NewTool(
		"update_reminders",
		mcp.WithDescription("Replace the reminders of a week, creating the week if needed. The journal entry is kept."),
		weekNumberParam(),
		mcp.WithString("reminders",
			mcp.Required(),
			mcp.Description("Full reminders text for the week."),
		),
	)
}

func updateReminders(svc *Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			WeekNumber int     `json:"week_number"`
			Reminders  *string `json:"reminders"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Reminders == nil {
			return mcp.NewToolResultError("reminders is required"), nil
		}
		rec, err := svc.API.UpdateReminders(ctx, args.WeekNumber, *args.Reminders)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(rec)
	}
}

func upsertWeekDataTool() mcp.Tool {
	return mcp.NewTool(
		"upsert_week_data",
		mcp.WithDescription("Update the journal text, the reminders, or both for a week. Omitted fields are kept."),
		weekNumberParam(),
		mcp.WithString("journal_text",
			mcp.Description("New journal text."),
		),
		mcp.WithString("reminders",
			mcp.Description("New reminders text."),
		),
	)
}

func upsertWeekData(svc *Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			WeekNumber  int     `json:"week_number"`
			JournalText *string `json:"journal_text"`
			Reminders   *string `json:"reminders"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		rec, err := svc.API.UpsertWeekData(ctx, args.WeekNumber, args.JournalText, args.Reminders)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(rec)
	}
}

func getAllWeeksTool() mcp.Tool {
	return mcp.NewTool(
		"get_all_weeks",
		mcp.WithDescription("List every written week with its journal text and reminders, by ascending week number."),
	)
}

func getAllWeeks(svc *Service) toolHandler {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		all, err := svc.API.GetAllWeeks(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"weeks": all,
			"count": len(all),
		})
	}
}

func getUserTool() mcp.Tool {
	return mcp.NewTool(
		"get_user",
		mcp.WithDescription("Fetch the profile with its birth date. Returns null before onboarding."),
	)
}

func getUser(svc *Service) toolHandler {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		u, err := svc.API.GetUser(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(u)
	}
}

func updateBirthdateTool() mcp.Tool {
	return mcp.NewTool(
		"update_birthdate",
		mcp.WithDescription("Set the birth date that anchors the life grid."),
		mcp.WithString("birthdate",
			mcp.Required(),
			mcp.Description("Birth date as YYYY-MM-DD."),
		),
	)
}

func updateBirthdate(svc *Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		birthdate, err := request.RequireString("birthdate")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		u, err := svc.API.UpdateBirthdate(ctx, birthdate)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(u)
	}
}

func weekDetailsTool() mcp.Tool {
	return mcp.NewTool(
		"week_details",
		mcp.WithDescription("Describe a week of life: its dates, year of life, state, age and stored text."),
		weekNumberParam(),
	)
}

func weekDetails(svc *Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			WeekNumber int `json:"week_number"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		view, err := svc.WeekDetails(ctx, args.WeekNumber)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(view)
	}
}

func overviewTool() mcp.Tool {
	return mcp.NewTool(
		"life_overview",
		mcp.WithDescription("Summarize the life grid: weeks lived, weeks remaining, current week and written weeks."),
	)
}

func overview(svc *Service) toolHandler {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		o, err := svc.Overview(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(o)
	}
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
