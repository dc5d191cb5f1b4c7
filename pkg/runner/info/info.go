// Package info reports where lifedots keeps its data.
package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/config"
)

// Info prints the resolved configuration and a count of stored weeks.
type Info struct {
	Config *config.Config
	API    app.API
	Out    io.Writer
}

// Do prints the report.
func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = os.Stdout
	}

	if override := os.Getenv("LIFEDOTS_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(out, "LIFEDOTS_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, "LIFEDOTS_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		if n.Config, err = config.Load(); err != nil {
			return err
		}
	}
	c := n.Config
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	if c.IsRemote() {
		tbl.AddRow(bold.Sprint("Remote"), c.Remote.URL)
		tbl.AddRow(bold.Sprint("Token"), presence(c.Remote.Token))
	} else {
		tbl.AddRow(bold.Sprint("Path"), c.BasePath())
		tbl.AddRow(bold.Sprint("Driver"), c.StoreDriver())
		tbl.AddRow(bold.Sprint("User"), c.User)
	}
	tbl.AddRow(bold.Sprint("Week starts"), c.WeekStart)
	tbl.AddRow(bold.Sprint("API address"), c.Server.Addr)
	tbl.AddRow(bold.Sprint("API auth"), presence(c.Server.Secret))

	if n.API == nil {
		_, _ = fmt.Fprintln(out, tbl)
		return fmt.Errorf("failed to open the week store")
	}
	u, err := n.API.GetUser(ctx)
	if err != nil {
		return err
	}
	birth := "not set"
	if u.HasBirthDate() {
		birth = u.BirthDate
	}
	tbl.AddRow(bold.Sprint("Birth date"), birth)

	weeks, err := n.API.GetAllWeeks(ctx)
	if err != nil {
		return err
	}
	tbl.AddRow(bold.Sprint("Stored weeks"), len(weeks))
	_, _ = fmt.Fprintln(out, tbl)
	return nil
}

func presence(secret string) string {
	if secret == "" {
		return "none"
	}
	return "configured"
}
