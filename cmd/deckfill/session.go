package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/colorprofile"
	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or clear the entries saved in a tab",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the tab's saved entries as JSON",
	Args:  cobra.NoArgs,
	RunE:  runSessionShow,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the tab's saved entries and pending download",
	Args:  cobra.NoArgs,
	RunE:  runSessionClear,
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}

// sessionReport is what 'session show' prints.
type sessionReport struct {
	Tab     string           `json:"tab"`
	Session *session.Session `json:"session"`
	Pending *session.Handoff `json:"pendingDownload,omitempty"`
	Missing []string         `json:"missing,omitempty"`
}

func runSessionShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	report, err := inspectTab(ctx, e.tabID, e.tab)
	if err != nil {
		return err
	}
	if report.Session == nil && report.Pending == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Nothing saved in tab %s.\n", e.tabID)
		return nil
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), highlightJSON(cmd.OutOrStdout(), string(out)))
	return nil
}

// inspectTab reads the tab's entries without binding to them.
func inspectTab(ctx context.Context, tabID string, tab kv.Store) (*sessionReport, error) {
	report := &sessionReport{Tab: tabID}

	sess, err := session.NewStore(tab).Lookup(ctx)
	if err != nil {
		return nil, err
	}
	report.Session = sess
	if sess != nil {
		for _, p := range sess.Template.Placeholders {
			if !p.Kind.Filled(sess.Values[p.Name]) {
				report.Missing = append(report.Missing, p.Name)
			}
		}
	}

	report.Pending, err = session.PeekHandoff(ctx, tab)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func runSessionClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := session.NewStore(e.tab).Clear(ctx); err != nil {
		return err
	}
	if err := session.DropHandoff(ctx, e.tab); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared tab %s.\n", e.tabID)
	return nil
}

// highlightJSON colors source when w is a color terminal.
func highlightJSON(w io.Writer, source string) string {
	profile := colorprofile.NoTTY
	if f, ok := w.(*os.File); ok {
		profile = colorprofile.Detect(f, os.Environ())
	}
	if profile == colorprofile.NoTTY || profile == colorprofile.Ascii {
		return source
	}

	lexer := lexers.Get("json")
	formatter := formatters.Get("terminal256")
	if profile == colorprofile.TrueColor {
		formatter = formatters.Get("terminal16m")
	}
	style := styles.Get("monokai")
	if lexer == nil || formatter == nil || style == nil {
		return source
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return strings.TrimRight(buf.String(), "\n")
}
