package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/lint"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the built-in rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := flagString(cmd, "format")
			if err != nil {
				return err
			}
			switch format {
			case "pretty":
				renderRulesPretty(cmd.OutOrStdout(), ruleMetas())
				return nil
			case "json":
				return renderRulesJSON(cmd.OutOrStdout(), ruleMetas())
			default:
				return errors.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

type rulePayload struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Fixable     string            `json:"fixable,omitempty"`
	Recommended bool              `json:"recommended"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description"`
	URL         string            `json:"url"`
	Messages    map[string]string `json:"messages"`
}

func renderRulesPretty(out io.Writer, metas []lint.Meta) {
	name := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.Faint)
	for i, m := range metas {
		if i > 0 {
			fmt.Fprintln(out)
		}
		var tags []string
		tags = append(tags, m.Type)
		if m.Fixable != "" {
			tags = append(tags, "fixable")
		}
		if m.Recommended {
			tags = append(tags, "recommended")
		}
		fmt.Fprintf(out, "%s %s\n", name.Sprint(m.Name), dim.Sprintf("(%s)", strings.Join(tags, ", ")))
		fmt.Fprintf(out, "  %s\n", m.Description)
		ids := make([]string, 0, len(m.Messages))
		for id := range m.Messages {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(out, "  %s: %s\n", id, m.Messages[id])
		}
		fmt.Fprintf(out, "  %s\n", dim.Sprint(m.URL))
	}
}

func renderRulesJSON(out io.Writer, metas []lint.Meta) error {
	payload := make([]rulePayload, 0, len(metas))
	for _, m := range metas {
		payload = append(payload, rulePayload{
			Name:        m.Name,
			Type:        m.Type,
			Fixable:     m.Fixable,
			Recommended: m.Recommended,
			Category:    m.Category,
			Description: m.Description,
			URL:         m.URL,
			Messages:    m.Messages,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
