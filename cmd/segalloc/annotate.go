package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helixml/segalloc/application/service"
	"github.com/helixml/segalloc/domain/textgrid"
	"github.com/helixml/segalloc/internal/config"
	"github.com/helixml/segalloc/internal/log"
)

// tierFlags are shared by the commands that open a file on two tiers.
type tierFlags struct {
	envFile string
	tierA   string
	tierB   string
	scope   float64
	format  string
}

func (f *tierFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&f.tierA, "tier-a", "", "Upper tier name")
	cmd.Flags().StringVar(&f.tierB, "tier-b", "", "Lower tier name")
	cmd.Flags().Float64Var(&f.scope, "scope", -1, "Boundary tolerance (default: LINK_SCOPE)")
	cmd.Flags().StringVar(&f.format, "format", "yaml", "Output format: yaml, json")
	_ = cmd.MarkFlagRequired("tier-a")
	_ = cmd.MarkFlagRequired("tier-b")
}

// open parses path on the two tiers. A path of "-" reads stdin.
func (f *tierFlags) open(cmd *cobra.Command, path string) (*service.Session, service.Format, error) {
	format, err := service.ParseFormat(f.format)
	if err != nil {
		return nil, "", err
	}
	cfg, err := loadConfig(f.envFile)
	if err != nil {
		return nil, "", err
	}
	content, err := readAnnotation(cmd, path)
	if err != nil {
		return nil, "", err
	}

	params := service.SessionParams{
		Name:    filepath.Base(path),
		Content: content,
		TierA:   f.tierA,
		TierB:   f.tierB,
	}
	if f.scope >= 0 {
		params.Scope = &f.scope
	}
	session, err := service.NewSession(params, cfg.LinkScope(), cliLogger(cfg))
	if err != nil {
		return nil, "", err
	}
	return session, format, nil
}

func cliLogger(cfg config.AppConfig) *slog.Logger {
	return log.NewLogger(cfg).Slog()
}

func readAnnotation(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read annotation: %w", err)
	}
	return textgrid.Decode(data)
}

func tiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers FILE",
		Short: "List the tier names declared in a TextGrid file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readAnnotation(cmd, args[0])
			if err != nil {
				return err
			}
			names, err := textgrid.TierNames(content)
			if err != nil {
				return fmt.Errorf("%s: %w", textgrid.Message(err), err)
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				_, _ = fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

func linkCmd() *cobra.Command {
	var flags tierFlags

	cmd := &cobra.Command{
		Use:   "link FILE",
		Short: "Print the segments of two tiers and their boundary links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, format, err := flags.open(cmd, args[0])
			if err != nil {
				return err
			}
			return service.Encode(cmd.OutOrStdout(), session.Snapshot(), format)
		},
	}
	flags.register(cmd)
	return cmd
}

func reportCmd() *cobra.Command {
	var (
		flags  tierFlags
		groups []string
	)

	cmd := &cobra.Command{
		Use:   "report FILE",
		Short: "Allocate segment groups and print the allocation report",
		Long: `Allocate segment groups and print the allocation report.

Each --group is a comma-separated list of segment ids, picked in order and
then committed, for example --group 0,2 --group 1,3,4. Segment ids are
printed by the link command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, format, err := flags.open(cmd, args[0])
			if err != nil {
				return err
			}
			for _, group := range groups {
				if err := allocateGroup(session, group); err != nil {
					return fmt.Errorf("group %q: %w", group, err)
				}
			}
			return service.Encode(cmd.OutOrStdout(), session.Report(), format)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringArrayVar(&groups, "group", nil, "Comma-separated segment ids to allocate together (repeatable)")
	return cmd
}

func allocateGroup(session *service.Session, group string) error {
	for _, field := range strings.Split(group, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return fmt.Errorf("invalid segment id %q", field)
		}
		if _, err := session.Pick(&id); err != nil {
			return err
		}
	}
	_, err := session.Commit()
	return err
}
