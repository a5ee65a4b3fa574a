package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chjbbs/oerplib/connector"
)

func (s *appState) connect() (connector.Connector, error) {
	return connector.New(s.cfg.Server, s.cfg.Port, s.cfg.Protocol,
		connector.WithLogger(s.log))
}

// requireSession checks the (uid, password) pair every post-login call needs.
func (s *appState) requireSession() error {
	if s.cfg.UID == 0 {
		return fmt.Errorf("uid is required: run login first and pass --uid (or set it in the config file)")
	}
	if s.cfg.Password == "" {
		return fmt.Errorf("password is required: pass --password (or set it in the config file)")
	}
	return nil
}

func newLoginCmd(s *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "login USER",
		Short: "authenticate against the configured database and print the user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cnt, err := s.connect()
			if err != nil {
				return err
			}
			uid, err := cnt.Login(cmd.Context(), s.cfg.Database, args[0], s.cfg.Password)
			if err != nil {
				return err
			}
			s.log.Info().Int64("uid", uid).Str("database", s.cfg.Database).Msg("logged in")
			fmt.Fprintln(cmd.OutOrStdout(), uid)
			return nil
		},
	}
}

func newCallCmd(s *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "call MODEL METHOD [ARG...]",
		Short: "invoke a method on a remote model and print the JSON result",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.requireSession(); err != nil {
				return err
			}
			cnt, err := s.connect()
			if err != nil {
				return err
			}
			result, err := cnt.Execute(cmd.Context(), s.cfg.UID, s.cfg.Password,
				args[0], args[1], parseCallArgs(args[2:])...)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

// parseCallArgs decodes each argument as JSON so callers can pass numbers,
// lists and objects; bare words fall back to plain strings.
func parseCallArgs(raw []string) []any {
	args := make([]any, 0, len(raw))
	for _, r := range raw {
		var v any
		if err := json.Unmarshal([]byte(r), &v); err != nil {
			v = r
		}
		args = append(args, v)
	}
	return args
}

func newWorkflowCmd(s *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "workflow MODEL SIGNAL OBJECT_ID",
		Short: "trigger a workflow signal on one remote object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.requireSession(); err != nil {
				return err
			}
			objectID, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("object id %q is invalid, an integer is required", args[2])
			}
			cnt, err := s.connect()
			if err != nil {
				return err
			}
			if err := cnt.ExecWorkflow(cmd.Context(), s.cfg.UID, s.cfg.Password, args[0], args[1], objectID); err != nil {
				return err
			}
			s.log.Info().Str("model", args[0]).Str("signal", args[1]).Int64("object_id", objectID).Msg("workflow signal sent")
			return nil
		},
	}
}

func newReportCmd(s *appState) *cobra.Command {
	var (
		reportType string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "report REPORT MODEL OBJECT_ID",
		Short: "render a report for one object and write it to a file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.requireSession(); err != nil {
				return err
			}
			objectID, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("object id %q is invalid, an integer is required", args[2])
			}
			cnt, err := s.connect()
			if err != nil {
				return err
			}

			rep, err := cnt.Report(cmd.Context(), s.cfg.UID, s.cfg.Password, connector.ReportRequest{
				Name:     args[0],
				Model:    args[1],
				ObjectID: objectID,
				Type:     reportType,
			})
			if err != nil {
				return err
			}

			path := outPath
			if path == "" {
				path = defaultReportPath(args[0], objectID, rep.Format, reportType)
			}
			if err := os.WriteFile(path, rep.Data, 0o600); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			s.log.Info().Str("path", path).Int("bytes", len(rep.Data)).Msg("report written")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&reportType, "type", "pdf", "report render format")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default derived from report name)")
	return cmd
}

func defaultReportPath(reportName string, objectID int64, format, reportType string) string {
	ext := format
	if ext == "" {
		ext = reportType
	}
	if ext == "" {
		ext = "pdf"
	}
	name := strings.ReplaceAll(reportName, ".", "-")
	return fmt.Sprintf("%s-%d.%s", name, objectID, ext)
}
