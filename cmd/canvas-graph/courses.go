package main

import (
	"github.com/spf13/cobra"

	"github.com/Sternrassler/canvas-graph/internal/output"
)

func newCoursesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the courses visible to the token as NDJSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, err := opts.open(ctx)
			if err != nil {
				return err
			}

			courses, err := s.resources.ListCourses(ctx, s.profile)
			if err != nil {
				return err
			}

			w := output.NewWriter(cmd.OutOrStdout())
			defer w.Close()
			if err := output.WriteAll(w, courses); err != nil {
				return err
			}

			s.logger.Info().Int("courses", w.Count()).Msg("Listed courses")
			return nil
		},
	}
}
