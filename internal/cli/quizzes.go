package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuizzesCmd(flags *globalFlags) *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List the quiz types that can be played",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.setup(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			service, err := buildService(cmd.Context(), e, files)
			if err != nil {
				return err
			}
			for _, name := range service.Variants() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "quiz file to add; repeatable")
	return cmd
}
