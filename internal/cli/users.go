package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mathdrills/internal/domain"
	"mathdrills/internal/infra/sqlite"
)

func newUsersCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage learner profiles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, flags, func(store *sqlite.UserStore) error {
				users, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tUSERNAME\tNAME")
				for _, u := range users {
					fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.DisplayName)
				}
				return w.Flush()
			})
		},
	}

	var displayName string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, flags, func(store *sqlite.UserStore) error {
				user, err := store.Create(cmd.Context(), args[0], displayName)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", user.ID, user.DisplayName)
				return nil
			})
		},
	}
	add.Flags().StringVar(&displayName, "name", "", "display name (default: username)")

	rename := &cobra.Command{
		Use:   "rename <id> <display name>",
		Short: "Change a user's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withUsers(cmd, flags, func(store *sqlite.UserStore) error {
				ok, err := store.UpdateDisplayName(cmd.Context(), id, args[1])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "renamed user %d\n", id)
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user; recorded scores are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withUsers(cmd, flags, func(store *sqlite.UserStore) error {
				ok, err := store.Delete(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted user %d\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, rename, remove)
	return cmd
}

func withUsers(cmd *cobra.Command, flags *globalFlags, fn func(*sqlite.UserStore) error) error {
	e, err := flags.setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(sqlite.NewUserStore(e.db))
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return id, nil
}
