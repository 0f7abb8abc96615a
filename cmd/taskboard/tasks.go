package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// withBoard opens the environment, hydrates a board and runs fn against it.
// A save failure during fn is returned even when fn itself succeeded.
func withBoard(cfgPath string, fn func(ctx context.Context, b *board.Board) error) error {
	e, err := openEnv(cfgPath)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	b, saver, err := e.loadBoard(ctx)
	if err != nil {
		return err
	}
	if err := fn(ctx, b); err != nil {
		return err
	}
	return saver.err
}

func listCmd(cfgPath *string) *cobra.Command {
	var (
		query  string
		status string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the board, one column per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var only model.Status
			if status != "" {
				st, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				only = st
			}

			return withBoard(*cfgPath, func(_ context.Context, b *board.Board) error {
				cols := board.View(b.List(), query)
				if only != "" {
					cols = board.Columns{cols.Column(only)}
				}

				if asJSON {
					var tasks []model.Task
					for _, col := range cols {
						tasks = append(tasks, col.Tasks...)
					}
					data, err := store.Encode(tasks)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return nil
				}

				printColumns(cmd.OutOrStdout(), cols)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Only show tasks whose name, description or tags contain this text")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Only show one column (Todo, InProgress, Done)")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")

	return cmd
}

func printColumns(w io.Writer, cols board.Columns) {
	for i, col := range cols {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", col.Status.Label(), len(col.Tasks))
		for _, t := range col.Tasks {
			fmt.Fprintf(w, "  %s  [%s] %s", t.ID, t.Priority, t.Name)
			if t.DueDate != nil {
				fmt.Fprintf(w, "  due %s", t.DueDate.Format(model.DateLayout))
			}
			if len(t.Tags) > 0 {
				fmt.Fprintf(w, "  #%s", strings.Join(t.Tags, " #"))
			}
			fmt.Fprintln(w)
		}
	}
}

// taskFlags are the editable fields shared by add and edit.
type taskFlags struct {
	name        string
	description string
	due         string
	priority    string
	status      string
	tags        string
}

func (f *taskFlags) register(cmd *cobra.Command, withName bool) {
	if withName {
		cmd.Flags().StringVarP(&f.name, "name", "n", "", "Task name")
	}
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD, not in the past); empty clears it")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "Priority (Low, Medium, High)")
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "Status (Todo, InProgress, Done)")
	cmd.Flags().StringVarP(&f.tags, "tags", "t", "", "Comma-separated tags")
}

// apply overrides in with every flag the user set.
func (f *taskFlags) apply(cmd *cobra.Command, in board.Input) board.Input {
	changed := cmd.Flags().Changed
	if changed("name") {
		in.Name = f.name
	}
	if changed("description") {
		in.Description = f.description
	}
	if changed("due") {
		in.DueDate = f.due
	}
	if changed("priority") {
		in.Priority = f.priority
	}
	if changed("status") {
		in.Status = f.status
	}
	if changed("tags") {
		in.Tags = f.tags
	}
	return in
}

func submit(ctx context.Context, b *board.Board, e *board.Editor, in board.Input) (model.Task, error) {
	sub, err := e.Submit(in)
	if err != nil {
		return model.Task{}, err
	}
	return sub.Apply(ctx, b)
}

func addCmd(cfgPath *string) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(*cfgPath, func(ctx context.Context, b *board.Board) error {
				e := board.NewCreateEditor(nil)
				in := f.apply(cmd, e.Input())
				in.Name = args[0]

				t, err := submit(ctx, b, e, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task Created: %q has been added. (%s)\n", t.Name, t.ID)
				return nil
			})
		},
	}

	f.register(cmd, false)
	return cmd
}

func editCmd(cfgPath *string) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an existing task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(*cfgPath, func(ctx context.Context, b *board.Board) error {
				current, err := b.Get(args[0])
				if err != nil {
					return err
				}
				e := board.NewEditEditor(current, nil)

				t, err := submit(ctx, b, e, f.apply(cmd, e.Input()))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task Updated: %q has been updated.\n", t.Name)
				return nil
			})
		},
	}

	f.register(cmd, true)
	return cmd
}

func moveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Move a task to another column (Todo, InProgress, Done)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(*cfgPath, func(ctx context.Context, b *board.Board) error {
				target, err := model.ParseStatus(args[1])
				if err != nil {
					return err
				}
				if err := board.NewTransitions(b).Move(ctx, args[0], target); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", args[0], target.Label())
				return nil
			})
		},
	}
}

func rmCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(*cfgPath, func(ctx context.Context, b *board.Board) error {
				t, err := b.Get(args[0])
				if err != nil {
					return err
				}
				if err := b.Delete(ctx, t.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task Deleted: %q has been deleted.\n", t.Name)
				return nil
			})
		},
	}
}
