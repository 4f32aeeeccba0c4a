package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/model"

	"github.com/spf13/cobra"
)

var (
	addTitle    string
	addContent  string
	addPhoto    string
	editTitle   string
	editContent string
	editPhoto   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		all, err := e.notes.GetAll(cmd.Context(), e.sess.UserID)
		if err != nil {
			return err
		}

		if len(all) == 0 {
			fmt.Println("no notes")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSYNCED\tUPDATED")
		for _, n := range all {
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\n",
				n.ID, n.Title, n.Synced, n.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		n, err := e.notes.Get(cmd.Context(), e.sess.UserID, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n%s\n", n.Title, n.Content)
		if n.Photo != "" {
			fmt.Printf("\nphoto: %s\n", n.Photo)
		}
		fmt.Printf("\nsynced: %v, updated: %s\n", n.Synced, n.UpdatedAt.Format("2006-01-02 15:04"))
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note (works offline)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		n, err := e.notes.Create(cmd.Context(), e.sess.UserID, model.NoteForm{
			Title:   addTitle,
			Content: addContent,
			Photo:   addPhoto,
		})
		if err != nil {
			return err
		}

		fmt.Printf("created %s (pending sync)\n", n.ID)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a note (works offline)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		var patch model.NotePatch
		if cmd.Flags().Changed("title") {
			patch.Title = &editTitle
		}
		if cmd.Flags().Changed("content") {
			patch.Content = &editContent
		}
		if cmd.Flags().Changed("photo") {
			patch.Photo = &editPhoto
		}

		n, err := e.notes.Update(cmd.Context(), e.sess.UserID, args[0], patch)
		if err != nil {
			return err
		}

		fmt.Printf("updated %s (pending sync)\n", n.ID)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note (works offline)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		if err := e.notes.Delete(cmd.Context(), e.sess.UserID, args[0]); err != nil {
			return err
		}

		fmt.Printf("deleted %s (pending sync)\n", args[0])
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "note title")
	addCmd.Flags().StringVar(&addContent, "content", "", "note body")
	addCmd.Flags().StringVar(&addPhoto, "photo", "", "path to an image file")
	addCmd.MarkFlagRequired("title")

	editCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	editCmd.Flags().StringVar(&editContent, "content", "", "new body")
	editCmd.Flags().StringVar(&editPhoto, "photo", "", "new image path")

	rootCmd.AddCommand(listCmd, getCmd, addCmd, editCmd, rmCmd)
}
