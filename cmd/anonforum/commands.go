package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ButyrinIA/anonforum/internal/forum"
	"github.com/ButyrinIA/anonforum/internal/models"
	"github.com/ButyrinIA/anonforum/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errValidation = errors.New("validation failed")

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPosts(w io.Writer, posts []models.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "no posts")
		return
	}
	for _, p := range posts {
		fmt.Fprintf(w, "%s  [%s] %s  by %s  likes:%d comments:%d  %s\n",
			p.ID, p.Category, p.Title, p.AnonID, p.Likes, len(p.Comments),
			p.CreatedAt().Format(time.DateTime))
	}
}

func printValidation(w io.Writer, result models.ValidationResult) error {
	for _, e := range result.Errors {
		fmt.Fprintf(w, "- %s\n", e)
	}
	return errValidation
}

// reportPersist печатает предупреждение, если изменение осталось только в памяти
func (a *app) reportPersist(cmd *cobra.Command, err error) error {
	if errors.Is(err, forum.ErrNotPersisted) {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: change was applied but could not be saved")
	}
	return err
}

func (a *app) listCmd() *cobra.Command {
	var category, sortBy string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printPosts(cmd.OutOrStdout(), a.store.GetPosts(category, sortBy))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", models.CategoryAll, "category filter, or all")
	cmd.Flags().StringVar(&sortBy, "sort", forum.SortByTimestamp, "sort key: timestamp, likes or comments")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [post-id]",
		Short: "Show a post with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, ok := a.store.GetPost(args[0])
			if !ok {
				return forum.ErrPostNotFound
			}
			return printJSON(cmd.OutOrStdout(), struct {
				models.Post
				Liked bool `json:"liked"`
			}{post, a.store.IsLiked(post.ID)})
		},
	}
}

func (a *app) postCmd() *cobra.Command {
	var input models.PostInput
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if result := a.store.ValidatePost(input); !result.IsValid {
				return printValidation(cmd.ErrOrStderr(), result)
			}
			post, err := a.store.CreatePost(cmd.Context(), input)
			fmt.Fprintf(cmd.OutOrStdout(), "created post %s as %s\n", post.ID, post.AnonID)
			return a.reportPersist(cmd, err)
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "post title")
	cmd.Flags().StringVar(&input.Content, "content", "", "post content")
	cmd.Flags().StringVar(&input.Category, "category", models.CategoryGeneral,
		"one of: "+strings.Join(models.Categories, ", "))
	cmd.Flags().StringVar(&input.Tags, "tags", "", "comma separated tags, up to 5")
	return cmd
}

func (a *app) commentCmd() *cobra.Command {
	var input models.CommentInput
	cmd := &cobra.Command{
		Use:   "comment [post-id]",
		Short: "Reply to a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if result := a.store.ValidateComment(input); !result.IsValid {
				return printValidation(cmd.ErrOrStderr(), result)
			}
			comment, err := a.store.CreateComment(cmd.Context(), args[0], input)
			if errors.Is(err, forum.ErrPostNotFound) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created comment %s as %s\n", comment.ID, comment.AnonID)
			return a.reportPersist(cmd, err)
		},
	}
	cmd.Flags().StringVar(&input.Content, "content", "", "comment text")
	return cmd
}

func (a *app) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like [post-id]",
		Short: "Like a post once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			likes, err := a.store.LikePost(cmd.Context(), args[0])
			if errors.Is(err, forum.ErrPostNotFound) || errors.Is(err, forum.ErrAlreadyLiked) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "likes: %d\n", likes)
			return a.reportPersist(cmd, err)
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search titles, content and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printPosts(cmd.OutOrStdout(), a.store.SearchPosts(strings.Join(args, " ")))
			return nil
		},
	}
}

func (a *app) tagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag [tag]",
		Short: "List posts with a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printPosts(cmd.OutOrStdout(), a.store.GetPostsByTag(args[0]))
			return nil
		},
	}
}

func (a *app) trendingCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show the most used tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, tc := range a.store.GetTrendingTags(limit) {
				fmt.Fprintf(cmd.OutOrStdout(), "#%s %d\n", tc.Tag, tc.Count)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of tags")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show forum and storage statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), struct {
				Stats      models.Stats       `json:"stats"`
				Categories map[string]int     `json:"categories"`
				Recent     models.Activity    `json:"recent"`
				Storage    models.StorageInfo `json:"storage"`
				DataSizeKB int                `json:"dataSizeKB"`
			}{
				Stats:      a.store.GetStats(),
				Categories: a.store.GetCategoryStats(),
				Recent:     a.store.GetRecentActivity(),
				Storage:    a.store.GetStorageInfo(cmd.Context()),
				DataSizeKB: a.store.DataSize(),
			})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.store.ExportData()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var modeName string
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := forum.ParseImportMode(modeName)
			if err != nil {
				return err
			}
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import: %w", err)
			}
			added, err := a.store.ImportData(cmd.Context(), payload, mode)
			if errors.Is(err, forum.ErrInvalidImport) {
				return fmt.Errorf("failed to import data: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "data imported successfully (%s, %d posts)\n", mode, added)
			return a.reportPersist(cmd, err)
		},
	}
	cmd.Flags().StringVar(&modeName, "mode", "merge", "merge or replace")
	return cmd
}

func (a *app) cleanCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove posts older than the given number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.store.CleanOldData(cmd.Context(), days)
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d posts\n", removed)
			return a.reportPersist(cmd, err)
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "age threshold in days")
	return cmd
}

func (a *app) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all posts, comments and likes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all data without --yes")
			}
			err := a.store.ClearAllData(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "all data cleared")
			return a.reportPersist(cmd, err)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func (a *app) seedCmd() *cobra.Command {
	var count int
	var fakeSeed int64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the forum with generated posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fakeSeed == 0 {
				fakeSeed = time.Now().UnixNano()
			}
			var created int
			for _, fp := range seed.Fake(count, fakeSeed) {
				if !a.store.ValidatePost(fp.Post).IsValid {
					a.logger.Debug("Skipping invalid fake post", zap.String("title", fp.Post.Title))
					continue
				}
				post, err := a.store.CreatePost(cmd.Context(), fp.Post)
				if err != nil {
					return a.reportPersist(cmd, err)
				}
				for _, c := range fp.Comments {
					if !a.store.ValidateComment(c).IsValid {
						continue
					}
					if _, err := a.store.CreateComment(cmd.Context(), post.ID, c); err != nil {
						return a.reportPersist(cmd, err)
					}
				}
				created++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d posts\n", created)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "number of posts")
	cmd.Flags().Int64Var(&fakeSeed, "seed", 0, "random seed (default: current time)")
	return cmd
}
