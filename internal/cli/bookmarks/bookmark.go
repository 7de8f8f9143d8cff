package bookmarks

import (
	"context"
	"fmt"

	"github.com/julianstephens/orbitflow/internal/cli"
	"github.com/julianstephens/orbitflow/internal/models"
)

type BookmarkCmd struct {
	Add    BookmarkAddCmd    `cmd:"" help:"Save a bookmark."`
	List   BookmarkListCmd   `cmd:"" help:"List bookmarks."`
	Search BookmarkSearchCmd `cmd:"" help:"Find bookmarks by title prefix."`
	Delete BookmarkDeleteCmd `cmd:"" help:"Delete a bookmark."`
}

func printBookmarks(bms []models.Bookmark) {
	if len(bms) == 0 {
		fmt.Println("No bookmarks found.")
		return
	}
	for _, b := range bms {
		fmt.Printf("%s  %s\n          %s\n", cli.ShortID(b.ID), b.Title, b.URL)
		if b.Description != "" {
			fmt.Printf("          %s\n", b.Description)
		}
	}
}

type BookmarkAddCmd struct {
	Title       string `arg:"" help:"Bookmark title."`
	URL         string `arg:"" help:"http:// or https:// URL."`
	Description string `help:"Optional description." short:"d"`
}

func (c *BookmarkAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	b, err := ctx.Bookmarks.Add(bg, owner, c.Title, c.URL, c.Description)
	if err != nil {
		return err
	}
	fmt.Printf("Saved bookmark %s: %s\n", cli.ShortID(b.ID), b.Title)
	return nil
}

type BookmarkListCmd struct{}

func (c *BookmarkListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	bms, err := ctx.Bookmarks.List(bg, owner, "")
	if err != nil {
		return err
	}
	printBookmarks(bms)
	return nil
}

type BookmarkSearchCmd struct {
	Query string `arg:"" help:"Title prefix (case-insensitive)."`
}

func (c *BookmarkSearchCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	bms, err := ctx.Bookmarks.List(bg, owner, c.Query)
	if err != nil {
		return err
	}
	printBookmarks(bms)
	return nil
}

type BookmarkDeleteCmd struct {
	ID string `arg:"" help:"Bookmark id (or unique prefix)."`
}

func (c *BookmarkDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	bms, err := ctx.Bookmarks.List(bg, owner, "")
	if err != nil {
		return err
	}
	ids := make([]string, len(bms))
	for i, b := range bms {
		ids[i] = b.ID
	}
	id, err := cli.MatchID(ids, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Bookmarks.Delete(bg, owner, id); err != nil {
		return err
	}
	fmt.Println("Deleted bookmark.")
	return nil
}
