package terminal

import (
	"fmt"
	"strings"

	"github.com/disiqueira/gotree/v3"

	"github.com/dalemusser/studyshare/internal/app/system/catalog"
	"github.com/dalemusser/studyshare/internal/domain/models"
)

// Render draws a screen as a tree: one branch per visible record, numbered
// so actions can refer to them, with an open menu listing its actions.
func Render(ctl *catalog.Controller) string {
	screen := ctl.Screen()
	store := ctl.Store()
	visible := ctl.Visible()

	root := gotree.New(fmt.Sprintf("%s (%d of %d)", screen.Title, len(visible), store.Len()))
	if q := store.SearchText(); q != "" {
		root.Add(fmt.Sprintf("search: %q", q))
	}
	if len(screen.Chips) > 0 {
		root.Add("chips: " + chipLine(screen.Chips, store))
	}

	if len(visible) == 0 {
		root.Add("No items found.")
		return root.Print()
	}
	for i, r := range visible {
		item := root.Add(fmt.Sprintf("[%d] %s", i+1, r.Name))
		describe(item, r)
		if ctl.Menus().IsOpen(r.ID) {
			menu := item.Add("actions")
			for _, a := range screen.Actions {
				menu.Add(string(a))
			}
		}
	}
	return root.Print()
}

func chipLine(chips []string, store *catalog.Store) string {
	parts := make([]string, len(chips))
	for i, c := range chips {
		if store.IsActive(c) {
			parts[i] = "[x] " + c
		} else {
			parts[i] = "[ ] " + c
		}
	}
	return strings.Join(parts, "  ")
}

func describe(item gotree.Tree, r models.Record) {
	if r.Description != "" {
		item.Add(truncate(r.Description, 80))
	}
	if len(r.Tags) > 0 {
		item.Add("tags: " + strings.Join(r.Tags, ", "))
	}
	meta := "by " + r.UploadedBy
	if !r.CreatedAt.IsZero() {
		meta += " on " + r.CreatedAt.Local().Format("02 Jan 2006")
	}
	item.Add(meta)
	if r.HasFile() {
		item.Add("file: " + r.FilePath)
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
