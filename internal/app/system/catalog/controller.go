package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/studyshare/internal/domain/models"
)

var (
	// ErrNotOwner is returned when someone other than the uploader tries to
	// delete a record.
	ErrNotOwner = errors.New("catalog: record belongs to another user")
	// ErrNoFile is returned for file actions on a record without a locator.
	ErrNoFile = errors.New("catalog: record has no file")
	// ErrUnknownAction is returned for actions the screen does not offer.
	ErrUnknownAction = errors.New("catalog: action not available")
	// ErrUnresolved is returned when storage cannot produce a link for a
	// record's file.
	ErrUnresolved = errors.New("catalog: file location could not be resolved")
	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("catalog: cancelled")
)

// ShareURLTTL is the lifetime of the signed URL produced by the share action.
const ShareURLTTL = 3600 * time.Second

// Deps are the collaborators a Controller dispatches to. Only Fetcher is
// required; an action whose collaborator is nil fails with a message.
type Deps struct {
	Fetcher  Fetcher
	Deleter  Deleter
	Storage  Storage
	Opener   Opener
	Sharer   Sharer
	Files    LocalFiles
	Confirm  Confirmer
	Messages Messenger
	Identity Identity
	Log      *zap.Logger
}

// Controller binds one screen's Store to its collaborators.
type Controller struct {
	screen     Screen
	store      *Store
	menus      *Menus
	deps       Deps
	refreshing bool
}

// NewController builds a controller with a fresh Store for screen.
func NewController(screen Screen, deps Deps) *Controller {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Controller{
		screen: screen,
		store:  screen.NewStore(),
		menus:  newMenus(),
		deps:   deps,
	}
}

func (c *Controller) Screen() Screen { return c.screen }
func (c *Controller) Store() *Store  { return c.store }
func (c *Controller) Menus() *Menus  { return c.menus }

// Refreshing reports whether a Refresh call is in progress.
func (c *Controller) Refreshing() bool { return c.refreshing }

// LoadInitial fetches the screen's records. On failure the previous snapshot
// is kept.
func (c *Controller) LoadInitial(ctx context.Context) error {
	records, err := c.deps.Fetcher.FetchResources(ctx, c.screen.Query())
	if err != nil {
		return c.fail(fmt.Sprintf("Could not load %s.", c.screen.Title), "fetch records", err)
	}
	c.store.ReplaceAll(records)
	c.menus.retain(c.store)
	return nil
}

// Refresh is LoadInitial with the refreshing flag held for the duration.
func (c *Controller) Refresh(ctx context.Context) error {
	c.refreshing = true
	defer func() { c.refreshing = false }()
	return c.LoadInitial(ctx)
}

func (c *Controller) OnSearchChanged(text string) { c.store.SetSearchText(text) }
func (c *Controller) OnTagToggled(tag string)     { c.store.ToggleTag(tag) }

// Visible is shorthand for Store().VisibleRecords().
func (c *Controller) Visible() []models.Record { return c.store.VisibleRecords() }

// PerformAction runs action against r. The record's menu is closed
// whatever the outcome.
func (c *Controller) PerformAction(ctx context.Context, r models.Record, action Action) error {
	defer c.menus.Close(r.ID)
	if !c.screen.Allows(action) {
		return fmt.Errorf("%w: %q on %s", ErrUnknownAction, action, c.screen.Key)
	}
	switch action {
	case ActionView:
		return c.view(ctx, r)
	case ActionDownload:
		return c.download(ctx, r)
	case ActionShare:
		return c.share(ctx, r)
	case ActionDelete:
		return c.delete(ctx, r)
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

func (c *Controller) view(ctx context.Context, r models.Record) error {
	url := r.ImageURL
	if url == "" {
		if !r.HasFile() || c.deps.Storage == nil {
			return c.noFile(r)
		}
		url = c.deps.Storage.PublicURL(r.FilePath)
		if url == "" {
			return c.fail("Failed to open file.", "resolve url", fmt.Errorf("%w: %s", ErrUnresolved, r.FilePath))
		}
	}
	if c.deps.Opener == nil {
		return c.missing("open")
	}
	if err := c.deps.Opener.Open(ctx, url); err != nil {
		return c.fail("Failed to open file.", "open url", err)
	}
	return nil
}

func (c *Controller) download(ctx context.Context, r models.Record) error {
	if !r.HasFile() || c.deps.Storage == nil {
		return c.noFile(r)
	}
	if c.deps.Files == nil {
		return c.missing("download")
	}
	rc, err := c.deps.Storage.Download(ctx, r.FilePath)
	if err != nil {
		return c.fail("Failed to download file.", "download", err)
	}
	defer rc.Close()

	uri, err := c.deps.Files.Save(r.Name, rc)
	if err != nil {
		return c.fail("Failed to save file.", "save local file", err)
	}
	if c.deps.Sharer == nil {
		return nil
	}
	if err := c.deps.Sharer.Share(ctx, uri); err != nil {
		return c.fail("Failed to share file.", "share local file", err)
	}
	return nil
}

func (c *Controller) share(ctx context.Context, r models.Record) error {
	if !r.HasFile() || c.deps.Storage == nil {
		return c.noFile(r)
	}
	if c.deps.Sharer == nil {
		return c.missing("share")
	}
	url, err := c.deps.Storage.SignedURL(ctx, r.FilePath, ShareURLTTL)
	if err != nil {
		return c.fail("Failed to share file.", "signed url", err)
	}
	if err := c.deps.Sharer.Share(ctx, url); err != nil {
		return c.fail("Failed to share file.", "share url", err)
	}
	return nil
}

func (c *Controller) delete(ctx context.Context, r models.Record) error {
	userID := ""
	if c.deps.Identity != nil {
		userID = c.deps.Identity.UserID()
	}
	if !r.OwnedBy(userID) {
		c.deps.Log.Info("delete refused, not owner",
			zap.String("record_id", r.ID.Hex()),
			zap.String("user_id", userID))
		c.message(fmt.Sprintf("You can only delete your own %ss.", r.Collection.Noun()))
		return ErrNotOwner
	}
	if c.deps.Deleter == nil {
		return c.missing("delete")
	}
	if c.deps.Confirm != nil {
		ok, err := c.deps.Confirm.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete this %s?", r.Collection.Noun()))
		if err != nil {
			return c.fail("Could not confirm deletion.", "confirm", err)
		}
		if !ok {
			return ErrCancelled
		}
	}
	if err := c.deps.Deleter.DeleteRecord(ctx, r.Collection, r.ID); err != nil {
		return c.fail(fmt.Sprintf("Failed to delete %s.", r.Collection.Noun()), "delete record", err)
	}
	// The delete already happened; a failed re-fetch has reported itself.
	_ = c.Refresh(ctx)
	return nil
}

func (c *Controller) noFile(r models.Record) error {
	c.message("This item has no file attached.")
	return fmt.Errorf("%w: %s", ErrNoFile, r.ID.Hex())
}

func (c *Controller) missing(what string) error {
	c.message(fmt.Sprintf("Cannot %s here.", what))
	return fmt.Errorf("%w: no %s collaborator", ErrUnknownAction, what)
}

func (c *Controller) fail(userMsg, op string, err error) error {
	c.deps.Log.Error("catalog "+op+" failed",
		zap.String("screen", c.screen.Key),
		zap.Error(err))
	c.message(userMsg)
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Controller) message(text string) {
	if c.deps.Messages != nil {
		c.deps.Messages.Message(text)
	}
}
