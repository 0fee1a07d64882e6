package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dalemusser/studyshare/internal/app/apiclient"
	"github.com/dalemusser/studyshare/internal/app/system/authctx"
	"github.com/dalemusser/studyshare/internal/app/system/catalog"
	"github.com/dalemusser/studyshare/internal/app/system/theme"
	"go.uber.org/zap"
)

// API is the server surface the REPL uses; *apiclient.Client satisfies it.
type API interface {
	catalog.Fetcher
	catalog.Deleter
	catalog.Storage
	Login(ctx context.Context, email, password string) (authctx.User, error)
	Signup(ctx context.Context, fullName, email, password string) (authctx.User, error)
	Logout(ctx context.Context) error
	Chat(ctx context.Context, query string) (string, error)
	Notifications(ctx context.Context) ([]apiclient.Notification, error)
}

var _ API = (*apiclient.Client)(nil)

// REPL reads one command per line. It is not safe for concurrent use.
type REPL struct {
	API       API
	Auth      *authctx.Context
	Theme     *theme.Context
	In        *bufio.Reader
	FD        int // NoTTY unless In reads a terminal
	Out       *Printer
	Confirm   catalog.Confirmer
	Files     catalog.LocalFiles
	OnSession func() // called after the signed-in user changes
	Log       *zap.Logger

	ctl *catalog.Controller
}

const helpText = `Commands:
  screens                     list screens
  open <screen>               load a screen (home, notes, papers, mst, notices, requests)
  show                        redraw the current screen
  refresh                     reload from the server
  search [text]               filter by name or description; empty clears
  chip <name>                 toggle a chip
  menu <n>                    open or close the action menu of item n
  view|download|share|delete <n>
  login <email>               sign in (asks for the password)
  signup <email> <full name>  create an account
  logout | whoami
  chat <question>             ask the study assistant
  notifications               recent notices and requests
  theme                       toggle light/dark
  quit`

// Run loops until quit, EOF or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	if r.Log == nil {
		r.Log = zap.NewNop()
	}
	r.Out.Title("StudyShare. Type 'help' for commands.")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.Out.out, r.prompt())
		line, err := r.In.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.Out.out)
				return nil
			}
			return err
		}
		if quit := r.Exec(ctx, line); quit {
			return nil
		}
	}
}

func (r *REPL) prompt() string {
	name := "-"
	if r.ctl != nil {
		name = r.ctl.Screen().Key
	}
	if u, ok := r.Auth.User(); ok {
		return fmt.Sprintf("%s@%s> ", u.Email, name)
	}
	return name + "> "
}

// Exec runs one command line and reports whether the user asked to quit.
func (r *REPL) Exec(ctx context.Context, line string) bool {
	if r.Log == nil {
		r.Log = zap.NewNop()
	}
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "":
	case "help", "?":
		r.Out.Println(helpText)
	case "quit", "exit":
		return true
	case "screens":
		for _, s := range catalog.Screens {
			r.Out.Println(fmt.Sprintf("  %-9s %s", s.Key, s.Title))
		}
	case "open":
		r.open(ctx, rest)
	case "show":
		r.withScreen(func() { r.show() })
	case "refresh":
		r.withScreen(func() {
			if r.ctl.Refresh(ctx) == nil {
				r.show()
			}
		})
	case "search":
		r.withScreen(func() {
			r.ctl.OnSearchChanged(rest)
			r.show()
		})
	case "chip":
		r.withScreen(func() { r.chip(rest) })
	case "menu":
		r.withScreen(func() { r.menu(rest) })
	case "view", "download", "share", "delete":
		r.withScreen(func() { r.action(ctx, catalog.Action(strings.ToLower(cmd)), rest) })
	case "login":
		r.login(ctx, rest)
	case "signup":
		r.signup(ctx, rest)
	case "logout":
		r.logout(ctx)
	case "whoami":
		if u, ok := r.Auth.User(); ok {
			r.Out.Println(fmt.Sprintf("%s <%s>", u.FullName, u.Email))
		} else {
			r.Out.Println("Not signed in.")
		}
	case "chat":
		r.chat(ctx, rest)
	case "notifications":
		r.notifications(ctx)
	case "theme":
		r.Out.Message("Theme: " + string(r.Theme.Toggle()))
	default:
		r.Out.Errorf("Unknown command %q. Type 'help'.", cmd)
	}
	return false
}

func (r *REPL) withScreen(fn func()) {
	if r.ctl == nil {
		r.Out.Errorf("Open a screen first, e.g. 'open home'.")
		return
	}
	fn()
}

func (r *REPL) show() {
	r.Out.Println(Render(r.ctl))
}

func (r *REPL) open(ctx context.Context, key string) {
	screen, ok := catalog.LookupScreen(strings.ToLower(key))
	if !ok {
		r.Out.Errorf("Unknown screen %q. Try 'screens'.", key)
		return
	}
	r.ctl = catalog.NewController(screen, catalog.Deps{
		Fetcher:  r.API,
		Deleter:  r.API,
		Storage:  r.API,
		Opener:   r.Out,
		Sharer:   r.Out,
		Files:    r.Files,
		Confirm:  r.Confirm,
		Messages: r.Out,
		Identity: r.Auth,
		Log:      r.Log,
	})
	if err := r.ctl.LoadInitial(ctx); err != nil {
		return
	}
	r.show()
}

func (r *REPL) chip(name string) {
	for _, c := range r.ctl.Screen().Chips {
		if strings.EqualFold(c, name) {
			r.ctl.OnTagToggled(c)
			r.show()
			return
		}
	}
	r.Out.Errorf("No chip %q on this screen.", name)
}

// item resolves a 1-based index into the visible list.
func (r *REPL) item(arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	visible := r.ctl.Visible()
	if err != nil || n < 1 || n > len(visible) {
		r.Out.Errorf("Pick an item between 1 and %d.", len(visible))
		return 0, false
	}
	return n - 1, true
}

func (r *REPL) menu(arg string) {
	i, ok := r.item(arg)
	if !ok {
		return
	}
	id := r.ctl.Visible()[i].ID
	if r.ctl.Menus().IsOpen(id) {
		r.ctl.Menus().Close(id)
	} else {
		r.ctl.Menus().Open(id)
	}
	r.show()
}

func (r *REPL) action(ctx context.Context, a catalog.Action, arg string) {
	i, ok := r.item(arg)
	if !ok {
		return
	}
	rec := r.ctl.Visible()[i]
	err := r.ctl.PerformAction(ctx, rec, a)
	switch {
	case err == nil:
		if a == catalog.ActionDelete {
			r.Out.Message("Deleted.")
			r.show()
		}
	case errors.Is(err, catalog.ErrCancelled):
	case errors.Is(err, catalog.ErrUnknownAction) && !r.ctl.Screen().Allows(a):
		r.Out.Errorf("%s is not available on %s.", a, r.ctl.Screen().Title)
	default:
		// The controller has already shown a message.
		r.Log.Debug("action failed", zap.String("action", string(a)), zap.Error(err))
	}
}

func (r *REPL) signedIn(u authctx.User) {
	r.Auth.SignIn(u)
	if r.OnSession != nil {
		r.OnSession()
	}
	r.Out.Message("Signed in as " + u.FullName + ".")
}

func (r *REPL) login(ctx context.Context, email string) {
	if email == "" {
		r.Out.Errorf("Usage: login <email>")
		return
	}
	password, err := ReadSecret(r.In, r.Out.out, r.FD, "Password: ")
	if err != nil {
		r.Out.Errorf("Could not read password.")
		return
	}
	u, err := r.API.Login(ctx, email, password)
	if err != nil {
		r.Out.Errorf("%s", apiMessage(err, "Login failed."))
		return
	}
	r.signedIn(u)
}

func (r *REPL) signup(ctx context.Context, args string) {
	email, fullName, _ := strings.Cut(args, " ")
	fullName = strings.TrimSpace(fullName)
	if email == "" || fullName == "" {
		r.Out.Errorf("Usage: signup <email> <full name>")
		return
	}
	password, err := ReadSecret(r.In, r.Out.out, r.FD, "Choose a password: ")
	if err != nil {
		r.Out.Errorf("Could not read password.")
		return
	}
	u, err := r.API.Signup(ctx, fullName, email, password)
	if err != nil {
		r.Out.Errorf("%s", apiMessage(err, "Sign-up failed."))
		return
	}
	r.signedIn(u)
}

func (r *REPL) logout(ctx context.Context) {
	if err := r.API.Logout(ctx); err != nil {
		r.Out.Errorf("%s", apiMessage(err, "Sign-out failed."))
		return
	}
	r.Auth.SignOut()
	if r.OnSession != nil {
		r.OnSession()
	}
	r.Out.Message("Signed out.")
}

func (r *REPL) chat(ctx context.Context, q string) {
	if q == "" {
		r.Out.Errorf("Usage: chat <question>")
		return
	}
	answer, err := r.API.Chat(ctx, q)
	if err != nil {
		r.Out.Errorf("%s", apiMessage(err, "Failed to get response from AI."))
		return
	}
	r.Out.Println(answer)
}

func (r *REPL) notifications(ctx context.Context) {
	items, err := r.API.Notifications(ctx)
	if err != nil {
		r.Out.Errorf("%s", apiMessage(err, "Could not load notifications."))
		return
	}
	if len(items) == 0 {
		r.Out.Println("No notifications.")
		return
	}
	for _, n := range items {
		r.Out.Println(fmt.Sprintf("%s  %s\n    %s", n.At.Local().Format("02 Jan 15:04"), n.Title, n.Body))
	}
}

// apiMessage prefers the server's own message.
func apiMessage(err error, fallback string) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
