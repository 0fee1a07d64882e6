package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/dalemusser/studyshare/internal/app/system/objstore"
	"github.com/dalemusser/studyshare/internal/app/system/theme"
	"github.com/pkg/browser"
)

// Printer writes themed output. With escapes off it prints plain text,
// which is what pipes and tests get.
type Printer struct {
	out     io.Writer
	theme   *theme.Context
	escapes bool
	launch  func(url string) error

	mu   sync.Mutex
	last string
}

func NewPrinter(out io.Writer, t *theme.Context, escapes bool) *Printer {
	if t == nil {
		t = theme.New()
	}
	p := &Printer{out: out, theme: t, escapes: escapes}
	if escapes && hasDisplay() {
		p.launch = browser.OpenURL
	}
	return p
}

// SetLauncher replaces the program used to open links. Nil means links are
// only printed.
func (p *Printer) SetLauncher(fn func(url string) error) { p.launch = fn }

// hasDisplay reports whether a desktop session is likely to be around to
// open links in. Linux and the BSDs need an X11 or Wayland display.
func hasDisplay() bool {
	switch runtime.GOOS {
	case "darwin", "windows":
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

func (p *Printer) paint(hex, text string) string {
	if !p.escapes {
		return text
	}
	return theme.Paint(hex, text)
}

// Message implements catalog.Messenger.
func (p *Printer) Message(text string) {
	p.mu.Lock()
	p.last = text
	p.mu.Unlock()
	fmt.Fprintln(p.out, p.paint(p.theme.Palette().Secondary, "» "+text))
}

// Last returns the most recent message.
func (p *Printer) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.out, p.paint(p.theme.Palette().Error, fmt.Sprintf(format, args...)))
}

func (p *Printer) Title(text string) {
	fmt.Fprintln(p.out, p.paint(p.theme.Palette().Primary, text))
}

func (p *Printer) Println(text string) {
	fmt.Fprintln(p.out, text)
}

// Open hands the link to the platform opener. Without one, or when the
// launch fails, the link is printed instead.
func (p *Printer) Open(_ context.Context, url string) error {
	if p.launch != nil {
		if err := p.launch(url); err == nil {
			fmt.Fprintln(p.out, "Opened: "+url)
			return nil
		}
	}
	fmt.Fprintln(p.out, "Open: "+url)
	return nil
}

// Share prints the link; the terminal has no share sheet.

func (p *Printer) Share(_ context.Context, uri string) error {
	fmt.Fprintln(p.out, "Share: "+uri)
	return nil
}

// Downloads saves files into one directory, never overwriting: a second
// "notes.pdf" becomes "notes (1).pdf".
type Downloads struct {
	Dir string
}

// DefaultDownloadsDir is ~/Downloads/StudyShare, or a temp dir when there
// is no home directory.
func DefaultDownloadsDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Downloads", "StudyShare")
	}
	return filepath.Join(os.TempDir(), "studyshare-downloads")
}

func (d Downloads) Save(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create downloads dir: %w", err)
	}
	name = objstore.SanitizeFilename(name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = stem + " (" + strconv.Itoa(i) + ")" + ext
		}
		full := filepath.Join(d.Dir, candidate)
		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", candidate, err)
		}
		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			os.Remove(full)
			return "", fmt.Errorf("write %s: %w", candidate, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", candidate, err)
		}
		return "file://" + filepath.ToSlash(full), nil
	}
}
