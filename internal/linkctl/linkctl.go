// Package linkctl implements the offline operator tool: it mints and
// inspects secure link tokens given the installation secret, without
// talking to the server or the database.
package linkctl

import (
	"bufio"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/securelinks/internal/server/auth"
	"github.com/dmitrijs2005/securelinks/internal/server/config"
	"github.com/dmitrijs2005/securelinks/internal/server/links"
	"github.com/dmitrijs2005/securelinks/internal/server/token"
	"golang.org/x/term"
)

const usage = `usage: linkctl <command> [flags]

commands:
  view         mint a view link      (-doc, optional -file, -ttl)
  download     mint a download link  (-doc, -file, -ttl)
  inspect      decode a token or link given as the first argument
  admin-token  mint a JWT for the admin LinkService (-user, -jwt-secret, -ttl)

the installation secret (hex) is read from -secret-file, or prompted for
when stdin is a terminal, or read from the first line of stdin otherwise.
`

var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// CLI carries the standard streams so tests can drive it.
type CLI struct {
	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes args (without the program name) and returns the exit code.
func (c *CLI) Run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.Stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "view":
		err = c.mint(token.View, args[1:])
	case "download":
		err = c.mint(token.Download, args[1:])
	case "inspect":
		err = c.inspect(args[1:])
	case "admin-token":
		err = c.adminToken(args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(c.Stdout, usage)
		return 0
	default:
		fmt.Fprintf(c.Stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(c.Stderr, "linkctl:", err)
		return 1
	}
	return 0
}

type linkFlags struct {
	fs           *flag.FlagSet
	secretFile   *string
	baseURL      *string
	viewPath     *string
	downloadPath *string
}

func (c *CLI) newLinkFlags(name string) *linkFlags {
	defaults := &config.Config{}
	defaults.LoadDefaults()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.Stderr)
	return &linkFlags{
		fs:           fs,
		secretFile:   fs.String("secret-file", "", "file holding the hex-encoded installation secret"),
		baseURL:      fs.String("url", defaults.PublicBaseURL, "public base URL of the server"),
		viewPath:     fs.String("view-path", defaults.ViewPath, "view route path"),
		downloadPath: fs.String("download-path", defaults.DownloadPath, "download route path"),
	}
}

func (c *CLI) mint(kind token.Kind, args []string) error {
	lf := c.newLinkFlags(kind.String())
	doc := lf.fs.Uint64("doc", 0, "document id")
	file := lf.fs.Int("file", -1, "file index (required for download)")
	ttl := lf.fs.Duration("ttl", 0, "link lifetime, 0 never expires")
	if err := lf.fs.Parse(args); err != nil {
		return err
	}

	if *file < -1 || int64(*file) > int64(^uint32(0)) {
		return fmt.Errorf("file index %d out of range", *file)
	}
	if kind == token.Download && *file < 0 {
		return errors.New("download links need -file")
	}

	codec, err := c.codec(*lf.secretFile)
	if err != nil {
		return err
	}
	gen, err := links.NewGenerator(codec, *lf.baseURL, *lf.viewPath, *lf.downloadPath, nil)
	if err != nil {
		return err
	}

	var link string
	if kind == token.Download {
		link, err = gen.DownloadLink(*doc, uint32(*file), *ttl)
	} else {
		var idx *uint32
		if *file >= 0 {
			idx = token.Index(uint32(*file))
		}
		link, err = gen.ViewLink(*doc, idx, *ttl)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(c.Stdout, link)
	return nil
}

func (c *CLI) inspect(args []string) error {
	lf := c.newLinkFlags("inspect")
	if err := lf.fs.Parse(args); err != nil {
		return err
	}
	if lf.fs.NArg() != 1 {
		return errors.New("inspect takes exactly one token or link")
	}

	codec, err := c.codec(*lf.secretFile)
	if err != nil {
		return err
	}

	p, err := codec.Decode(tokenOf(lf.fs.Arg(0)))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout, "kind:        %s\n", p.Kind)
	fmt.Fprintf(c.Stdout, "document_id: %d\n", p.DocumentID)
	if p.FileIndex != nil {
		fmt.Fprintf(c.Stdout, "file_index:  %d\n", *p.FileIndex)
	} else {
		fmt.Fprintln(c.Stdout, "file_index:  (whole document)")
	}
	if p.ExpiresAt == 0 {
		fmt.Fprintln(c.Stdout, "expires_at:  never")
	} else {
		fmt.Fprintf(c.Stdout, "expires_at:  %s\n", time.Unix(p.ExpiresAt, 0).UTC().Format(time.RFC3339))
	}
	return nil
}

func (c *CLI) adminToken(args []string) error {
	defaults := &config.Config{}
	defaults.LoadDefaults()

	fs := flag.NewFlagSet("admin-token", flag.ContinueOnError)
	fs.SetOutput(c.Stderr)
	user := fs.String("user", "", "operator id recorded in the server logs")
	secret := fs.String("jwt-secret", defaults.SecretKey, "server JWT secret (-s on the server)")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return errors.New("-user is required")
	}

	tok, err := auth.GenerateAdminToken(*user, []byte(*secret), *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Stdout, tok)
	return nil
}

func (c *CLI) codec(secretFile string) (*token.Codec, error) {
	secret, err := c.readSecret(secretFile)
	if err != nil {
		return nil, err
	}
	return token.NewCodec(secret)
}

func (c *CLI) readSecret(secretFile string) ([]byte, error) {
	var raw string
	switch {
	case secretFile != "":
		b, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read secret file: %w", err)
		}
		raw = string(b)
	case isTerminal(int(c.Stdin.Fd())):
		fmt.Fprint(c.Stderr, "installation secret (hex): ")
		b, err := readPassword(int(c.Stdin.Fd()))
		fmt.Fprintln(c.Stderr)
		if err != nil {
			return nil, fmt.Errorf("read secret: %w", err)
		}
		raw = string(b)
	default:
		line, err := bufio.NewReader(c.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read secret: %w", err)
		}
		raw = line
	}

	secret, err := hex.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("secret is not valid hex: %w", err)
	}
	return secret, nil
}

// tokenOf accepts a bare token or a full link.
func tokenOf(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "token="); i >= 0 {
		s = s[i+len("token="):]
		if j := strings.IndexByte(s, '&'); j >= 0 {
			s = s[:j]
		}
	}
	return s
}
