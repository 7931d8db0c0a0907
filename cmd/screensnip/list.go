package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gbabichev/screensnip/internal/style"
)

type displaysCmd struct {
	*root
	fs *flag.FlagSet
}

func parseDisplaysCmd(args []string, r *root) (*displaysCmd, error) {
	fs := flag.NewFlagSet("displays", flag.ExitOnError)
	cmd := &displaysCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *displaysCmd) Run() error {
	displays, err := listDisplaysFn()
	if err != nil {
		return err
	}
	if len(displays) == 0 {
		fmt.Fprintln(os.Stdout, "no displays available")
		return nil
	}
	fmt.Fprintln(os.Stdout, "available displays (* marks the primary display):")
	for _, d := range displays {
		marker := " "
		if d.Primary {
			marker = "*"
		}
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("display-%d", d.Index)
		}
		fmt.Fprintf(os.Stdout, "%s %d: %-12s %gx%g at (%g,%g)\n",
			marker, d.Index, name, d.Frame.W, d.Frame.H, d.Frame.X, d.Frame.Y)
	}
	fmt.Fprintln(os.Stdout, "coordinates are logical units with the origin at the bottom-left of the desktop")
	return nil
}

func (c *displaysCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

type stylesCmd struct {
	*root
	fs *flag.FlagSet
}

func parseStylesCmd(args []string, r *root) (*stylesCmd, error) {
	fs := flag.NewFlagSet("styles", flag.ExitOnError)
	cmd := &stylesCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *stylesCmd) Run() error {
	names := style.EmbeddedNames()
	for name := range c.config.Styles {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Fprintln(os.Stdout, "no styles available")
		return nil
	}
	active := ""
	if c.activeStyle != nil {
		active = c.activeStyle.Name
	}
	loader := style.NewLoader()
	fmt.Fprintln(os.Stdout, "available styles (* marks the active style):")
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		st, ok := c.config.Styles[name]
		if !ok {
			var err error
			st, err = loader.Load(name)
			if err != nil {
				continue
			}
		}
		marker := " "
		if strings.EqualFold(st.Name, active) {
			marker = "*"
		}
		fmt.Fprintf(os.Stdout, "%s %-12s %s\n", marker, name, colorSwatch(st))
	}
	return nil
}

func colorSwatch(st *style.Style) string {
	c := st.Stroke
	hex := fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	block := fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", c.R, c.G, c.B)
	return fmt.Sprintf("%s %s", hex, block)
}

func (c *stylesCmd) FlagSet() *flag.FlagSet {
	return c.fs
}
