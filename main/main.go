// The reloc tool packs YAML manifests into relocatable archives and reads
// them back in place.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/reloc"
	"github.com/rawbytedev/reloc/pkg/manifest"
	"github.com/rawbytedev/reloc/pkg/sink"
	"github.com/rawbytedev/reloc/zc"
)

var errMissingKey = errors.New("key not found")

func loadOptions(path string) (reloc.Options, error) {
	opts := reloc.DefaultOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, errors.Wrapf(err, "parse config %s", path)
	}
	return opts, nil
}

func pack(in, out string, opts reloc.Options) (int, error) {
	src, err := os.Open(in)
	if err != nil {
		return 0, errors.Wrap(err, "open source")
	}
	defer src.Close()
	m, err := manifest.Load(src)
	if err != nil {
		return 0, errors.Wrapf(err, "load %s", in)
	}

	f, err := os.Create(out)
	if err != nil {
		return 0, errors.Wrap(err, "create archive")
	}
	defer f.Close()
	w := sink.NewWriter(f, opts.SinkOptions()...)
	root, err := reloc.Serialize(w, manifest.NewAdapter(opts), &m)
	if err != nil {
		return 0, errors.Wrap(err, "build archive")
	}
	if err := w.Flush(); err != nil {
		return 0, errors.Wrap(err, "flush archive")
	}
	logrus.WithFields(logrus.Fields{
		"entries": len(m.Entries),
		"bits":    m.Flags.Len(),
		"root":    root,
		"size":    w.Pos(),
	}).Debug("archive written")
	return w.Pos(), f.Close()
}

// open maps path and returns the archived manifest it holds. The view is
// valid until the returned archive is closed.
func open(path string, opts reloc.Options) (*zc.Mapped, manifest.Archived, error) {
	mm, err := zc.Open(path)
	if err != nil {
		return nil, manifest.Archived{}, errors.Wrap(err, "open archive")
	}
	a, err := reloc.AccessRoot(manifest.NewAdapter(opts), mm.Bytes())
	if err != nil {
		mm.Close()
		return nil, manifest.Archived{}, errors.Wrapf(err, "read %s", path)
	}
	return mm, a, nil
}

func get(w io.Writer, path string, keys []string, opts reloc.Options) error {
	mm, a, err := open(path, opts)
	if err != nil {
		return err
	}
	defer mm.Close()
	for _, k := range keys {
		v, ok, err := a.Entries.Lookup(k)
		if err != nil {
			return errors.Wrapf(err, "lookup %q", k)
		}
		if !ok {
			return errors.Wrapf(errMissingKey, "%q", k)
		}
		fmt.Fprintf(w, "%s=%s\n", k, v)
	}
	return nil
}

func bits(w io.Writer, path string, opts reloc.Options) error {
	mm, a, err := open(path, opts)
	if err != nil {
		return err
	}
	defer mm.Close()
	view := a.Flags.View()
	fmt.Fprintf(w, "%s (len=%d, set=%d, order=%s)\n", view.String(), view.Len(), view.Count(), a.Order)
	return nil
}

func dump(w io.Writer, path string, opts reloc.Options) error {
	mm, a, err := open(path, opts)
	if err != nil {
		return err
	}
	defer mm.Close()
	var ctx reloc.Context
	m, err := manifest.NewAdapter(opts).Deserialize(a, &ctx)
	if err != nil {
		return errors.Wrap(err, "decode archive")
	}
	return manifest.Dump(w, &m)
}

func options(c *cli.Context) (reloc.Options, error) {
	return loadOptions(c.String("config"))
}

func newApp() *cli.App {
	archiveFlag := &cli.StringFlag{Name: "archive", Aliases: []string{"a"}, Required: true, Usage: "Archive file path"}
	return &cli.App{
		Name:  "reloc",
		Usage: "Build and read relocatable manifest archives",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML file with archive options", EnvVars: []string{"RELOC_CONFIG"}},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", EnvVars: []string{"RELOC_DEBUG"}},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "pack",
				Usage: "Archive a YAML manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Required: true, Usage: "Source YAML manifest"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "Archive file to write"},
				},
				Action: func(c *cli.Context) error {
					opts, err := options(c)
					if err != nil {
						return err
					}
					n, err := pack(c.String("in"), c.String("out"), opts)
					if err != nil {
						return err
					}
					logrus.Infof("wrote %s (%d bytes)", c.String("out"), n)
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "Look up entries by key",
				ArgsUsage: "KEY...",
				Flags:     []cli.Flag{archiveFlag},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("at least one key is required")
					}
					opts, err := options(c)
					if err != nil {
						return err
					}
					return get(c.App.Writer, c.String("archive"), c.Args().Slice(), opts)
				},
			},
			{
				Name:  "bits",
				Usage: "Print the flag bits",
				Flags: []cli.Flag{archiveFlag},
				Action: func(c *cli.Context) error {
					opts, err := options(c)
					if err != nil {
						return err
					}
					return bits(c.App.Writer, c.String("archive"), opts)
				},
			},
			{
				Name:  "dump",
				Usage: "Decode an archive back to YAML",
				Flags: []cli.Flag{archiveFlag},
				Action: func(c *cli.Context) error {
					opts, err := options(c)
					if err != nil {
						return err
					}
					return dump(c.App.Writer, c.String("archive"), opts)
				},
			},
		},
	}
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if err := newApp().Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
