package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/openclaw/qrpad/app"
	"github.com/openclaw/qrpad/config"
	"github.com/openclaw/qrpad/qr"
	"github.com/openclaw/qrpad/ui"
)

var version = "v0.1.0"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "qrpad",
		Short:         "Generate, decode and export QR codes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(configPath)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to config file")

	// --- encode command ------------------------------------------------------
	var (
		outPath  string
		terminal bool
	)
	encodeCmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Write a QR code PNG for the given text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd.OutOrStdout(), configPath, args[0], outPath, terminal)
		},
	}
	encodeCmd.Flags().StringVarP(&outPath, "output", "o", "qrcode.png", "PNG file to write (empty to skip)")
	encodeCmd.Flags().BoolVarP(&terminal, "terminal", "t", false, "Also print the code to the terminal")
	root.AddCommand(encodeCmd)

	// --- decode command ------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "decode [image]",
		Short: "Print the text of the QR code in an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.OutOrStdout(), configPath, args[0])
		},
	})

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qrpad %s\n", version)
		},
	})

	return root
}

// setup loads the config and installs the default logger.
func setup(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)

	return cfg, log, nil
}

func newCodec(cfg *config.Config, log *slog.Logger) (*qr.Encoder, *qr.Decoder, error) {
	enc, err := qr.NewEncoder(qr.Options{
		Level:   cfg.QR.Level,
		BoxSize: cfg.QR.BoxSize,
		Border:  cfg.QR.Border,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create encoder: %w", err)
	}
	dec := qr.NewDecoder(qr.DecoderOptions{
		TryHarder: cfg.Decode.TryHarder,
		Fallback:  cfg.Decode.Fallback,
	}, log)
	return enc, dec, nil
}

// runWindow opens the desktop window and blocks until it is closed.
func runWindow(configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	enc, dec, err := newCodec(cfg, log)
	if err != nil {
		return err
	}

	log.Info("starting qrpad", "version", version, "qr_level", cfg.QR.Level)
	ui.Run(cfg, app.Deps{
		Encoder:   enc,
		Decoder:   dec,
		Clipboard: app.SystemClipboard{},
		Log:       log,
	})
	log.Info("goodbye")
	return nil
}

// runEncode writes text as a QR code PNG and optionally previews it.
func runEncode(out io.Writer, configPath, text, outPath string, terminal bool) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	enc, _, err := newCodec(cfg, log)
	if err != nil {
		return err
	}

	if terminal {
		if err := enc.Terminal(text, out); err != nil {
			return fmt.Errorf("print qr: %w", err)
		}
	}
	if outPath == "" {
		return nil
	}

	img, err := enc.Encode(text)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := qr.SavePNG(outPath, img); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	log.Info("qr exported", "path", outPath)
	return nil
}

// runDecode prints the QR code text found in the image at path.
func runDecode(out io.Writer, configPath, path string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	_, dec, err := newCodec(cfg, log)
	if err != nil {
		return err
	}

	text, err := dec.DecodeFile(path)
	if errors.Is(err, qr.ErrNotFound) {
		return errors.New(app.NotFoundMessage)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	return nil
}
