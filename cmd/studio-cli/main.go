package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/backdrop-studio/internal/auth"
	"github.com/fpang/backdrop-studio/internal/config"
	"github.com/fpang/backdrop-studio/internal/gemini"
	"github.com/fpang/backdrop-studio/internal/ingest"
	"github.com/fpang/backdrop-studio/internal/logging"
	"github.com/fpang/backdrop-studio/internal/session"
	"github.com/fpang/backdrop-studio/internal/transform"
)

// CLI flags
var (
	modeFlag   string
	promptFlag string
	presetFlag string
	outFlag    string
	modelFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "studio-cli [photo]",
	Short: "One-shot AI background removal from the terminal",
	Long: `Studio CLI edits the background of a single photo and writes the result
next to the original. Without a photo argument, a native file picker opens.

Examples:
  studio-cli photo.jpg
  studio-cli --mode replace --prompt "a sunny beach" photo.jpg
  studio-cli --preset studio-white photo.jpg
  studio-cli -o edited.png photo.jpg
  studio-cli  # pick the photo with a file dialog`,
	Args: cobra.MaximumNArgs(1),
	Run:  runMain,
}

func init() {
	rootCmd.Flags().StringVar(&modeFlag, "mode", "remove", "Transform mode: remove or replace")
	rootCmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "Background description (required for replace)")
	rootCmd.Flags().StringVar(&presetFlag, "preset", "", "Use a preset background (implies replace)")
	rootCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output path (default: <photo>-backdrop-<millis>.png)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", gemini.DefaultImageModel, "Gemini image model to use")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()
	logging.Init()

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		path = pickFile()
	}

	mode := transform.Mode(modeFlag)
	prompt := promptFlag
	if presetFlag != "" {
		preset, ok := config.FindPreset(config.DefaultPresets(), presetFlag)
		if !ok {
			log.Fatal().Str("preset", presetFlag).Msg("Unknown preset")
		}
		mode = transform.ModeReplace
		prompt = preset.Prompt
	}

	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get API key")
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to open photo")
	}
	img, err := ingest.FromReader(f, mimeFromExt(path))
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to read photo")
	}

	store := session.NewStore()
	store.SetOriginal(img)
	svc := gemini.NewClient(apiKey, gemini.WithModel(modelFlag))
	dispatcher := transform.NewDispatcher(store, svc)

	fmt.Printf("Editing %s (%s mode)...\n", filepath.Base(path), mode)
	if err := dispatcher.Dispatch(context.Background(), mode, prompt); err != nil {
		log.Fatal().Err(err).Msg("Transform failed")
	}

	snap := store.Snapshot()
	outPath := outFlag
	if outPath == "" {
		base := strings.TrimSuffix(path, filepath.Ext(path))
		outPath = fmt.Sprintf("%s-backdrop-%d.png", base, time.Now().UnixMilli())
	}
	if err := os.WriteFile(outPath, snap.Processed.Data, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", outPath).Msg("Failed to write result")
	}

	fmt.Printf("Saved %s (%d bytes)\n", outPath, len(snap.Processed.Data))
}

// pickFile opens a native file dialog restricted to image types.
func pickFile() string {
	selected, err := zenity.SelectFile(
		zenity.Title("Select a photo"),
		zenity.FileFilters{
			{
				Name:     "Photos",
				Patterns: []string{"*.jpg", "*.jpeg", "*.png", "*.gif", "*.webp", "*.heic", "*.heif", "*.tiff", "*.bmp"},
			},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			fmt.Println("Canceled.")
			os.Exit(0)
		}
		log.Fatal().Err(err).Msg("File picker failed")
	}
	return selected
}

// mimeFromExt maps a file extension to a declared media type; ingestion
// sniffs the content when the extension is unknown.
func mimeFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	default:
		return ""
	}
}
