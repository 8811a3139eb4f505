package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"boothmap/internal/config"
	"boothmap/internal/geom"
	"boothmap/internal/models"
	"boothmap/internal/monitoring"
	"boothmap/internal/overlay"
	"boothmap/internal/snapshot"
	"boothmap/internal/store"
	"boothmap/internal/tui"
)

var (
	configFile   string
	dbPath       string
	boothWidth   float64
	boothHeight  float64
	readOnly     bool
	hideOverlays bool
	outFile      string
)

var rootCmd = &cobra.Command{
	Use:   "boothmap [file]",
	Short: "Oriented booth footprints on a terminal map",
	Long:  `Shows booth markers as rotated rectangles and lets you rotate them by dragging the corner handle.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runView,
}

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Open the interactive map",
	Long:  `Open the interactive map on a marker file (.geojson, .json, .csv, .kml), or on the store when no file is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runView,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [file]",
	Short: "Render booth footprints to a PDF",
	Long:  `Render the footprints of a marker file, or of the store when no file is given, to a one-page PDF.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshot,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load a marker file into the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "JSON config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite marker store (overrides db_path)")
	rootCmd.PersistentFlags().Float64Var(&boothWidth, "width", overlay.DefaultRectangle[0], "default booth width in meters")
	rootCmd.PersistentFlags().Float64Var(&boothHeight, "height", overlay.DefaultRectangle[1], "default booth height in meters")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "readonly", false, "disable rotation handles")
	rootCmd.PersistentFlags().BoolVar(&hideOverlays, "hide-overlays", false, "start with footprints hidden")

	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "boothmap.pdf", "output PDF")

	rootCmd.AddCommand(viewCmd, snapshotCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads --config and applies the command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.DefaultWidth = &boothWidth
	}
	if flags.Changed("height") {
		cfg.DefaultHeight = &boothHeight
	}
	if flags.Changed("db") {
		cfg.DBPath = &dbPath
	}
	if readOnly {
		editable := false
		cfg.Editable = &editable
	}
	if hideOverlays {
		show := false
		cfg.ShowOverlays = &show
	}
	return cfg, cfg.Validate()
}

func openStore(cfg *config.Config) (*store.Store, error) {
	p := cfg.GetDBPath()
	if p == "" {
		return nil, nil
	}
	st, err := store.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", p, err)
	}
	return st, nil
}

// loadMarkers reads the marker file, or lists the store without one.
func loadMarkers(args []string, st *store.Store) ([]models.Marker, error) {
	if len(args) > 0 {
		return geom.LoadMarkers(args[0])
	}
	if st == nil {
		return nil, fmt.Errorf("no marker file given and no store configured")
	}
	return st.List(context.Background())
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	opts := tui.Options{Overlay: cfg.Overlay(), Store: st}
	if len(args) > 0 {
		opts.Path = args[0]
	} else if st != nil {
		if opts.Markers, err = st.List(context.Background()); err != nil {
			return err
		}
	}

	// the alt screen owns the terminal; diagnostics would corrupt it
	monitoring.SetLogger(nil)
	defer monitoring.SetLogger(log.Printf)

	p := tea.NewProgram(tui.New(opts), tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithReportFocus())
	_, err = p.Run()
	return err
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}
	markers, err := loadMarkers(args, st)
	if err != nil {
		return err
	}

	surface := snapshot.New()
	overlay.NewReconciler(surface, nil).Reconcile(markers, cfg.Overlay())

	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outFile, err)
	}
	w, h := cfg.PageSize()
	if err := surface.Render(f, snapshot.Options{WidthMM: w, HeightMM: h, MarginMM: 10}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Rendered %d footprints to %s\n", surface.Len()/2, outFile)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("import needs a store: pass --db or set db_path")
	}
	defer st.Close()

	markers, err := geom.LoadMarkers(args[0])
	if err != nil {
		return err
	}
	if err := st.Upsert(context.Background(), markers); err != nil {
		return err
	}
	fmt.Printf("Imported %d markers into %s\n", len(markers), cfg.GetDBPath())
	return nil
}
