package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mocdev/moc2d/internal/moc2d"
)

var (
	deckPath    string
	pinPowerDir string
	metricsAddr string
	logLevel    string
)

func main() {
	root := &cobra.Command{
		Use:           "moc2d",
		Short:         "2D method-of-characteristics geometry and ray-tracing core",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logs.SetLevel(logs.ParseLevel(logLevel))
			logs.Encoder = json.Marshal
			errors.Encoder = json.Marshal
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warning|error)")

	segmentize := &cobra.Command{
		Use:   "segmentize",
		Short: "Load a geometry deck and segmentize its tracks",
		RunE:  runSegmentize,
	}
	segmentize.Flags().StringVar(&deckPath, "deck", "", "path to the geometry deck (.json, .yaml)")
	segmentize.Flags().StringVar(&pinPowerDir, "pin-powers", "", "write pin power files (from a unit power distribution) to this directory")
	segmentize.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	_ = segmentize.MarkFlagRequired("deck")

	describe := &cobra.Command{
		Use:   "describe",
		Short: "Load a geometry deck and print its flat source region layout",
		RunE:  runDescribe,
	}
	describe.Flags().StringVar(&deckPath, "deck", "", "path to the geometry deck (.json, .yaml)")
	_ = describe.MarkFlagRequired("deck")

	root.AddCommand(segmentize, describe)

	if err := root.Execute(); err != nil {
		logs.Error(err)
		os.Exit(1)
	}
}

func buildGeometry() (*moc2d.Geometry, *moc2d.Deck, error) {
	deck, err := moc2d.LoadDeck(deckPath)
	if err != nil {
		return nil, nil, err
	}
	g, err := deck.Build()
	if err != nil {
		return nil, nil, err
	}
	return g, deck, nil
}

func runSegmentize(cmd *cobra.Command, args []string) error {
	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logs.Warn(errors.New("metrics server stopped").
					WithTag("addr", metricsAddr).
					Wrap(err))
			}
		}()
	}

	g, deck, err := buildGeometry()
	if err != nil {
		return err
	}

	tracks := deck.BuildTracks()
	for i, t := range tracks {
		if err := g.Segmentize(t); err != nil {
			return errors.Newf("segmentizing track %d failed", i).Wrap(err)
		}
		var total moc2d.Real
		for _, s := range t.Segments {
			total += s.Length
		}
		fmt.Printf("track %d: %s, chord length %.6f\n", i, t, total)
		for _, s := range t.Segments {
			fmt.Printf("  length=%.6f material=%d fsr=%d\n", s.Length, s.Material, s.Region)
		}
	}

	logs.WithTag("tracks", len(tracks)).
		WithTag("max_segment_length", g.MaxSegmentLength()).
		WithTag("min_segment_length", g.MinSegmentLength()).
		Info("segmentation complete")

	if pinPowerDir != "" {
		powers := make([]moc2d.Real, g.NumFSRs())
		for i := range powers {
			powers[i] = 1
		}
		if _, err := g.ComputePinPowers(powers, pinPowerDir); err != nil {
			return err
		}
		logs.WithTag("dir", pinPowerDir).Info("wrote pin power files")
	}
	return nil
}

func runDescribe(cmd *cobra.Command, args []string) error {
	g, _, err := buildGeometry()
	if err != nil {
		return err
	}
	fmt.Println(g)
	fmt.Printf("boundary conditions: top=%v bottom=%v left=%v right=%v\n",
		g.BCTop(), g.BCBottom(), g.BCLeft(), g.BCRight())
	cells := g.FSRToCell()
	mats := g.FSRToMaterial()
	for r := 0; r < g.NumFSRs(); r++ {
		fmt.Printf("fsr %d: cell=%d material=%d\n", r, cells[r], mats[r])
	}
	return nil
}
