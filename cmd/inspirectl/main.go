// inspirectl drives an Inspire robotic hand from the command line over
// serial RS485 or Modbus/TCP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/haoyan-ts/inspire-api/pkg/config"
	"github.com/haoyan-ts/inspire-api/pkg/controller"
	"github.com/haoyan-ts/inspire-api/pkg/hand"
	"github.com/haoyan-ts/inspire-api/pkg/logger"
	"github.com/haoyan-ts/inspire-api/pkg/registry"
	"github.com/haoyan-ts/inspire-api/pkg/transport"
	"github.com/haoyan-ts/inspire-api/pkg/transport/modbusbus"
	"github.com/haoyan-ts/inspire-api/pkg/transport/serialbus"
)

var (
	version   = "1.0.0"
	buildTime = "dev"
	gitCommit = "unknown"
)

var (
	cfgFile    string
	verbose    bool
	jsonOutput bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "inspirectl",
		Short:   "Control an Inspire robotic hand",
		Long:    "inspirectl commands and inspects an Inspire robotic hand\nover serial RS485 or Modbus/TCP.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(
		newOpenCmd(),
		newCloseCmd(),
		newZeroCmd(),
		newGetCmd(),
		newSetAngleCmd(),
		newResetErrorCmd(),
		newTactileCmd(),
		newActionCmd(),
		newVerifyCmd(),
		newReportCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withHand loads the config, connects the configured bus and hands the
// controller to fn, closing the bus afterwards.
func withHand(fn func(ctx context.Context, h *controller.Hand) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if jsonOutput {
		cfg.Logging.Format = "json"
	}
	log := logger.New(cfg.Logging)
	logger.SetGlobal(log)

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Endpoint, promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				log.Warn("metrics endpoint failed", "error", err)
			}
		}()
	}

	bus, err := buildBus(cfg)
	if err != nil {
		return err
	}

	h, err := controller.New(cfg.Hand.HardwareGeneration(), bus, controller.WithLogger(log))
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := h.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer h.Close()

	return fn(ctx, h)
}

func buildBus(cfg *config.Config) (transport.RegisterBus, error) {
	switch cfg.Transport.Type {
	case "serial":
		cat, err := registry.For(cfg.Hand.HardwareGeneration())
		if err != nil {
			return nil, err
		}
		return serialbus.New(cfg.Transport, cat.MaxWords()), nil
	case "modbus-tcp":
		return modbusbus.New(cfg.Transport), nil
	default:
		return nil, fmt.Errorf("unknown transport type %q", cfg.Transport.Type)
	}
}

func printValues(label string, v hand.JointValues) {
	if jsonOutput {
		out, _ := json.Marshal(map[string]any{label: v.Slice()})
		fmt.Println(string(out))
		return
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(int(x))
	}
	fmt.Printf("%s: [%s]\n", label, strings.Join(parts, ", "))
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open the hand fully",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHand(func(ctx context.Context, h *controller.Hand) error {
				return h.PerformOpen(ctx)
			})
		},
	}
}

func newCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the hand fully",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHand(func(ctx context.Context, h *controller.Hand) error {
				return h.PerformClose(ctx)
			})
		},
	}
}

func newZeroCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zero",
		Short: "Return all joints to zero",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHand(func(ctx context.Context, h *controller.Hand) error {
				return h.ReturnToZero(ctx)
			})
		},
	}
}

// getters maps the get subcommand argument to its read operation.
var getters = map[string]func(*controller.Hand, context.Context) (hand.JointValues, error){
	"angles":  (*controller.Hand).GetAngleActual,
	"pos":     (*controller.Hand).GetPosActual,
	"speeds":  (*controller.Hand).GetSpeedSet,
	"forces":  (*controller.Hand).GetForceActual,
	"current": (*controller.Hand).GetCurrent,
	"errors":  (*controller.Hand).GetError,
	"status":  (*controller.Hand).GetStatus,
	"temp":    (*controller.Hand).GetTemperature,
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <angles|pos|speeds|forces|current|errors|status|temp>",
		Short:     "Read per-joint values",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"angles", "pos", "speeds", "forces", "current", "errors", "status", "temp"},
		RunE: func(cmd *cobra.Command, args []string) error {
			read, ok := getters[args[0]]
			if !ok {
				return fmt.Errorf("unknown reading %q", args[0])
			}
			return withHand(func(ctx context.Context, h *controller.Hand) error {
				v, err := read(h, ctx)
				if err != nil {
					return err
				}
				printValues(args[0], v)
				return nil
			})
		},
	}
}

func newSetAngleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-angle <v0> <v1> <v2> <v3> <v4> <v5>",
		Short: "Command joint angles (0-1000, -1 holds a joint)",
		Args:  cobra.ExactArgs(hand.NumJoints),
		RunE: func(cmd *cobra.Command, args []string) error {
			var angles hand.JointValues
			for i, a := range args {
				v, err := strconv.ParseInt(a, 10, 32)
				if err != nil {
					return fmt.Errorf("joint %d: %w", i, err)
				}
				angles[i] = int32(v)
			}
			return withHand(func(ctx context.Context, h *controller.Hand) error {
				return h.SetAngle(ctx, angles)
			})
		},
	}
}

func newResetErrorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-error",
		Short: "Clear latched error codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHand(func(ctx context.Context, h *controller.Hand) error {
				return h.ResetError(ctx)
			})
		},
	}
}

func newTactileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tactile [finger] [position]",
		Short: "Read tactile sensors (Gen4 only)",
		Long: `Read tactile sensor matrices. With no arguments every region is
captured; with a finger (and position for non-palm fingers) a single
region is read.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHand(func(ctx context.Context, h *controller.Hand) error {
				if len(args) == 0 {
					frame, err := h.GetAllTactileData(ctx)
					if err != nil {
						return err
					}
					return printTactileFrame(frame)
				}
				finger := hand.Finger(args[0])
				var position hand.SegmentPosition
				if len(args) == 2 {
					position = hand.SegmentPosition(args[1])
				}
				m, err := h.GetTactileData(ctx, finger, position)
				if err != nil {
					return err
				}
				printMatrix(fmt.Sprintf("%s %s", args[0], position), m)
				return nil
			})
		},
	}
}

func printTactileFrame(f hand.TactileFrame) error {
	if jsonOutput {
		out, err := json.Marshal(f)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Printf("captured at %s\n", f.Timestamp.Format("15:04:05.000"))
	fingers := []struct {
		name string
		t    hand.FingerTactile
	}{
		{"pinky", f.Pinky}, {"ring", f.Ring}, {"middle", f.Middle}, {"index", f.Index},
	}
	for _, fg := range fingers {
		printMatrix(fg.name+" top", fg.t.Top)
		printMatrix(fg.name+" tip", fg.t.Tip)
		printMatrix(fg.name+" base", fg.t.Base)
	}
	printMatrix("thumb top", f.Thumb.Top)
	printMatrix("thumb tip", f.Thumb.Tip)
	printMatrix("thumb mid", f.Thumb.Mid)
	printMatrix("thumb base", f.Thumb.Base)
	printMatrix("palm", f.Palm)
	return nil
}

func printMatrix(label string, m hand.TactileMatrix) {
	fmt.Printf("%s (%dx%d):\n", label, m.Rows, m.Cols)
	for r := 0; r < m.Rows; r++ {
		var row []string
		for c := 0; c < m.Cols; c++ {
			row = append(row, strconv.Itoa(int(m.At(r, c))))
		}
		fmt.Printf("  %s\n", strings.Join(row, " "))
	}
}

func newActionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Stored gesture sequences (Gen3 only)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <id>",
			Short: "Select the sequence to run",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 32)
				if err != nil {
					return err
				}
				return withHand(func(ctx context.Context, h *controller.Hand) error {
					return h.SetActionSequence(ctx, int32(id))
				})
			},
		},
		&cobra.Command{
			Use:   "run",
			Short: "Run the selected sequence",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withHand(func(ctx context.Context, h *controller.Hand) error {
					return h.RunActionSequence(ctx)
				})
			},
		},
	)

	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Probe core registers and print a verification report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHand(func(ctx context.Context, h *controller.Hand) error {
				report, err := h.ExportVerificationReport(ctx)
				if err != nil {
					return err
				}
				fmt.Print(report)
				return nil
			})
		},
	}
}

func newReportCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Dump the register map of the configured generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cat, err := registry.For(cfg.Hand.HardwareGeneration())
			if err != nil {
				return err
			}
			report := cat.Dump()
			if asYAML {
				out, err := report.YAML()
				if err != nil {
					return err
				}
				fmt.Print(string(out))
				return nil
			}
			fmt.Print(report.Text())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "emit YAML instead of a table")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("inspirectl %s\n", version)
			fmt.Printf("  Commit:  %s\n", gitCommit)
			fmt.Printf("  Built:   %s\n", buildTime)
		},
	}
}
