package perf

import (
	"context"
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/dGPIO/cmd/util"
	"github.com/ValentinKolb/dGPIO/rpc/client"
	"github.com/ValentinKolb/dGPIO/rpc/common"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	// PerfCmd measures the round trip time of cheap daemon commands
	PerfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the pigpio daemon connection",
		Long:    "",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfNumThreads = 10
	perfGPIO       = uint32(4)
	perfSkip       = make([]string, 0)
)

// benchmark is one named command mix
type benchmark struct {
	name string
	call func(ctx context.Context, d *client.Dispatcher, i int) error
}

var benchmarks = []benchmark{
	{"tick", func(ctx context.Context, d *client.Dispatcher, _ int) error {
		_, err := d.Call(ctx, common.OpTICK, 0, 0)
		return err
	}},
	{"hwver", func(ctx context.Context, d *client.Dispatcher, _ int) error {
		_, err := d.Call(ctx, common.OpHWVER, 0, 0)
		return err
	}},
	{"read", func(ctx context.Context, d *client.Dispatcher, _ int) error {
		_, err := d.Call(ctx, common.OpREAD, perfGPIO, 0)
		return err
	}},
	{"mixed", func(ctx context.Context, d *client.Dispatcher, i int) error {
		var err error
		switch i % 3 {
		case 0:
			_, err = d.Call(ctx, common.OpTICK, 0, 0)
		case 1:
			_, err = d.Call(ctx, common.OpREAD, perfGPIO, 0)
		case 2:
			_, err = d.Call(ctx, common.OpGDC, perfGPIO, 0)
			if _, ok := common.AsDaemonError(err); ok {
				// not_pwm_gpio is expected for pins without pwm
				err = nil
			}
		}
		return err
	}},
}

func init() {
	util.SetupClientFlags(PerfCmd)

	// add flags
	key := "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. tick,mixed)"))
	key = "threads"
	PerfCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "gpio"
	PerfCmd.Flags().Uint32(key, 4, util.WrapString("The gpio used by the read and mixed benchmarks"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "prometheus"
	PerfCmd.Flags().Bool(key, false, util.WrapString("Print the dispatcher metrics in Prometheus format after the run"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumThreads = viper.GetInt("threads")
	perfGPIO = viper.GetUint32("gpio")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// result of one benchmark
type result struct {
	bench  testing.BenchmarkResult
	timer  gometrics.Timer
	errors int64
}

func run(cmd *cobra.Command, _ []string) error {
	d, err := util.Connect(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	fmt.Println("Performance testing tool for the pigpio daemon connection")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	names := make([]string, 0, len(benchmarks))
	results := make(map[string]result)

	for _, bm := range benchmarks {
		r := runBenchmark(d, bm)
		names = append(names, bm.name)
		results[bm.name] = r
		printResult(bm.name, r)

		if err := d.Err(); err != nil {
			return fmt.Errorf("connection lost during %s: %w", bm.name, err)
		}
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, names, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	if viper.GetBool("prometheus") {
		fmt.Println()
		d.WritePrometheus(os.Stdout)
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func runBenchmark(d *client.Dispatcher, bm benchmark) result {
	timer := gometrics.NewTimer()
	errs := gometrics.NewCounter()

	bench := testing.Benchmark(func(b *testing.B) {
		if shouldSkip(bm.name) {
			return
		}

		ctx := context.Background()

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				if err := bm.call(ctx, d, counter); err != nil {
					errs.Inc(1)
					log.Printf("(%s) - error: %v\n", bm.name, err)
				}
				timer.UpdateSince(start)
				counter++
			}
		})
	})

	return result{bench: bench, timer: timer, errors: errs.Count()}
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, r result) {
	if r.bench.NsPerOp() == 0 {
		fmt.Printf("%-12sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(r.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	ps := r.timer.Percentiles([]float64{0.5, 0.99})

	// Print the formatted result
	fmt.Printf("%-12s%.0fns/op (%s/op)\t%.0f ops/sec\tp50 %s\tp99 %s\terrors %d\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(ps[0]), time.Duration(ps[1]), r.errors)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, names []string, results map[string]result, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P99Ns", "Errors", "Skipped",
		"Endpoint", "TimeoutSec", "ByteOrder", "Threads",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, test := range names {
		r := results[test]

		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if r.bench.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(r.bench.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		ps := r.timer.Percentiles([]float64{0.5, 0.99})

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			strconv.FormatInt(r.errors, 10),
			skipped,
			config.Transport.Endpoint,
			strconv.Itoa(config.TimeoutSecond),
			config.ByteOrder,
			strconv.Itoa(perfNumThreads),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
