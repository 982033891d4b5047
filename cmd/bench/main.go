package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/aretw0/userkv"
	"github.com/aretw0/userkv/pkg/core"
)

var countries = []string{"China", "Russia", "France", "Peru", "Brazil", "Japan"}

func main() {
	count := flag.Int("count", 10000, "Number of users to generate")
	adapter := flag.String("adapter", "memory", "Store adapter: redis or memory")
	host := flag.String("host", "127.0.0.1", "Server host")
	port := flag.Int("port", 6379, "Server port")
	db := flag.Int("db", 15, "Database index to load into; existing user keys are overwritten")
	keep := flag.Bool("keep", false, "Keep the generated users file")
	flag.Parse()

	// 1. Generate input
	benchDir, err := os.MkdirTemp("", "userkv_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	path := filepath.Join(benchDir, "users.txt")
	fmt.Printf("Generating %d users in %s...\n", *count, path)
	startGen := time.Now()
	if err := generate(path, *count); err != nil {
		panic(err)
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	// 2. Connect
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()
	service, err := userkv.New(ctx,
		userkv.WithAdapter(*adapter),
		userkv.WithAddr(*host, *port),
		userkv.WithDB(*db),
		userkv.WithLogger(logger),
	)
	if err != nil {
		panic(err)
	}
	defer service.Close()

	// 3. Load
	startLoad := time.Now()
	report, err := service.LoadUsers(ctx, path)
	if err != nil {
		panic(err)
	}
	load := time.Since(startLoad)

	// 4. Scan
	startScan := time.Now()
	even, err := service.EvenUsers(ctx, core.ScanOptions{})
	if err != nil {
		panic(err)
	}
	scan := time.Since(startScan)

	// 5. Point reads
	startRead := time.Now()
	reads := min(*count, 1000)
	for i := 0; i < reads; i++ {
		if _, err := service.User(ctx, fmt.Sprint(i+1)); err != nil {
			panic(err)
		}
	}
	read := time.Since(startRead)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d users, %s):\n", *count, *adapter)
	fmt.Printf("  Load:  %v (%d stored)\n", load, report.Stored)
	fmt.Printf("  Scan:  %v (%d even)\n", scan, len(even.Keys))
	fmt.Printf("  Reads: %v (%d users, %v avg)\n", read, reads, read/time.Duration(max(reads, 1)))
	fmt.Printf("--------------------------------------------------\n")
}

func generate(path string, n int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for i := 1; i <= n; i++ {
		gender := "male"
		if i%2 == 0 {
			gender = "female"
		}
		fmt.Fprintf(w, "user:%d first_name \"First%d\" last_name \"Last%d\" email \"user%d@example.com\" gender \"%s\" country \"%s\" latitude \"%.4f\" longitude \"%.4f\"\n",
			i, i, i, i, gender, countries[i%len(countries)], float64(i%180)-90, float64(i%360)-180)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
