package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/okian/trainer/internal/domain/contract"
	"github.com/okian/trainer/internal/drill"
	"github.com/okian/trainer/pkg/logger"
)

// Default configuration constants.
const (
	defaultLearners  = 2 // multiplier for runtime.NumCPU()
	defaultAnswers   = 25
	defaultAccuracy  = 0.7
	defaultTimeout   = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		_, _ = os.Stderr.WriteString("drill failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("drill", pflag.ContinueOnError)
	var (
		baseURL    = fs.String("url", "http://localhost:5000", "Base URL of the trainer")
		learners   = fs.Int("learners", runtime.NumCPU()*defaultLearners, "Number of concurrent learners")
		answers    = fs.Int("answers", defaultAnswers, "Answers per learner")
		accuracy   = fs.Float64("accuracy", defaultAccuracy, "Share of answers given correctly (0..1)")
		domains    = fs.StringSlice("domains", []string{"math", "english", "biology", "literature"}, "Trainers to cycle through")
		difficulty = fs.Int("difficulty", contract.DefaultDifficultySeconds, "Contract: seconds per question")
		correct    = fs.Int64("correct-points", contract.DefaultCorrectPoints, "Contract: points for a correct answer")
		incorrect  = fs.Int64("incorrect-points", contract.DefaultIncorrectPoints, "Contract: points deducted for a wrong answer")
		price      = fs.Int64("price", contract.DefaultPricePerPoint, "Contract: cents per point")
		resend     = fs.Bool("resend", true, "Post every answer twice to check idempotency")
		timeout    = fs.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed       = fs.Uint64("seed", 0, "Seed for answer choices (0 = random)")
		logFormat  = fs.String("log-format", "text", "Log format: text or json")
		verbose    = fs.BoolP("verbose", "v", false, "Log every answer")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := logger.InitWith(os.Stdout, *logFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	_, err := drill.Run(ctx, &drill.Config{
		BaseURL:  *baseURL,
		Learners: *learners,
		Answers:  *answers,
		Accuracy: *accuracy,
		Domains:  *domains,
		Contract: contract.Contract{
			DifficultySeconds: *difficulty,
			CorrectPoints:     *correct,
			IncorrectPoints:   *incorrect,
			PricePerPoint:     *price,
		},
		Resend:  *resend,
		Timeout: *timeout,
		Seed:    *seed,
		Verbose: *verbose,
	}, logger.Named("drill"))
	return err
}
