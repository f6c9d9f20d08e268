// cmd/scheduler is the CLI driver: load config (viper/godotenv), build a
// zap logger, run the pipeline once against a CSV enrolment feed, print a
// coloured summary, and best-effort persist the result.
//
// Continues the teacher's habit of a visually-marked console summary
// (cmd/api/main.go's printSolutionReport) using fatih/color for the status
// lines and a tabwriter table of the first ten course assignments; the
// room/invigilator columns are dropped, since that assignment is out of
// scope here.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/engine"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/ingest"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/schederr"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/store"
)

func main() {
	enrollmentPath := flag.String("enrollment", "data/input/enrollment.csv", "path to the enrolment CSV feed")
	startDateFlag := flag.String("start-date", time.Now().Format("2006-01-02"), "calendar date for day index 0")
	numDays := flag.Int("days", 14, "number of scheduling days requested (<=30)")
	persist := flag.Bool("persist", false, "persist the run to postgres (best effort; failures are logged, not fatal)")
	flag.Parse()

	cfg, err := engine.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := engine.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	startDate, err := time.Parse("2006-01-02", *startDateFlag)
	if err != nil {
		log.Fatal("invalid -start-date", zap.Error(err))
	}
	if *numDays < 1 || *numDays > 30 {
		log.Fatal("days must be between 1 and 30 (spec.md §6 UI cap)", zap.Int("days", *numDays))
	}

	source := ingest.CSVSource{Path: *enrollmentPath}
	records, err := source.Records()
	if err != nil {
		log.Fatal("failed to read enrolment feed", zap.Error(err))
	}

	metrics := engine.NewMetrics(prometheus.NewRegistry())
	driver := engine.NewDriver(cfg, log, metrics)

	out, err := driver.Schedule(engine.RunInput{
		Records:       records,
		Merges:        model.NewMergeTable(nil),
		StartDate:     startDate,
		NumDays:       *numDays,
		SourceFileIDs: []string{*enrollmentPath},
	})
	if err != nil {
		if schederr.Is(err, schederr.CodeInfeasible) {
			color.New(color.FgRed, color.Bold).Println("✗ INFEASIBLE SCHEDULE")
			fmt.Println(err)
			os.Exit(2)
		}
		color.New(color.FgRed, color.Bold).Println("✗ invalid input")
		fmt.Println(err)
		os.Exit(1)
	}

	printSummary(out, *numDays)

	if *persist {
		persistRun(context.Background(), cfg, log, out, records)
	}
}

func printSummary(out *engine.RunOutput, requestedDays int) {
	status := color.New(color.FgGreen, color.Bold).Sprint("✓ FEASIBLE")

	fmt.Println("================================================================================")
	color.New(color.Bold).Println("EXAM SCHEDULE SUMMARY")
	fmt.Println("================================================================================")
	fmt.Printf("Run ID:                %s\n", out.Run.ID)
	fmt.Printf("Status:                %s\n", status)
	fmt.Printf("Days requested:        %d\n", requestedDays)
	fmt.Printf("Days used:             %d\n", out.Run.NumDays)
	fmt.Printf("Courses scheduled:     %d\n", len(out.Run.Assignment))
	fmt.Printf("Students scheduled:    %d\n", len(out.Itinerary))
	fmt.Printf("Residual triples:      %s\n", tripleLabel(out.Run.ResidualTriples))
	fmt.Println("--------------------------------------------------------------------------------")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Course\tSlot\tDay\tSession")
	count := 0
	for course, slot := range out.Run.Assignment {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", course.String(), int(slot), slot.Day(), slot.Session())
		count++
		if count >= 10 {
			fmt.Fprintf(w, "...\t\t\t(%d more)\n", len(out.Run.Assignment)-10)
			break
		}
	}
	w.Flush()
	fmt.Println("================================================================================")
}

func tripleLabel(n int) string {
	if n == 0 {
		return color.New(color.FgGreen).Sprint("0")
	}
	return color.New(color.FgYellow).Sprintf("%d", n)
}

func persistRun(ctx context.Context, cfg *engine.Config, log *zap.Logger, out *engine.RunOutput, records []ingest.Record) {
	db, err := store.NewPostgres(cfg.Database)
	if err != nil {
		log.Warn("persistence unavailable, keeping in-memory result (spec.md §7)", zap.Error(err))
		return
	}
	defer db.Close()

	names := map[model.StudentID]string{}
	for _, r := range records {
		names[model.StudentID(r.StudentID)] = r.StudentName
	}

	s := store.New(db)
	if err := s.SaveRun(ctx, out.Run, out.Itinerary, names); err != nil {
		log.Warn("failed to persist run, keeping in-memory result (spec.md §7)", zap.Error(err))
		return
	}
	log.Info("run persisted", zap.String("run_id", out.Run.ID))
}
